package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/KeyIP-Pricing/internal/config"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
	"github.com/turtacn/KeyIP-Pricing/pkg/types/common"
)

var ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")

// RetryConfig governs redelivery of a message whose handler failed.
type RetryConfig struct {
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	// DeadLetterTopic receives messages that exhausted their retries. Empty
	// drops them after logging.
	DeadLetterTopic string
}

type ConsumerConfig struct {
	Brokers         []string
	GroupID         string
	Topics          []string
	AutoOffsetReset string
	MaxWait         time.Duration
	RetryConfig     RetryConfig
}

// ConsumerConfigFromKafka subscribes the replica's group to the rule notice
// topic.
func ConsumerConfigFromKafka(cfg config.KafkaConfig) ConsumerConfig {
	return ConsumerConfig{
		Brokers:         cfg.Brokers,
		GroupID:         cfg.GroupID,
		Topics:          []string{cfg.RulesTopic},
		AutoOffsetReset: cfg.AutoOffsetReset,
		RetryConfig:     RetryConfig{MaxRetries: 3, DeadLetterTopic: DefaultDeadLetterTopic},
	}
}

func ValidateConsumerConfig(cfg ConsumerConfig) error {
	var msg string
	switch {
	case len(cfg.Brokers) == 0:
		msg = "brokers required"
	case cfg.GroupID == "":
		msg = "GroupID required"
	case len(cfg.Topics) == 0:
		msg = "at least one topic required"
	case cfg.AutoOffsetReset != "" && cfg.AutoOffsetReset != "earliest" && cfg.AutoOffsetReset != "latest":
		msg = "AutoOffsetReset must be earliest or latest"
	case cfg.RetryConfig.MaxRetries < 0:
		msg = "MaxRetries must be >= 0"
	default:
		return nil
	}
	return errors.New(errors.ErrCodeValidation, msg)
}

// ConsumerStats is a point-in-time copy of the consumer counters.
type ConsumerStats struct {
	Consumed     int64
	Processed    int64
	Failed       int64
	Retried      int64
	DeadLettered int64
	Lag          int64
}

// ReaderInterface is the part of *kafka.Reader the consumer drives.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.ReaderStats
}

// Consumer reads its group's partitions one message at a time and routes each
// message to the handler subscribed to its topic.
type Consumer struct {
	reader     ReaderInterface
	cfg        ConsumerConfig
	log        logging.Logger
	observer   MessageObserver
	deadLetter MessagePublisher

	mu       sync.RWMutex
	handlers map[string]common.MessageHandler

	running atomic.Bool
	stop    context.CancelFunc
	done    sync.WaitGroup

	consumed, processed, failed, retried, deadLettered, lag atomic.Int64

	fetchBackoff time.Duration
}

// NewConsumer opens a group reader. deadLetter may be nil.
func NewConsumer(cfg ConsumerConfig, logger logging.Logger, observer MessageObserver, deadLetter MessagePublisher) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = 500 * time.Millisecond
	}
	start := kafka.LastOffset
	if cfg.AutoOffsetReset == "earliest" {
		start = kafka.FirstOffset
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    1,
		MaxBytes:    10 << 20,
		MaxWait:     cfg.MaxWait,
		StartOffset: start,
		Dialer:      &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true},
	})
	return newConsumer(r, cfg, logger, observer, deadLetter), nil
}

func newConsumer(r ReaderInterface, cfg ConsumerConfig, logger logging.Logger, observer MessageObserver, deadLetter MessagePublisher) *Consumer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Consumer{
		reader:       r,
		cfg:          cfg,
		log:          logger,
		observer:     observer,
		deadLetter:   deadLetter,
		handlers:     make(map[string]common.MessageHandler),
		fetchBackoff: time.Second,
	}
}

// Subscribe routes topic to handler, replacing any earlier handler.
func (c *Consumer) Subscribe(topic string, handler common.MessageHandler) {
	c.mu.Lock()
	c.handlers[topic] = handler
	c.mu.Unlock()
	c.log.Info("kafka topic subscribed", logging.String("topic", topic))
}

func (c *Consumer) handlerFor(topic string) (common.MessageHandler, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.handlers[topic]
	return h, ok
}

// Start runs the fetch loop in the background until Close.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	ctx, c.stop = context.WithCancel(ctx)
	c.done.Add(1)
	go func() {
		defer c.done.Done()
		for c.next(ctx) {
		}
	}()
	c.log.Info("kafka consumer started", logging.String("group", c.cfg.GroupID))
	return nil
}

// next handles one message and reports whether the loop should go on.
func (c *Consumer) next(ctx context.Context) bool {
	m, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		c.log.Error("kafka fetch failed", logging.Err(err))
		return sleepCtx(ctx, c.fetchBackoff) == nil
	}

	c.consumed.Add(1)
	if m.HighWaterMark > 0 {
		c.lag.Store(m.HighWaterMark - m.Offset - 1)
	}

	if handler, ok := c.handlerFor(m.Topic); ok {
		start := time.Now()
		err := c.process(ctx, fromKafka(m), handler)
		c.observer.ObserveMessage(m.Topic, "in", time.Since(start), err)
		if err == nil {
			c.processed.Add(1)
		} else {
			c.failed.Add(1)
			if ctx.Err() != nil {
				// uncommitted, so the group hands it out again
				return false
			}
		}
	} else {
		c.log.Warn("kafka message without handler", logging.String("topic", m.Topic))
	}

	if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
		c.log.Error("kafka commit failed", logging.Err(err))
	}
	return true
}

// process retries handler with doubling backoff. A message that still fails
// is dead-lettered and its last error returned.
func (c *Consumer) process(ctx context.Context, msg *common.Message, handler common.MessageHandler) error {
	rc := c.cfg.RetryConfig
	wait := rc.RetryBackoff
	if wait <= 0 {
		wait = 200 * time.Millisecond
	}
	ceiling := rc.MaxRetryBackoff
	if ceiling <= 0 {
		ceiling = 10 * time.Second
	}

	err := handler(ctx, msg)
	for attempt := 0; err != nil && attempt < rc.MaxRetries; attempt++ {
		c.retried.Add(1)
		if serr := sleepCtx(ctx, wait); serr != nil {
			return serr
		}
		err = handler(ctx, msg)
		if wait *= 2; wait > ceiling {
			wait = ceiling
		}
	}
	if err != nil {
		c.log.Error("kafka message failed after retries",
			logging.String("topic", msg.Topic),
			logging.Int64("offset", msg.Offset),
			logging.Err(err))
		c.toDeadLetter(ctx, msg, err)
	}
	return err
}

func (c *Consumer) toDeadLetter(ctx context.Context, msg *common.Message, cause error) {
	topic := c.cfg.RetryConfig.DeadLetterTopic
	if c.deadLetter == nil || topic == "" {
		return
	}
	headers := make(map[string]string, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["original_topic"] = msg.Topic
	headers["error_message"] = cause.Error()

	err := c.deadLetter.Publish(ctx, &common.ProducerMessage{Topic: topic, Key: msg.Key, Value: msg.Value, Headers: headers})
	if err != nil {
		c.log.Error("kafka dead letter publish failed", logging.Err(err))
		return
	}
	c.deadLettered.Add(1)
}

func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		Consumed:     c.consumed.Load(),
		Processed:    c.processed.Load(),
		Failed:       c.failed.Load(),
		Retried:      c.retried.Load(),
		DeadLettered: c.deadLettered.Load(),
		Lag:          c.lag.Load(),
	}
}

// Close stops the loop, lets the in-flight message finish and closes the
// reader.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	c.stop()
	c.done.Wait()
	err := c.reader.Close()
	c.log.Info("kafka consumer closed", logging.Int64("consumed", c.consumed.Load()))
	return err
}

func fromKafka(m kafka.Message) *common.Message {
	msg := &common.Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Timestamp: m.Time,
		Headers:   make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

//Personal.AI order the ending
