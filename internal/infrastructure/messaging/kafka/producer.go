package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/KeyIP-Pricing/internal/config"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
	"github.com/turtacn/KeyIP-Pricing/pkg/types/common"
)

var ErrProducerClosed = errors.New(errors.ErrCodeInternal, "producer closed")

// MessageObserver is called once per produced ("out") or consumed ("in")
// message.
type MessageObserver interface {
	ObserveMessage(topic, direction string, d time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveMessage(string, string, time.Duration, error) {}

var (
	ackModes = map[string]kafka.RequiredAcks{
		"none": kafka.RequireNone,
		"one":  kafka.RequireOne,
		"all":  kafka.RequireAll,
	}
	codecs = map[string]kafka.Compression{
		"gzip":   kafka.Gzip,
		"snappy": kafka.Snappy,
		"lz4":    kafka.Lz4,
		"zstd":   kafka.Zstd,
	}
)

type ProducerConfig struct {
	Brokers []string
	// Acks is none, one or all. Anything else means one.
	Acks             string
	MaxRetries       int
	BatchSize        int
	BatchTimeout     time.Duration
	MaxMessageBytes  int
	CompressionCodec string
	WriteTimeout     time.Duration
}

// ProducerConfigFromKafka keeps batching short: a rule notice should reach
// the other replicas quickly, and there are few of them.
func ProducerConfigFromKafka(cfg config.KafkaConfig) ProducerConfig {
	return ProducerConfig{
		Brokers:      cfg.Brokers,
		Acks:         "all",
		MaxRetries:   cfg.ProducerRetries,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: 10 * time.Millisecond,
	}
}

func (c ProducerConfig) withDefaults() ProducerConfig {
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
	if c.BatchTimeout == 0 {
		c.BatchTimeout = time.Second
	}
	if c.MaxMessageBytes == 0 {
		c.MaxMessageBytes = 1 << 20
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	return c
}

func ValidateProducerConfig(cfg ProducerConfig) error {
	switch {
	case len(cfg.Brokers) == 0:
		return errors.New(errors.ErrCodeValidation, "brokers required")
	case cfg.MaxRetries < 0:
		return errors.New(errors.ErrCodeValidation, "MaxRetries must be >= 0")
	}
	return nil
}

// ProducerStats is a point-in-time copy of the producer counters.
type ProducerStats struct {
	Sent   int64
	Failed int64
	Bytes  int64
}

// WriterInterface is the part of *kafka.Writer the producer drives.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.WriterStats
}

type Producer struct {
	writer   WriterInterface
	cfg      ProducerConfig
	log      logging.Logger
	observer MessageObserver
	closed   atomic.Bool

	sent, failed, bytes atomic.Int64
}

// NewProducer builds a hash-balanced writer so every message with the same
// key lands on the same partition.
func NewProducer(cfg ProducerConfig, logger logging.Logger, observer MessageObserver) (*Producer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	acks, ok := ackModes[cfg.Acks]
	if !ok {
		acks = kafka.RequireOne
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxRetries + 1,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: acks,
		Compression:  codecs[cfg.CompressionCodec],
		Transport:    &kafka.Transport{DialTimeout: 10 * time.Second},
	}
	return newProducer(w, cfg, logger, observer), nil
}

func newProducer(w WriterInterface, cfg ProducerConfig, logger logging.Logger, observer MessageObserver) *Producer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Producer{writer: w, cfg: cfg.withDefaults(), log: logger, observer: observer}
}

// Publish writes msg synchronously.
func (p *Producer) Publish(ctx context.Context, msg *common.ProducerMessage) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	switch {
	case msg.Topic == "":
		return errors.New(errors.ErrCodeValidation, "topic required")
	case len(msg.Value) == 0:
		return errors.New(errors.ErrCodeValidation, "value required")
	case len(msg.Value) > p.cfg.MaxMessageBytes:
		return errors.New(errors.ErrCodeValidation, "message too large")
	}

	start := time.Now()
	err := p.writer.WriteMessages(ctx, toKafka(msg))
	took := time.Since(start)
	p.observer.ObserveMessage(msg.Topic, "out", took, err)
	if err != nil {
		p.failed.Add(1)
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "publish failed")
	}

	p.sent.Add(1)
	p.bytes.Add(int64(len(msg.Value)))
	p.log.Debug("kafka message published", logging.String("topic", msg.Topic), logging.Duration("took", took))
	return nil
}

func (p *Producer) Stats() ProducerStats {
	return ProducerStats{Sent: p.sent.Load(), Failed: p.failed.Load(), Bytes: p.bytes.Load()}
}

// Close flushes the writer. Later calls are no-ops.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.log.Info("kafka producer closed", logging.Int64("sent", p.sent.Load()))
	return err
}

func toKafka(msg *common.ProducerMessage) kafka.Message {
	out := kafka.Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Key:       msg.Key,
		Value:     msg.Value,
		Time:      msg.Timestamp,
	}
	if out.Time.IsZero() {
		out.Time = time.Now()
	}
	for k, v := range msg.Headers {
		out.Headers = append(out.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return out
}

//Personal.AI order the ending
