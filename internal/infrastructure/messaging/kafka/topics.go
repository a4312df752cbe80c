package kafka

import (
	"context"
	stderrors "errors"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
	"github.com/turtacn/KeyIP-Pricing/pkg/types/common"
)

// DefaultDeadLetterTopic receives rule notifications that exhausted retries.
const DefaultDeadLetterTopic = "pricing.rules.dlq"

const (
	day = 24 * 3600 * 1000

	rulesRetentionMs = 1 * day
	dlqRetentionMs   = 30 * day
)

// PricingTopics lists the rule notification topic and its dead-letter topic.
// Rule notices only matter until every replica has dropped its cache, so
// the rules topic keeps a day; dead letters are kept for inspection.
func PricingTopics(rulesTopic, deadLetterTopic string) []common.TopicConfig {
	topics := []common.TopicConfig{{Name: rulesTopic, NumPartitions: 3, ReplicationFactor: 1, RetentionMs: rulesRetentionMs}}
	if deadLetterTopic == "" {
		return topics
	}
	return append(topics, common.TopicConfig{Name: deadLetterTopic, NumPartitions: 1, ReplicationFactor: 1, RetentionMs: dlqRetentionMs})
}

// topicAdmin is the part of *kafka.Client the manager needs.
type topicAdmin interface {
	CreateTopics(ctx context.Context, req *kafka.CreateTopicsRequest) (*kafka.CreateTopicsResponse, error)
	Metadata(ctx context.Context, req *kafka.MetadataRequest) (*kafka.MetadataResponse, error)
}

// TopicManager provisions topics through the broker admin API.
type TopicManager struct {
	admin  topicAdmin
	logger logging.Logger
}

func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	return newTopicManager(&kafka.Client{Addr: kafka.TCP(brokers...)}, logger), nil
}

func newTopicManager(admin topicAdmin, logger logging.Logger) *TopicManager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TopicManager{admin: admin, logger: logger}
}

func validateTopic(cfg common.TopicConfig) error {
	switch {
	case cfg.Name == "":
		return errors.New(errors.ErrCodeValidation, "topic name required")
	case cfg.NumPartitions < 1:
		return errors.New(errors.ErrCodeValidation, "topic needs at least one partition").WithDetail(cfg.Name)
	case cfg.ReplicationFactor < 1:
		return errors.New(errors.ErrCodeValidation, "topic needs a replication factor of at least one").WithDetail(cfg.Name)
	}
	return nil
}

func brokerTopicConfig(cfg common.TopicConfig) kafka.TopicConfig {
	tc := kafka.TopicConfig{
		Topic:             cfg.Name,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	}
	set := func(name, value string) {
		tc.ConfigEntries = append(tc.ConfigEntries, kafka.ConfigEntry{ConfigName: name, ConfigValue: value})
	}
	if cfg.RetentionMs > 0 {
		set("retention.ms", strconv.FormatInt(cfg.RetentionMs, 10))
	}
	if cfg.CleanupPolicy != "" {
		set("cleanup.policy", cfg.CleanupPolicy)
	}
	if cfg.MaxMessageBytes > 0 {
		set("max.message.bytes", strconv.Itoa(cfg.MaxMessageBytes))
	}
	for k, v := range cfg.Configs {
		set(k, v)
	}
	return tc
}

// EnsureTopics creates every missing topic in one admin request.  Topics
// that already exist are left alone; their settings are not reconciled.
func (m *TopicManager) EnsureTopics(ctx context.Context, topics []common.TopicConfig) error {
	req := &kafka.CreateTopicsRequest{Topics: make([]kafka.TopicConfig, 0, len(topics))}
	for _, t := range topics {
		if err := validateTopic(t); err != nil {
			return err
		}
		req.Topics = append(req.Topics, brokerTopicConfig(t))
	}

	resp, err := m.admin.CreateTopics(ctx, req)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "create kafka topics")
	}
	for _, t := range topics {
		switch terr := resp.Errors[t.Name]; {
		case terr == nil:
			m.logger.Info("kafka topic created", logging.String("topic", t.Name))
		case stderrors.Is(terr, kafka.TopicAlreadyExists):
			m.logger.Debug("kafka topic exists", logging.String("topic", t.Name))
		default:
			if ok, _ := m.TopicExists(ctx, t.Name); ok {
				continue
			}
			return errors.Wrap(terr, errors.ErrCodeExternalService, "create kafka topic").WithDetail(t.Name)
		}
	}
	return nil
}

func (m *TopicManager) TopicExists(ctx context.Context, name string) (bool, error) {
	resp, err := m.admin.Metadata(ctx, &kafka.MetadataRequest{Topics: []string{name}})
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeExternalService, "read kafka metadata")
	}
	for _, t := range resp.Topics {
		if t.Name == name && t.Error == nil {
			return true, nil
		}
	}
	return false, nil
}

//Personal.AI order the ending
