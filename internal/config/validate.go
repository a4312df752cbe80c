package config

import (
	"fmt"
	"slices"
)

func invalid(field, format string, args ...interface{}) error {
	return fmt.Errorf("config: %s "+format, append([]interface{}{field}, args...)...)
}

func checkPort(field string, port int) error {
	if port < 1 || port > 65535 {
		return invalid(field, "%d is out of range [1, 65535]", port)
	}
	return nil
}

func checkRequired(field, value string) error {
	if value == "" {
		return invalid(field, "is required")
	}
	return nil
}

func checkOneOf(field, value string, allowed ...string) error {
	if !slices.Contains(allowed, value) {
		return invalid(field, "%q is invalid; expected one of %v", value, allowed)
	}
	return nil
}

// Validate checks the merged configuration section by section and returns the
// first problem found. Disabled backends are not checked.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.Server.validate,
		c.Database.validate,
		c.Redis.validate,
		c.Kafka.validate,
		c.MinIO.validate,
		c.validatePricing,
		c.Log.validate,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (s ServerConfig) validate() error {
	if err := checkPort("server.http.port", s.HTTP.Port); err != nil {
		return err
	}
	if s.GRPC.Enabled {
		if err := checkPort("server.grpc.port", s.GRPC.Port); err != nil {
			return err
		}
	}
	if rl := s.HTTP.RateLimit; rl.Enabled {
		if rl.RequestsPerSecond <= 0 {
			return invalid("server.http.rate_limit.requests_per_second", "must be > 0")
		}
		if rl.Burst < 1 {
			return invalid("server.http.rate_limit.burst", "must be >= 1, got %d", rl.Burst)
		}
	}
	return checkOneOf("server.mode", s.Mode, "debug", "release", "test")
}

func (d DatabaseConfig) validate() error {
	if err := checkRequired("database.host", d.Host); err != nil {
		return err
	}
	if err := checkPort("database.port", d.Port); err != nil {
		return err
	}
	if err := checkRequired("database.user", d.User); err != nil {
		return err
	}
	if err := checkRequired("database.db_name", d.DBName); err != nil {
		return err
	}
	if d.MaxConns < 1 {
		return invalid("database.max_conns", "must be >= 1, got %d", d.MaxConns)
	}
	return nil
}

func (r RedisConfig) validate() error {
	if !r.Enabled {
		return nil
	}
	if err := checkRequired("redis.addr", r.Addr); err != nil {
		return err
	}
	if r.DB < 0 {
		return invalid("redis.db", "must be >= 0, got %d", r.DB)
	}
	return nil
}

func (k KafkaConfig) validate() error {
	if !k.Enabled {
		return nil
	}
	if len(k.Brokers) == 0 {
		return invalid("kafka.brokers", "must contain at least one broker address")
	}
	if err := checkRequired("kafka.group_id", k.GroupID); err != nil {
		return err
	}
	return checkRequired("kafka.rules_topic", k.RulesTopic)
}

func (m MinIOConfig) validate() error {
	if !m.Enabled {
		return nil
	}
	if err := checkRequired("minio.endpoint", m.Endpoint); err != nil {
		return err
	}
	return checkRequired("minio.bucket", m.Bucket)
}

func (c *Config) validatePricing() error {
	if c.Pricing.SnapshotQuotes && !c.MinIO.Enabled {
		return invalid("pricing.snapshot_quotes", "requires minio.enabled")
	}
	if c.Pricing.CacheMaxEntries < 0 {
		return invalid("pricing.cache_max_entries", "must be >= 0, got %d", c.Pricing.CacheMaxEntries)
	}
	return nil
}

func (l LogConfig) validate() error {
	if err := checkOneOf("log.level", l.Level, "debug", "info", "warn", "error"); err != nil {
		return err
	}
	return checkOneOf("log.format", l.Format, "json", "console")
}

//Personal.AI order the ending
