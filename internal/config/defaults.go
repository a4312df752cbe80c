package config

import "time"

const (
	DefaultHTTPHost        = "0.0.0.0"
	DefaultHTTPPort        = 8080
	DefaultGRPCPort        = 9090
	DefaultServerMode      = "release"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultCORSMaxAge      = 600
	DefaultRateLimitRPS    = 20
	DefaultRateLimitBurst  = 40

	DefaultDBHost        = "localhost"
	DefaultDBPort        = 5432
	DefaultDBUser        = "keyprice"
	DefaultDBName        = "keyprice"
	DefaultDBMaxConns    = 25
	DefaultMigrationPath = "migrations"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "keyprice:"

	DefaultKafkaBroker     = "localhost:9092"
	DefaultKafkaGroupID    = "keyprice-pricing"
	DefaultKafkaRulesTopic = "pricing.rules.updated"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "keyprice-snapshots"
	DefaultMinIORegion   = "us-east-1"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "keyprice"
	DefaultMetricsPath      = "/metrics"

	DefaultRuleCacheTTL = 10 * time.Minute
	DefaultFerKey       = "base_fee"
	DefaultCacheEntries = 4096
)

// def stores v in *p when *p is still the zero value.
func def[T comparable](p *T, v T) {
	var zero T
	if *p == zero {
		*p = v
	}
}

// ApplyDefaults fills zero-valued fields of cfg. Values the caller set are
// kept.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	http := &cfg.Server.HTTP
	def(&http.Host, DefaultHTTPHost)
	def(&http.Port, DefaultHTTPPort)
	def(&http.ReadTimeout, 15*time.Second)
	def(&http.WriteTimeout, 15*time.Second)
	def(&http.IdleTimeout, time.Minute)
	def(&http.MaxBodySize, 1<<20)
	def(&http.CORS.MaxAge, DefaultCORSMaxAge)
	def(&http.RateLimit.RequestsPerSecond, DefaultRateLimitRPS)
	def(&http.RateLimit.Burst, DefaultRateLimitBurst)
	def(&cfg.Server.GRPC.Port, DefaultGRPCPort)
	def(&cfg.Server.Mode, DefaultServerMode)
	def(&cfg.Server.ShutdownTimeout, DefaultShutdownTimeout)

	db := &cfg.Database
	def(&db.Host, DefaultDBHost)
	def(&db.Port, DefaultDBPort)
	def(&db.User, DefaultDBUser)
	def(&db.DBName, DefaultDBName)
	def(&db.MaxConns, DefaultDBMaxConns)
	def(&db.SSLMode, "disable")
	def(&db.MigrationPath, DefaultMigrationPath)

	def(&cfg.Redis.Addr, DefaultRedisAddr)
	def(&cfg.Redis.KeyPrefix, DefaultRedisKeyPrefix)

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	def(&cfg.Kafka.GroupID, DefaultKafkaGroupID)
	def(&cfg.Kafka.RulesTopic, DefaultKafkaRulesTopic)
	def(&cfg.Kafka.AutoOffsetReset, "latest")

	def(&cfg.MinIO.Endpoint, DefaultMinIOEndpoint)
	def(&cfg.MinIO.Bucket, DefaultMinIOBucket)
	def(&cfg.MinIO.Region, DefaultMinIORegion)

	def(&cfg.Log.Level, DefaultLogLevel)
	def(&cfg.Log.Format, DefaultLogFormat)

	def(&cfg.Metrics.Namespace, DefaultMetricsNamespace)
	def(&cfg.Metrics.Path, DefaultMetricsPath)

	def(&cfg.Pricing.CacheMaxEntries, DefaultCacheEntries)
	def(&cfg.Pricing.RuleCacheTTL, DefaultRuleCacheTTL)
	def(&cfg.Pricing.DefaultFerKey, DefaultFerKey)
}

//Personal.AI order the ending
