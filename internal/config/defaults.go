package config

import "time"

// Default values applied by ApplyDefaults for any unset field.  Allow-lists
// and marker topics deliberately have no defaults: an absent allow-list means
// "no constraint" and an absent topic list means "no marker matching".
const (
	DefaultServerPort      = 8080
	DefaultFuzzyThreshold  = 80
	DefaultKeywordMaxWords = 2
)

// DefaultExclusionTerms is the fixed stop-term set removed from every
// comment's tokens alongside the row's own treatment/disease/antibody names.
// "uc" is the ulcerative-colitis abbreviation that cohort queries use as a
// disease placeholder.
var DefaultExclusionTerms = []string{"uc"}

// ApplyDefaults fills unset fields in cfg with production-sensible values.
// Explicitly configured values are never overwritten.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 24 * time.Hour
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "reviewsignal"
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "reviewsignal-worker"
	}
	if cfg.Kafka.ProducerRetries == 0 {
		cfg.Kafka.ProducerRetries = 3
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = 100
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = time.Second
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}

	if cfg.Serving.Timeout == 0 {
		cfg.Serving.Timeout = 30 * time.Second
	}
	if cfg.Serving.BatchSize == 0 {
		cfg.Serving.BatchSize = 16
	}
	if cfg.Serving.Retries == 0 {
		cfg.Serving.Retries = 2
	}
	if cfg.Serving.RetryWait == 0 {
		cfg.Serving.RetryWait = 500 * time.Millisecond
	}

	if cfg.Pipeline.FuzzyThreshold == 0 {
		cfg.Pipeline.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if cfg.Pipeline.KeywordMaxWords == 0 {
		cfg.Pipeline.KeywordMaxWords = DefaultKeywordMaxWords
	}
	if cfg.Pipeline.ExclusionTerms == nil {
		terms := make([]string, len(DefaultExclusionTerms))
		copy(terms, DefaultExclusionTerms)
		cfg.Pipeline.ExclusionTerms = terms
	}
}
