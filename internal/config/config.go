// Package config defines all configuration structures for the review-signal
// platform.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"time"

	"github.com/medlens/reviewsignal/pkg/errors"
)

// ServerConfig holds HTTP server tunables for the apiserver.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig holds Redis connection parameters for the run-scoped cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer/consumer parameters.
type KafkaConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	GroupID         string        `mapstructure:"group_id"`
	ProducerRetries int           `mapstructure:"producer_retries"`
	BatchSize       int           `mapstructure:"batch_size"`
	BatchTimeout    time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

// ServingConfig holds parameters for the external NLP serving endpoint
// (zero-shot classification, sentiment, lexical similarity).
type ServingConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	BatchSize int           `mapstructure:"batch_size"`
	Retries   int           `mapstructure:"retries"`
	RetryWait time.Duration `mapstructure:"retry_wait"`
}

// LogConfig mirrors logging.Config so the config package does not depend on
// the logging implementation.
type LogConfig struct {
	Level            string   `mapstructure:"level"`
	Format           string   `mapstructure:"format"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// TopicConfig binds a marker topic to a disease and its marker dictionary.
// The disease binding is mandatory: marker matching restricts rows to the
// topic's disease before testing phrases.
type TopicConfig struct {
	Name    string              `mapstructure:"name"`
	Disease string              `mapstructure:"disease"`
	Markers map[string][]string `mapstructure:"markers"`
}

// PipelineConfig carries every knob consumed by the deterministic core.
type PipelineConfig struct {
	// InputPath is the CSV file processed by `reviewsignal run` when no
	// explicit path is given on the command line.
	InputPath string `mapstructure:"input_path"`

	// Diseases, Antibodies, and Treatments are allow-lists applied to the
	// derived descriptor fields.  An empty list means "no constraint".
	Diseases   []string `mapstructure:"diseases"`
	Antibodies []string `mapstructure:"antibodies"`
	Treatments []string `mapstructure:"treatments"`

	// FuzzyThreshold is the minimum similarity ratio (0-100) for a comment
	// word to count as a mention of a vocabulary treatment.
	FuzzyThreshold int `mapstructure:"fuzzy_threshold"`

	// Workers bounds the row-processing pool; 0 means one worker per CPU.
	Workers int `mapstructure:"workers"`

	// ExclusionTerms are fixed stop terms removed from every comment's token
	// and keyword sets in addition to the row's own treatment, disease, and
	// antibody names.
	ExclusionTerms []string `mapstructure:"exclusion_terms"`

	// KeywordMaxWords caps the length of extracted keyword phrases.
	KeywordMaxWords int `mapstructure:"keyword_max_words"`

	// Topics is the marker dictionary: one entry per topic, each binding a
	// disease and a marker → phrase-list mapping.
	Topics []TopicConfig `mapstructure:"topics"`
}

// Config is the root configuration object.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Serving  ServingConfig  `mapstructure:"serving"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

// Validate checks invariants that have no legal default.  Configuration
// problems are fatal: callers must abort before any row processing starts.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Newf(errors.CodeConfiguration, "server.port %d out of range", c.Server.Port)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate enforces the pipeline invariants from the core contract: the fuzzy
// threshold must be a percentage, and every marker topic must carry a disease
// binding and at least one non-empty phrase per marker.
func (p *PipelineConfig) Validate() error {
	if p.FuzzyThreshold < 0 || p.FuzzyThreshold > 100 {
		return errors.Newf(errors.CodeThresholdOutOfRange,
			"pipeline.fuzzy_threshold must be in [0,100], got %d", p.FuzzyThreshold)
	}
	if p.Workers < 0 {
		return errors.Newf(errors.CodeConfiguration, "pipeline.workers must be >= 0, got %d", p.Workers)
	}
	if p.KeywordMaxWords < 1 {
		return errors.Newf(errors.CodeConfiguration,
			"pipeline.keyword_max_words must be >= 1, got %d", p.KeywordMaxWords)
	}
	for _, topic := range p.Topics {
		if topic.Name == "" {
			return errors.New(errors.CodeConfiguration, "pipeline.topics entry with empty name")
		}
		if topic.Disease == "" {
			return errors.Newf(errors.CodeTopicUnbound,
				"topic %q has no disease binding", topic.Name)
		}
		if len(topic.Markers) == 0 {
			return errors.Newf(errors.CodeConfiguration, "topic %q has no markers", topic.Name)
		}
		for marker, phrases := range topic.Markers {
			if len(phrases) == 0 {
				return errors.Newf(errors.CodeConfiguration,
					"marker %q in topic %q has no keyword phrases", marker, topic.Name)
			}
			for _, phrase := range phrases {
				if phrase == "" {
					return errors.Newf(errors.CodeConfiguration,
						"marker %q in topic %q has an empty keyword phrase", marker, topic.Name)
				}
			}
		}
	}
	return nil
}
