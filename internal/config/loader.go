// Configuration loading, defaults, and validation for the review-signal
// platform.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all platform settings.
const envPrefix = "REVIEWSIGNAL"

// newViper builds a pre-configured Viper instance: YAML file type,
// REVIEWSIGNAL_ env prefix, automatic env binding, and a key replacer mapping
// "." → "_" so that nested keys like "database.host" resolve to
// "REVIEWSIGNAL_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindKnownKeys(v)
	return v
}

// knownKeys lists every scalar configuration key.  Viper only consults
// environment variables for keys it knows about, so each key is bound
// explicitly; without this, env-only deployments would unmarshal zero values.
var knownKeys = []string{
	"log.level", "log.format", "log.output_paths", "log.error_output_paths",
	"server.port", "server.mode", "server.read_timeout", "server.write_timeout",
	"server.shutdown_timeout",
	"database.host", "database.port", "database.user", "database.password",
	"database.db_name", "database.ssl_mode", "database.max_conns",
	"database.min_conns", "database.conn_max_lifetime",
	"redis.addr", "redis.password", "redis.db", "redis.pool_size",
	"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
	"redis.default_ttl", "redis.key_prefix",
	"kafka.brokers", "kafka.group_id", "kafka.producer_retries",
	"kafka.batch_size", "kafka.batch_timeout", "kafka.write_timeout",
	"serving.base_url", "serving.timeout", "serving.batch_size",
	"pipeline.input_path", "pipeline.diseases", "pipeline.antibodies",
	"pipeline.treatments", "pipeline.fuzzy_threshold", "pipeline.workers",
	"pipeline.exclusion_terms", "pipeline.keyword_max_words",
}

func bindKnownKeys(v *viper.Viper) {
	for _, key := range knownKeys {
		_ = v.BindEnv(key)
	}
}

// Load reads the YAML file at configPath, merges REVIEWSIGNAL_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.  Returns a fully-populated *Config or a descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from REVIEWSIGNAL_* environment
// variables, with no config file required.  Preferred for containerised
// deployments.  Marker topics cannot be expressed through flat environment
// variables, so env-only deployments carry no marker dictionary.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file changes on disk.  Intended for hot-reloading
// non-critical settings such as the log level; callers are responsible for
// applying only the safe subset at runtime.  If the changed file fails to
// parse or validate, onChange is not called.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// Intended for main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
