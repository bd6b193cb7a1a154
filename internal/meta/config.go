package meta

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ApplicationConfig is a top-level block for application-level meta configuration.
type ApplicationConfig struct {
	SentryDSN string `yaml:"sentry_dsn"`
}

// MetricsConfig is a top-level block for metrics configuration.
type MetricsConfig struct {
	Statsd *struct {
		Address    string  `yaml:"addr"`
		SampleRate float64 `yaml:"sample_rate"`
		Prefix     string  `yaml:"prefix"`
	} `yaml:"statsd"`

	// Strict causes unstopped timing spans detected at flush time to be fatal
	// instead of logged and dropped.
	Strict bool `yaml:"strict"`

	// TrackPhases toggles recording of per-dispatch-phase timing spans in the
	// HTTP middleware.
	TrackPhases bool `yaml:"track_phases"`
}

// ListenerConfig is a top-level block for server listener configuration.
type ListenerConfig struct {
	HTTP *struct {
		Address      string        `yaml:"addr"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"http"`
}

// Config describes all application configuration options.
type Config struct {
	Application *ApplicationConfig `yaml:"application"`
	Metrics     *MetricsConfig     `yaml:"metrics"`
	Listener    *ListenerConfig    `yaml:"listener"`
}

// ParseConfig parses a Config struct instance from a file specified as a path on disk.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: error reading config: err=%v", err)
	}

	var cfg *Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: error parsing config: err=%v", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate the contents of the configuration. Returns an error if validation failed; nil otherwise.
func (c *Config) validate() error {
	/* Metrics */

	// Users can omit the metrics block entirely to disable metrics reporting.
	if c.Metrics != nil && c.Metrics.Statsd != nil {
		if c.Metrics.Statsd.Address == "" {
			return fmt.Errorf("config: missing metrics statsd address")
		}

		if c.Metrics.Statsd.SampleRate < 0 || c.Metrics.Statsd.SampleRate > 1 {
			return fmt.Errorf("config: statsd sample rate must be in range [0.0, 1.0]")
		}
	}

	/* Listener */

	if c.Listener == nil {
		return fmt.Errorf("config: missing top-level listener config key")
	}

	if c.Listener.HTTP == nil {
		return fmt.Errorf("config: an HTTP listener must be specified")
	}

	if c.Listener.HTTP.Address == "" {
		return fmt.Errorf("config: missing HTTP server listening address")
	}

	return nil
}

// SampleRate resolves the configured statsd sample rate, defaulting to 1.0
// (no sampling) when the value is omitted or zero.
func (c *Config) SampleRate() float32 {
	if c.Metrics == nil || c.Metrics.Statsd == nil || c.Metrics.Statsd.SampleRate == 0 {
		return 1.0
	}

	return float32(c.Metrics.Statsd.SampleRate)
}
