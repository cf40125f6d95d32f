package threadpool

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"
)

const DefaultMetricsNamespace = "threadpool"

// Config is the file form of the pool options.
type Config struct {
	// Workers fixes the work pool size. Nil means hardware concurrency.
	Workers  *int          `yaml:"workers"`
	Verbose  bool          `yaml:"verbose"`
	LogLevel string        `yaml:"log_level"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("config file %q: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates YAML. Unknown keys are rejected and empty
// input yields the zero Config.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkerCount, *c.Workers)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel, defaulting to info.
func (c Config) Level() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return l, nil
}

// Options converts the config into pool options. When metrics are enabled the
// collectors are registered with reg.
func (c Config) Options(reg prometheus.Registerer) []func(*config) {
	var opts []func(*config)
	if c.Workers != nil {
		opts = append(opts, WithWorkers(*c.Workers))
	}
	opts = append(opts, WithVerbose(c.Verbose))
	if c.Metrics.Enabled {
		ns := c.Metrics.Namespace
		if ns == "" {
			ns = DefaultMetricsNamespace
		}
		opts = append(opts, WithMetrics(NewMetrics(ns, reg)))
	}
	return opts
}
