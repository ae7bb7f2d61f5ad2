package binder

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/go-binder/binder/internal/interfaces"
	"github.com/go-binder/binder/internal/logging"
	"github.com/go-binder/binder/internal/sysabi"
)

// options holds the resolved configuration for a Connection after every
// Option has been applied.
type options struct {
	devicePath      string
	allowFdsDefault bool
	logger          interfaces.Logger
	observer        interfaces.Observer
}

func defaultOptions() options {
	return options{
		devicePath:      sysabi.DevicePath,
		allowFdsDefault: true,
	}
}

// Option configures a Connection at Open time.
type Option func(*options)

// WithDevicePath overrides the driver node Open connects to, for talking
// to hwbinder/vndbinder or a test double mounted elsewhere.
func WithDevicePath(path string) Option {
	return func(o *options) { o.devicePath = path }
}

// WithLogger injects a structured logger satisfying interfaces.Logger.
// internal/logging.Logger (the default) already does.
func WithLogger(logger interfaces.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithObserver injects a telemetry sink. See NewPrometheusObserver for the
// metrics-backed implementation.
func WithObserver(obs interfaces.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithAllowFdsDefault overrides the allow_fds gate new owned parcels start
// with (spec §9's resolved Open Question: true unless told otherwise).
func WithAllowFdsDefault(allow bool) Option {
	return func(o *options) { o.allowFdsDefault = allow }
}

// fileConfig is the on-disk shape of a YAML connection config, decoded via
// mapstructure so callers can also build one programmatically from any
// map[string]any source (e.g. flags merged with a config file).
type fileConfig struct {
	DevicePath      string `yaml:"device_path" mapstructure:"device_path" validate:"omitempty,filepath"`
	AllowFds        *bool  `yaml:"allow_fds" mapstructure:"allow_fds"`
	LogLevel        string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	MetricsEnabled  bool   `yaml:"metrics_enabled" mapstructure:"metrics_enabled"`
}

var fileConfigValidator = validator.New()

// LoadOptionsFile reads a YAML connection config from path and returns an
// Option that applies it. Mirrors the config-file conventions used
// elsewhere in the ecosystem for small CLI tools: YAML in, validated,
// decoded with mapstructure so either a file or an in-memory map can feed
// the same struct.
func LoadOptionsFile(path string) (Option, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("binder: read options file: %w", err)
	}

	var generic map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("binder: parse options file: %w", err)
	}

	var cfg fileConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &cfg, TagName: "mapstructure"})
	if err != nil {
		return nil, fmt.Errorf("binder: build options decoder: %w", err)
	}
	if err := dec.Decode(generic); err != nil {
		return nil, fmt.Errorf("binder: decode options file: %w", err)
	}

	if err := fileConfigValidator.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("binder: invalid options file: %w", err)
	}

	var logger interfaces.Logger
	if cfg.LogLevel != "" {
		logger = logging.NewLogger(&logging.Config{Level: parseLogLevel(cfg.LogLevel)})
	}

	var obs interfaces.Observer
	if cfg.MetricsEnabled {
		po, err := NewPrometheusObserver(prometheus.DefaultRegisterer)
		if err != nil {
			return nil, fmt.Errorf("binder: register metrics: %w", err)
		}
		obs = po
	}

	return func(o *options) {
		if cfg.DevicePath != "" {
			o.devicePath = cfg.DevicePath
		}
		if cfg.AllowFds != nil {
			o.allowFdsDefault = *cfg.AllowFds
		}
		if logger != nil {
			o.logger = logger
		}
		if obs != nil {
			o.observer = obs
		}
	}, nil
}

// parseLogLevel maps the validated log_level string (see fileConfig's
// validator tag for the allowed set) to internal/logging's level enum.
func parseLogLevel(s string) logging.LogLevel {
	switch s {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}
