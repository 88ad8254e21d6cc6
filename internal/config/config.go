package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/NamanBalaji/uploadsim/internal/errors"
)

const configFileName = "uploadsim"

var validate = validator.New()

// Config holds the configuration options for the application.
type Config struct {
	TickInterval time.Duration `yaml:"tickInterval,omitempty" validate:"gt=0"`
	MinIncrement float64       `yaml:"minIncrement,omitempty" validate:"gte=0,ltefield=MaxIncrement"`
	MaxIncrement float64       `yaml:"maxIncrement,omitempty" validate:"gt=0,lte=1"`
	// MaxTimers bounds simultaneously ticking tasks; zero means unbounded.
	MaxTimers int        `yaml:"maxTimers,omitempty" validate:"gte=0"`
	Seed      uint64     `yaml:"seed,omitempty"`
	Log       *LogConfig `yaml:"log,omitempty" validate:"required"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level string `yaml:"level,omitempty" validate:"oneof=debug info warn warning error"`
	File  string `yaml:"file,omitempty"`
}

// envOverrides are applied on top of the file. Unset variables leave the
// file value in place.
type envOverrides struct {
	TickInterval *time.Duration `env:"UPLOADSIM_TICK_INTERVAL"`
	MinIncrement *float64       `env:"UPLOADSIM_MIN_INCREMENT"`
	MaxIncrement *float64       `env:"UPLOADSIM_MAX_INCREMENT"`
	MaxTimers    *int           `env:"UPLOADSIM_MAX_TIMERS"`
	Seed         *uint64        `env:"UPLOADSIM_SEED"`
	LogLevel     *string        `env:"UPLOADSIM_LOG_LEVEL"`
	LogFile      *string        `env:"UPLOADSIM_LOG_FILE"`
}

// GetConfig reads the configuration file from the XDG config directory.
// If the configuration file does not exist, it returns the default configuration.
func GetConfig() (*Config, error) {
	return Load(filepath.Join(xdg.ConfigHome, configFileName))
}

// Load reads the yaml file at path, fills zero values from the defaults,
// applies UPLOADSIM_* environment overrides and validates the result.
func Load(path string) (*Config, error) {
	defaults := DefaultConfig()

	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	logCfg := zeroOr(cfg.Log, defaults.Log)

	merged := &Config{
		TickInterval: zeroOr(cfg.TickInterval, defaults.TickInterval),
		MinIncrement: zeroOr(cfg.MinIncrement, defaults.MinIncrement),
		MaxIncrement: zeroOr(cfg.MaxIncrement, defaults.MaxIncrement),
		MaxTimers:    zeroOr(cfg.MaxTimers, defaults.MaxTimers),
		Seed:         zeroOr(cfg.Seed, defaults.Seed),
		Log: &LogConfig{
			Level: zeroOr(logCfg.Level, defaults.Log.Level),
			File:  zeroOr(logCfg.File, defaults.Log.File),
		},
	}

	err = applyEnv(merged)
	if err != nil {
		return nil, err
	}

	err = merged.Validate()
	if err != nil {
		return nil, err
	}

	return merged, nil
}

func DefaultConfig() Config {
	return Config{
		TickInterval: tickInterval,
		MinIncrement: minIncrement,
		MaxIncrement: maxIncrement,
		MaxTimers:    maxTimers,
		Log: &LogConfig{
			Level: logLevel,
			File:  logFile,
		},
	}
}

// Validate checks the struct constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err != nil {
		return errors.NewConfigError(fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err), "validate")
	}

	return nil
}

func readFile(path string) (Config, error) {
	var cfg Config

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return cfg, errors.NewConfigError(err, "read")
	}

	if len(b) == 0 {
		return cfg, nil
	}

	err = yaml.Unmarshal(b, &cfg)
	if err != nil {
		return cfg, errors.NewConfigError(err, "parse")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var o envOverrides

	_, err := env.UnmarshalFromEnviron(&o)
	if err != nil {
		return errors.NewConfigError(err, "env")
	}

	if o.TickInterval != nil {
		cfg.TickInterval = *o.TickInterval
	}

	if o.MinIncrement != nil {
		cfg.MinIncrement = *o.MinIncrement
	}

	if o.MaxIncrement != nil {
		cfg.MaxIncrement = *o.MaxIncrement
	}

	if o.MaxTimers != nil {
		cfg.MaxTimers = *o.MaxTimers
	}

	if o.Seed != nil {
		cfg.Seed = *o.Seed
	}

	if o.LogLevel != nil {
		cfg.Log.Level = *o.LogLevel
	}

	if o.LogFile != nil {
		cfg.Log.File = *o.LogFile
	}

	return nil
}

// zeroOr returns def if v is the zero value for its type.
func zeroOr[T any](v, def T) T {
	if reflect.ValueOf(v).IsZero() {
		return def
	}

	return v
}
