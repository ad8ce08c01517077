// Package config resolves matcalc settings from defaults, an optional YAML
// file, MATCALC_* environment variables and command-line flags, in rising
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/katalvlaran/matcalc/format"
	"github.com/katalvlaran/matcalc/internal/logging"
	"github.com/katalvlaran/matcalc/matrix"
)

// EnvPrefix prefixes every environment override: max-dim -> MATCALC_MAX_DIM.
const EnvPrefix = "MATCALC"

// Keys shared by flags, env and the config file.
const (
	KeyConfig          = "config"
	KeyListen          = "listen"
	KeyMaxDim          = "max-dim"
	KeyMaxBodyBytes    = "max-body-bytes"
	KeyPrecision       = "precision"
	KeyPivotTolerance  = "pivot-tolerance"
	KeyLogLevel        = "log-level"
	KeyLogFormat       = "log-format"
	KeyShutdownTimeout = "shutdown-timeout"
)

// Defaults.
const (
	DefaultListen          = ":8000"
	DefaultMaxDim          = 64
	DefaultMaxBodyBytes    = 1 << 20
	DefaultLogLevel        = "info"
	DefaultLogFormat       = logging.FormatJSON
	DefaultShutdownTimeout = 10 * time.Second

	// maxPrecision is the most decimals a float64 can meaningfully show.
	maxPrecision = 15
)

// ErrInvalidConfig is wrapped by every Load and Validate failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the resolved configuration.
type Config struct {
	// Listen is the HTTP listen address for serve.
	Listen string `mapstructure:"listen"`
	// MaxDim caps rows and columns of any accepted matrix. 0 disables the cap.
	MaxDim int `mapstructure:"max-dim"`
	// MaxBodyBytes caps HTTP request bodies.
	MaxBodyBytes int64 `mapstructure:"max-body-bytes"`
	// Precision is the number of decimals results are rounded to.
	Precision int `mapstructure:"precision"`
	// PivotTolerance is forwarded to matrix.WithPivotTolerance when > 0.
	PivotTolerance float64 `mapstructure:"pivot-tolerance"`

	LogLevel        string        `mapstructure:"log-level"`
	LogFormat       string        `mapstructure:"log-format"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:          DefaultListen,
		MaxDim:          DefaultMaxDim,
		MaxBodyBytes:    DefaultMaxBodyBytes,
		Precision:       format.DefaultDigits,
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// RegisterFlags adds every configuration flag to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(KeyConfig, "", "Path to a YAML config file.")
	fs.String(KeyListen, d.Listen, "HTTP listen address.")
	fs.Int(KeyMaxDim, d.MaxDim, "Largest accepted row or column count (0 = unlimited).")
	fs.Int64(KeyMaxBodyBytes, d.MaxBodyBytes, "Largest accepted HTTP request body in bytes.")
	fs.Int(KeyPrecision, d.Precision, "Decimals shown in results.")
	fs.Float64(KeyPivotTolerance, d.PivotTolerance, "Pivots with |p| <= tolerance count as zero.")
	fs.String(KeyLogLevel, d.LogLevel, "Log level: error|info|debug|trace.")
	fs.String(KeyLogFormat, d.LogFormat, "Log format: json|console.")
	fs.Duration(KeyShutdownTimeout, d.ShutdownTimeout, "Graceful shutdown timeout for serve.")
}

// Load resolves a Config. fs may be nil; when set, flags registered through
// RegisterFlags override everything else, and --config names the file.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	d := Default()
	v.SetDefault(KeyListen, d.Listen)
	v.SetDefault(KeyMaxDim, d.MaxDim)
	v.SetDefault(KeyMaxBodyBytes, d.MaxBodyBytes)
	v.SetDefault(KeyPrecision, d.Precision)
	v.SetDefault(KeyPivotTolerance, d.PivotTolerance)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyShutdownTimeout, d.ShutdownTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: reading %s: %v", ErrInvalidConfig, path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks for invalid configuration values.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return fmt.Errorf("%w: listen must not be empty", ErrInvalidConfig)
	}
	if c.MaxDim < 0 {
		return fmt.Errorf("%w: max-dim must be >= 0, got %d", ErrInvalidConfig, c.MaxDim)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: max-body-bytes must be > 0, got %d", ErrInvalidConfig, c.MaxBodyBytes)
	}
	if c.Precision < 0 || c.Precision > maxPrecision {
		return fmt.Errorf("%w: precision must be between 0 and %d, got %d", ErrInvalidConfig, maxPrecision, c.Precision)
	}
	if math.IsNaN(c.PivotTolerance) || math.IsInf(c.PivotTolerance, 0) || c.PivotTolerance < 0 {
		return fmt.Errorf("%w: pivot-tolerance must be a finite value >= 0, got %v", ErrInvalidConfig, c.PivotTolerance)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case logging.FormatJSON, logging.FormatConsole:
	default:
		return fmt.Errorf("%w: log-format must be json or console, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown-timeout must be > 0, got %s", ErrInvalidConfig, c.ShutdownTimeout)
	}

	return nil
}

// EngineOptions translates the engine-related settings into matrix options.
func (c Config) EngineOptions() []matrix.Option {
	if c.PivotTolerance > 0 {
		return []matrix.Option{matrix.WithPivotTolerance(c.PivotTolerance)}
	}

	return nil
}

// Logger builds the logger described by LogLevel and LogFormat.
func (c Config) Logger(opts logging.Options) (logr.Logger, error) {
	opts.Level = c.LogLevel
	opts.Format = c.LogFormat

	return logging.New(opts)
}
