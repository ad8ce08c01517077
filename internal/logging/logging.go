// Package logging builds the logr.Logger used by the CLI and the HTTP server.
// The backend is zap (through zapr); callers only ever see logr.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels for logger.V(...).
const (
	DEBUG = 1
	TRACE = 2
)

// Formats accepted by Options.Format.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options configures New.
type Options struct {
	// Level is one of "error", "info", "debug", "trace".
	Level string
	// Format is FormatJSON or FormatConsole.
	Format string
	// Writer receives log lines. Defaults to os.Stderr.
	Writer io.Writer
}

// ParseLevel maps a level name onto a zap level. logr's V(n) is zap level -n.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "error":
		return zapcore.ErrorLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.Level(-DEBUG), nil
	case "trace":
		return zapcore.Level(-TRACE), nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// New returns a zap-backed logr.Logger.
func New(opts Options) (logr.Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return logr.Discard(), err
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	var enc zapcore.Encoder
	switch strings.ToLower(opts.Format) {
	case "", FormatJSON:
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case FormatConsole:
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	default:
		return logr.Discard(), fmt.Errorf("unknown log format %q", opts.Format)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(lvl))

	return zapr.NewLogger(zap.New(core)), nil
}

// NewTestLogger returns a console logger at trace verbosity writing to w,
// for test suites (pass GinkgoWriter or a buffer).
func NewTestLogger(w io.Writer) logr.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		zapcore.Level(-TRACE),
	)

	return zapr.NewLogger(zap.New(core))
}
