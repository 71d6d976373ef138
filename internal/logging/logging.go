// Package logging is the decider's structured-logging surface, backed by
// charmbracelet/log the way the teacher's pkg/logger is: a small Logger
// interface, a context-carried instance, and level/output settings rather
// than a global singleton.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// LogLevel is one of the four active levels, plus "disabled" to silence
// logging entirely (used by TestConfig).
type LogLevel string

const (
	DebugLevel    LogLevel = "debug"
	InfoLevel     LogLevel = "info"
	WarnLevel     LogLevel = "warn"
	ErrorLevel    LogLevel = "error"
	DisabledLevel LogLevel = "disabled"
)

// ToCharmlogLevel converts to charmbracelet/log's level type; an unknown
// LogLevel defaults to InfoLevel.
func (l LogLevel) ToCharmlogLevel() charmlog.Level {
	switch l {
	case DebugLevel:
		return charmlog.DebugLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	case DisabledLevel:
		return charmlog.Level(1000) // above Error; nothing passes the filter
	default:
		return charmlog.InfoLevel
	}
}

// Logger is the interface the rest of the decider logs through.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	// With returns a Logger that prepends kv to every subsequent call.
	With(kv ...any) Logger
}

// Config controls a Logger built by NewLogger.
type Config struct {
	Level      LogLevel
	Output     io.Writer
	JSON       bool
	AddSource  bool
	TimeFormat string
}

// DefaultConfig is what cmd/seddy builds for normal operation, before any
// -v/-q flags adjust Level.
func DefaultConfig() *Config {
	return &Config{
		Level:      InfoLevel,
		Output:     os.Stdout,
		JSON:       false,
		AddSource:  false,
		TimeFormat: "15:04:05",
	}
}

// TestConfig silences logging entirely, for use in package tests that
// need a non-nil Logger but no output.
func TestConfig() *Config {
	return &Config{
		Level:      DisabledLevel,
		Output:     io.Discard,
		JSON:       false,
		AddSource:  false,
		TimeFormat: "15:04:05",
	}
}

// IsTestEnvironment reports whether the current process is running under
// `go test` (its argv[0] ends in ".test", or -test. flags are present).
func IsTestEnvironment() bool {
	if strings.HasSuffix(os.Args[0], ".test") {
		return true
	}
	for _, arg := range os.Args[1:] {
		if strings.HasPrefix(arg, "-test.") {
			return true
		}
	}
	return false
}

type charmLogger struct {
	l *charmlog.Logger
}

// NewLogger builds a Logger from cfg, defaulting to DefaultConfig (or
// TestConfig, under `go test`) when cfg is nil.
func NewLogger(cfg *Config) Logger {
	if cfg == nil {
		if IsTestEnvironment() {
			cfg = TestConfig()
		} else {
			cfg = DefaultConfig()
		}
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	l := charmlog.NewWithOptions(out, charmlog.Options{
		Level:           cfg.Level.ToCharmlogLevel(),
		ReportCaller:    cfg.AddSource,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Formatter:       formatterFor(cfg.JSON),
	})
	return &charmLogger{l: l}
}

func formatterFor(asJSON bool) charmlog.Formatter {
	if asJSON {
		return charmlog.JSONFormatter
	}
	return charmlog.TextFormatter
}

func (c *charmLogger) Debug(msg string, kv ...any) { c.l.Debug(msg, kv...) }
func (c *charmLogger) Info(msg string, kv ...any)  { c.l.Info(msg, kv...) }
func (c *charmLogger) Warn(msg string, kv ...any)  { c.l.Warn(msg, kv...) }
func (c *charmLogger) Error(msg string, kv ...any) { c.l.Error(msg, kv...) }

func (c *charmLogger) With(kv ...any) Logger {
	return &charmLogger{l: c.l.With(kv...)}
}

type loggerCtxKey struct{}

// LoggerCtxKey is the context key a Logger is stored under.
var LoggerCtxKey = loggerCtxKey{}

// ContextWithLogger returns a child context carrying logger.
func ContextWithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, LoggerCtxKey, logger)
}

// FromContext returns the Logger stored in ctx, or a default one (quiet
// under test, DefaultConfig otherwise) if none is present.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(LoggerCtxKey).(Logger); ok && l != nil {
		return l
	}
	return NewLogger(nil)
}
