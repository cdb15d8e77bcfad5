package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Logger is the logging surface used across keyforge.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config selects level, format and destination of log output.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" koanf:"level"`
	// Format is text or json.
	Format string `json:"format" yaml:"format" koanf:"format"`
	// Output defaults to os.Stderr.
	Output io.Writer `json:"-" yaml:"-" koanf:"-"`
	// AddSource records the calling file and line.
	AddSource bool `json:"add_source" yaml:"add_source" koanf:"add_source"`
}

// DefaultConfig logs warnings and errors as text on stderr, leaving
// stdout to command output.
func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: FormatText,
		Output: os.Stderr,
	}
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// threshold is shared by every handler built here, so SetLevel reaches
// loggers that were created earlier.
var threshold = func() *slog.LevelVar {
	v := new(slog.LevelVar)
	v.Set(slog.LevelWarn)
	return v
}()

func lookupLevel(name string) (slog.Level, bool) {
	l, ok := levels[strings.ToLower(strings.TrimSpace(name))]
	return l, ok
}

// New builds a logger from cfg and sets the process-wide level to
// cfg.Level. An empty level means info; an empty format means text.
func New(cfg Config) (Logger, error) {
	level := slog.LevelInfo
	if cfg.Level != "" {
		var ok bool
		if level, ok = lookupLevel(cfg.Level); !ok {
			return nil, fmt.Errorf("logger: unknown level %q", cfg.Level)
		}
	}
	h, err := newHandler(cfg)
	if err != nil {
		return nil, err
	}
	threshold.Set(level)
	return &entry{l: slog.New(h), ctx: context.Background()}, nil
}

func newHandler(cfg Config) (slog.Handler, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     threshold,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redact(a)
		},
	}
	switch strings.ToLower(cfg.Format) {
	case "", FormatText:
		return slog.NewTextHandler(out, opts), nil
	case FormatJSON:
		return slog.NewJSONHandler(out, opts), nil
	}
	return nil, fmt.Errorf("logger: unknown format %q", cfg.Format)
}

// ValidLevel reports whether name is a level New and SetLevel accept.
func ValidLevel(name string) bool {
	_, ok := lookupLevel(name)
	return ok
}

// SetLevel changes the level of every logger. The interactive shell
// calls it when the config file changes.
func SetLevel(name string) error {
	l, ok := lookupLevel(name)
	if !ok {
		return fmt.Errorf("logger: unknown level %q", name)
	}
	threshold.Set(l)
	return nil
}

// GetLevel returns the current level name.
func GetLevel() string {
	return strings.ToLower(threshold.Level().String())
}

// entry binds a slog.Logger to the context its records are logged with.
type entry struct {
	l   *slog.Logger
	ctx context.Context
}

func (e *entry) Debug(msg string, args ...any) { e.l.Log(e.ctx, slog.LevelDebug, msg, args...) }
func (e *entry) Info(msg string, args ...any)  { e.l.Log(e.ctx, slog.LevelInfo, msg, args...) }
func (e *entry) Warn(msg string, args ...any)  { e.l.Log(e.ctx, slog.LevelWarn, msg, args...) }
func (e *entry) Error(msg string, args ...any) { e.l.Log(e.ctx, slog.LevelError, msg, args...) }

func (e *entry) With(args ...any) Logger {
	return &entry{l: e.l.With(args...), ctx: e.ctx}
}

func (e *entry) WithContext(ctx context.Context) Logger {
	return &entry{l: e.l, ctx: ctx}
}

// Nop discards everything.
func Nop() Logger {
	return &entry{l: slog.New(slog.DiscardHandler), ctx: context.Background()}
}

// Default is used by components that were not handed a logger. It
// writes text to stderr and follows the process-wide level, but
// creating it never changes that level.
var Default = sync.OnceValue(func() Logger {
	h, _ := newHandler(DefaultConfig())
	return &entry{l: slog.New(h), ctx: context.Background()}
})
