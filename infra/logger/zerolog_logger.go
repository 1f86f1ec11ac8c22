package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu         sync.RWMutex
	output     io.Writer
	configured bool
)

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// Configure sets the global level and output of loggers created afterwards.
// The returned closer releases the rotated log file, if any.
func Configure(cfg Config) (io.Closer, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lvl, _ := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	zerolog.SetGlobalLevel(lvl)

	var console io.Writer = os.Stdout
	if useConsole(cfg.Format) {
		console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	var closer io.Closer = nopCloser{}
	w := console
	if cfg.File != "" {
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		w = zerolog.MultiLevelWriter(console, lj)
		closer = lj
	}
	mu.Lock()
	output = w
	configured = true
	mu.Unlock()
	return closer, nil
}

// NewZerologLogger creates a ZerologLogger writing to the configured output.
// Without Configure, APP_ENV=dev selects the console writer. All logs include
// the provided component field.
func NewZerologLogger(component string) Logger {
	mu.RLock()
	w, ok := output, configured
	mu.RUnlock()
	if !ok {
		w = os.Stdout
		if useConsole("") {
			w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		}
	}
	return NewWithWriter(component, w)
}

// NewWithWriter creates a ZerologLogger writing JSON lines to w.
func NewWithWriter(component string, w io.Writer) Logger {
	z := zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func useConsole(format string) bool {
	if format != "" {
		return format == "console"
	}
	return strings.ToLower(os.Getenv("APP_ENV")) == "dev"
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
