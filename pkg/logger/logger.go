package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config describes how the application logger should behave. The zero value
// yields an info-level JSON logger on stdout.
type Config struct {
	Level       string
	Format      string
	OutputPaths []string
	Audit       AuditConfig
}

// AuditConfig controls audit log output behaviour. Audit entries are always
// JSON and are written through a size-rotating file writer.
type AuditConfig struct {
	Enabled    bool
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	mu        sync.Mutex
	appLogger *slog.Logger
	auditSink *slog.Logger
	closers   []io.Closer
)

// Init configures the global logger instances. Calling Init more than once
// replaces the previous loggers; writers opened earlier stay open until Sync.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()
	return initLocked(cfg)
}

func initLocked(cfg Config) error {
	handler, err := newHandler(cfg)
	if err != nil {
		return err
	}
	appLogger = slog.New(handler)
	slog.SetDefault(appLogger)

	auditSink = appLogger
	if cfg.Audit.Enabled {
		sink, err := newAuditSink(cfg.Audit)
		if err != nil {
			return err
		}
		auditSink = sink
	}
	return nil
}

func newHandler(cfg Config) (slog.Handler, error) {
	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level, AddSource: true}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}
	writers := make([]io.Writer, 0, len(outputs))
	for _, out := range outputs {
		writer, closer, err := openSink(out)
		if err != nil {
			return nil, err
		}
		if closer != nil {
			closers = append(closers, closer)
		}
		writers = append(writers, writer)
	}

	writer := writers[0]
	if len(writers) > 1 {
		writer = io.MultiWriter(writers...)
	}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.NewTextHandler(writer, opts), nil
	}
	return slog.NewJSONHandler(writer, opts), nil
}

func newAuditSink(cfg AuditConfig) (*slog.Logger, error) {
	if cfg.Path == "" {
		return nil, errors.New("audit log path cannot be empty when enabled")
	}
	writer, err := newRotatingWriter(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	if err != nil {
		return nil, err
	}
	closers = append(closers, writer)
	return slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: slog.LevelInfo})), nil
}

func openSink(path string) (io.Writer, io.Closer, error) {
	switch strings.ToLower(path) {
	case "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	default:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		return file, file, nil
	}
}

func parseLevel(level string) slog.Level {
	if level == "" {
		level = os.Getenv("RWACHAIN_LOG_LEVEL")
	}
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L returns the structured logger instance, initialising a default one on
// first use.
func L() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if appLogger == nil {
		_ = initLocked(Config{})
	}
	return appLogger
}

// Audit returns the audit logger. It falls back to the application logger
// when no dedicated audit sink is configured.
func Audit() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if auditSink == nil {
		if appLogger == nil {
			_ = initLocked(Config{})
		}
		return appLogger
	}
	return auditSink
}

// Named returns a child logger grouped under the provided component name.
func Named(name string) *slog.Logger {
	return L().WithGroup(name)
}

// Sync closes every file writer opened by Init.
func Sync() error {
	mu.Lock()
	defer mu.Unlock()
	var err error
	for _, closer := range closers {
		err = errors.Join(err, closer.Close())
	}
	closers = nil
	return err
}
