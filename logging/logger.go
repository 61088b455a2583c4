package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Options configures the process logger.
type Options struct {
	// Dir holds the rotating log files. Empty disables file logging.
	Dir            string
	RetentionWeeks int
	MaxFileSize    int64
	Level          slog.Level
	// Console receives the text output; os.Stdout when nil.
	Console io.Writer
}

// Service owns the logger and the background cleanup of its log files.
type Service struct {
	Logger *slog.Logger

	writer    *RotatingWriter
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// ParseLevel maps debug, info, warn and error (case-insensitive) to a slog
// level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New builds a logger writing text to the console and, when opts.Dir is set,
// JSON to weekly rotating files. If the log directory cannot be used the
// logger falls back to the console and reports why.
func New(opts Options) *Service {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{Level: opts.Level})
	svc := &Service{Logger: slog.New(consoleHandler)}

	if opts.Dir == "" {
		return svc
	}

	retention := opts.RetentionWeeks
	if retention <= 0 {
		retention = 4
	}
	writer, err := NewRotatingWriter(opts.Dir, retention, opts.MaxFileSize)
	if err != nil {
		svc.Logger.Error("Failed to initialize rotating log file, logging to console only", "error", err)
		return svc
	}

	fileHandler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: opts.Level})
	svc.Logger = slog.New(&fanoutHandler{handlers: []slog.Handler{consoleHandler, fileHandler}})
	svc.writer = writer

	ctx, cancel := context.WithCancel(context.Background())
	svc.cancel = cancel
	svc.done = make(chan struct{})
	go svc.cleanupLoop(ctx, 24*time.Hour)
	return svc
}

func (s *Service) cleanupLoop(ctx context.Context, every time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.writer.Cleanup()
			if err != nil {
				s.Logger.Warn("Failed to clean up old log files", "error", err)
				continue
			}
			if n > 0 {
				s.Logger.Info("Cleaned up old log files", "deleted", n)
			}
		}
	}
}

// LogFile returns the current log file, or "" when file logging is off.
func (s *Service) LogFile() string {
	if s.writer == nil {
		return ""
	}
	return s.writer.CurrentFile()
}

// Close stops the cleanup goroutine and closes the log file.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.writer == nil {
			return
		}
		s.cancel()
		<-s.done
		err = s.writer.Close()
	})
	return err
}

// fanoutHandler sends every record to each of its handlers that accepts the
// record's level.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (f *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (f *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: next}
}

func (f *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return &fanoutHandler{handlers: next}
}
