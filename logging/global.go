package logging

import (
	"log/slog"
	"os"
	"sync/atomic"
)

var current atomic.Pointer[Service]

// Init installs a process-wide logger built from opts and makes it the slog
// default. The previous logger, if any, is closed.
func Init(opts Options) *Service {
	svc := New(opts)
	slog.SetDefault(svc.Logger)
	if prev := current.Swap(svc); prev != nil {
		_ = prev.Close()
	}
	return svc
}

// Default returns the installed logger, or a stderr text logger before Init.
func Default() *slog.Logger {
	if svc := current.Load(); svc != nil {
		return svc.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// Shutdown closes the installed logger.
func Shutdown() error {
	if svc := current.Swap(nil); svc != nil {
		return svc.Close()
	}
	return nil
}

func Info(msg string, args ...any)  { Default().Info(msg, args...) }
func Warn(msg string, args ...any)  { Default().Warn(msg, args...) }
func Error(msg string, args ...any) { Default().Error(msg, args...) }
func Debug(msg string, args ...any) { Default().Debug(msg, args...) }
