package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giygas/d3ai-api/catalog"
	"github.com/giygas/d3ai-api/config"
	"github.com/giygas/d3ai-api/data"
	"github.com/giygas/d3ai-api/disease"
	"github.com/giygas/d3ai-api/drug"
	"github.com/giygas/d3ai-api/handlers"
	"github.com/giygas/d3ai-api/health"
	"github.com/giygas/d3ai-api/interfaces"
	"github.com/giygas/d3ai-api/logging"
	"github.com/giygas/d3ai-api/scheduler"
	"github.com/giygas/d3ai-api/server"
	"github.com/giygas/d3ai-api/validation"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Error("Server stopped with error", "error", err)
		_ = logging.Shutdown()
		os.Exit(1)
	}
	_ = logging.Shutdown()
}

func run() error {
	// A missing .env is fine: the environment may be set by the supervisor.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.Init(logging.Options{
		Dir:            cfg.LogDir,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
		Level:          level,
	})
	logging.Info("Configuration loaded", "env", cfg.Env.String(), "addr", cfg.ListenAddr(), "matcher", cfg.MatcherMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var source interfaces.CatalogSource = catalog.BuiltinSource{}
	if cfg.CatalogPath != "" {
		source = catalog.FileSource{Path: cfg.CatalogPath}
	}
	snap, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("initial catalog load failed: %w", err)
	}
	validation.NewCatalogValidator().ReportCatalogQuality(snap.File())

	store := data.NewCatalogContainer(snap)
	store.SetServerStartTime(time.Now())

	mode, err := disease.ParseMode(cfg.MatcherMode)
	if err != nil {
		return err
	}
	staleAfter := time.Duration(0)
	if cfg.ReloadEnabled() {
		staleAfter = config.StaleAfter
	}
	h := handlers.NewHTTPHandler(
		disease.NewService(store, mode),
		drug.NewService(store),
		validation.NewInputValidator(cfg.MaxGeneratedMolecules),
		health.NewHealthChecker(store, staleAfter),
	)

	srv, err := server.NewServer(cfg, h)
	if err != nil {
		return err
	}

	sched := scheduler.NewScheduler(store, source, reloadInterval(cfg), staleAfter)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func reloadInterval(cfg *config.Config) time.Duration {
	if !cfg.ReloadEnabled() {
		return 0
	}
	return cfg.CatalogReloadInterval
}
