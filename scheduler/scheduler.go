// Package scheduler reloads the disease catalog on a fixed interval and
// watches for catalogs that have gone stale.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/giygas/d3ai-api/interfaces"
	"github.com/giygas/d3ai-api/logging"
	"github.com/giygas/d3ai-api/metrics"
	"github.com/giygas/d3ai-api/validation"
	"github.com/go-co-op/gocron"
)

var _ interfaces.Scheduler = (*Scheduler)(nil)

// ErrUpdateInProgress is returned by Reload when another reload holds the
// update flag.
var ErrUpdateInProgress = errors.New("catalog update already in progress")

// Scheduler handles catalog reloads and staleness monitoring.
type Scheduler struct {
	store      interfaces.CatalogStore
	source     interfaces.CatalogSource
	validator  interfaces.CatalogValidator
	interval   time.Duration
	staleAfter time.Duration
	scheduler  *gocron.Scheduler

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// NewScheduler creates a scheduler reloading source into store every
// interval. A zero interval keeps only the staleness monitor.
func NewScheduler(store interfaces.CatalogStore, source interfaces.CatalogSource, interval, staleAfter time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		store:      store,
		source:     source,
		validator:  validation.NewCatalogValidator(),
		interval:   interval,
		staleAfter: staleAfter,
		scheduler:  gocron.NewScheduler(time.Local),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start schedules the jobs in singleton mode, so a slow run is never
// overlapped by the next tick. The first reload happens one interval after
// Start; the initial catalog is loaded by the caller.
func (s *Scheduler) Start() error {
	if s.interval > 0 {
		_, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(func() {
			if err := s.Reload(s.ctx); err != nil && !errors.Is(err, ErrUpdateInProgress) {
				logging.Error("Failed to reload catalog", "source", s.source.Name(), "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule catalog reload: %w", err)
		}
		logging.Info("Catalog reload scheduled", "source", s.source.Name(), "interval", s.interval.String())
	}

	if s.staleAfter > 0 {
		_, err := s.scheduler.Every(1).Hour().WaitForSchedule().SingletonMode().Do(s.checkStaleness)
		if err != nil {
			return fmt.Errorf("failed to schedule staleness monitor: %w", err)
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels a reload in flight.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.scheduler.Stop()
	})
}

// Reload loads a new snapshot from the source and swaps it in. On failure
// the current snapshot keeps serving and the error is recorded for the
// health check.
func (s *Scheduler) Reload(ctx context.Context) error {
	if !s.store.BeginUpdate() {
		logging.Info("Update already in progress, skipping...")
		return ErrUpdateInProgress
	}
	defer s.store.EndUpdate()

	start := time.Now()
	logging.Info("Starting catalog reload", "source", s.source.Name())

	snap, err := s.source.Load(ctx)
	if err != nil {
		err = fmt.Errorf("failed to load catalog from %s: %w", s.source.Name(), err)
		s.store.SetReloadError(err)
		metrics.ObserveReload(err)
		return err
	}

	// Quality issues are logged by the validator; they do not block the swap.
	s.validator.ReportCatalogQuality(snap.File())

	s.store.Replace(snap)
	s.store.SetReloadError(nil)
	metrics.ObserveReload(nil)

	logging.Info("Catalog reload completed",
		"duration", time.Since(start).String(),
		"diseases", snap.DiseaseCount(),
		"drugs", snap.DrugCount(),
	)
	return nil
}

// checkStaleness warns when the catalog has not been refreshed recently.
func (s *Scheduler) checkStaleness() {
	if s.interval <= 0 {
		return
	}
	lastUpdate := s.store.GetLastUpdated()
	if IsStale(lastUpdate, s.staleAfter, time.Now()) {
		logging.Warn("Catalog hasn't been updated recently",
			"last_update", lastUpdate.Format(time.RFC3339),
			"stale_after", s.staleAfter.String(),
		)
	}
}

// IsStale reports whether lastUpdate is older than staleAfter at now.
// A zero lastUpdate is never stale.
func IsStale(lastUpdate time.Time, staleAfter time.Duration, now time.Time) bool {
	if lastUpdate.IsZero() || staleAfter <= 0 {
		return false
	}
	return now.Sub(lastUpdate) > staleAfter
}
