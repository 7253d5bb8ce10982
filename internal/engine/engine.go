// Package engine orchestrates when and in what order fetches happen: on
// activation, on a fixed cadence per feed, on demand for one entity, and
// for staggered full scans. Fetch failures are isolated per entity and
// never abort sibling work.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"marketsense/internal/config"
	apperrors "marketsense/internal/errors"
	"marketsense/internal/logging"
	"marketsense/internal/models"
	"marketsense/internal/store"
	"marketsense/internal/stream"
)

// refreshFailedMessage is the user-visible error recorded on a failed
// entity refresh.
const refreshFailedMessage = "Update failed. Try again."

// Analyzer is the gateway surface the scheduler depends on. All three
// operations fail closed; the scheduler never handles per-call errors.
type Analyzer interface {
	AnalyzeEntity(ctx context.Context, name string, kind models.EntityKind) models.AnalysisResult
	FetchNews(ctx context.Context) models.NewsResult
	FetchCalendar(ctx context.Context) models.CalendarResult
}

// Engine owns the refresh timers, the liveness guard, and the watchlist.
// It is the explicit context object for all engine-wide mutable state;
// nothing here is an ambient global.
type Engine struct {
	cfg      config.EngineConfig
	gateway  Analyzer
	store    *store.EntityStore
	hub      *stream.Hub
	logger   zerolog.Logger
	hasCreds bool

	// alive guards store commits: results landing after Teardown are
	// discarded instead of mutating a dashboard nobody displays.
	alive   atomic.Bool
	mu      sync.Mutex
	active  bool
	stop    chan struct{}
	wg      sync.WaitGroup

	// sleep is injectable so stagger behavior is testable without wall time.
	sleep func(time.Duration)
}

// New creates an engine. hasCredential reflects the startup credential
// precondition: when false the engine stays inert and only surfaces the
// configuration error.
func New(cfg config.EngineConfig, gw Analyzer, st *store.EntityStore, hub *stream.Hub, hasCredential bool, logger zerolog.Logger) *Engine {
	e := &Engine{
		cfg:      cfg,
		gateway:  gw,
		store:    st,
		hub:      hub,
		logger:   logger,
		hasCreds: hasCredential,
		sleep:    time.Sleep,
	}
	e.alive.Store(true)
	return e
}

// Store exposes the read model for the rendering layer.
func (e *Engine) Store() *store.EntityStore { return e.store }

// Hub exposes the state-event hub for the rendering layer.
func (e *Engine) Hub() *stream.Hub { return e.hub }

// ConfigError reports the missing-credential condition. It is permanent:
// no retry changes it within a process lifetime.
func (e *Engine) ConfigError() bool { return !e.hasCreds }

// Activate starts the periodic news and calendar timers and performs the
// immediate first fetch of both feeds. It fails with ErrMissingCredential
// when the credential precondition is unsatisfied, leaving the engine
// inert.
func (e *Engine) Activate(ctx context.Context) error {
	if !e.hasCreds {
		return apperrors.ErrMissingCredential
	}

	e.mu.Lock()
	if e.active {
		e.mu.Unlock()
		return nil
	}
	e.active = true
	e.stop = make(chan struct{})
	e.alive.Store(true)
	e.mu.Unlock()

	e.logger.Info().
		Dur("news_interval", e.cfg.NewsInterval).
		Dur("calendar_interval", e.cfg.CalendarInterval).
		Msg("Engine activated")

	go e.RefreshNews(ctx)
	go e.RefreshCalendar(ctx)

	e.wg.Add(2)
	go e.feedLoop(ctx, e.cfg.NewsInterval, e.RefreshNews)
	go e.feedLoop(ctx, e.cfg.CalendarInterval, e.RefreshCalendar)

	return nil
}

// feedLoop re-fetches one feed on a fixed cadence until teardown.
func (e *Engine) feedLoop(ctx context.Context, interval time.Duration, fetch func(context.Context)) {
	defer e.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			fetch(ctx)
		}
	}
}

// Teardown stops the timers, closes the hub, and flips the liveness flag
// so in-flight results are discarded rather than committed.
func (e *Engine) Teardown() {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return
	}
	e.active = false
	close(e.stop)
	e.mu.Unlock()

	e.alive.Store(false)
	e.wg.Wait()
	if e.hub != nil {
		e.hub.Close()
	}
	e.logger.Info().Msg("Engine torn down")
}

// RefreshEntity fetches one entity by id. The failure of this fetch is
// isolated: the entity lands in ERROR with its stale content preserved.
func (e *Engine) RefreshEntity(ctx context.Context, id string) error {
	if !e.hasCreds {
		return apperrors.ErrMissingCredential
	}

	entity, ok := e.store.Entity(id)
	if !ok {
		return apperrors.ErrEntityNotFound
	}

	logger := logging.WithEntity(e.logger, id)

	e.store.BeginRefresh(id)
	result := e.gateway.AnalyzeEntity(ctx, entity.DisplayName, entity.Kind)

	if !e.alive.Load() {
		logger.Debug().Msg("Result discarded after teardown")
		return nil
	}
	if !result.OK {
		e.store.FailRefresh(id, refreshFailedMessage)
		return nil
	}

	e.store.CompleteRefresh(id, result)
	logging.LogAnalysis(logger, id, string(result.Signal), result.Score)
	return nil
}

// RefreshNews fetches the news pulse once. Fail-stale: on failure the
// previous items stay visible.
func (e *Engine) RefreshNews(ctx context.Context) {
	if !e.hasCreds {
		return
	}

	e.store.BeginNews()
	result := e.gateway.FetchNews(ctx)

	if !e.alive.Load() {
		return
	}
	if !result.OK {
		e.store.FailNews(result.MarketMood)
		return
	}
	e.store.CompleteNews(result)
}

// RefreshCalendar fetches the weekly calendar once. Fail-closed: a failed
// fetch overwrites the calendar with empty lists.
func (e *Engine) RefreshCalendar(ctx context.Context) {
	if !e.hasCreds {
		return
	}

	e.store.BeginCalendar()
	result := e.gateway.FetchCalendar(ctx)

	if !e.alive.Load() {
		return
	}
	e.store.SetCalendar(result)
}

// scanOffsets returns the relative start offset for each entity in a full
// scan: sector i at i*stagger, stock j at (sectorCount+j)*stagger. The
// stagger bounds simultaneous outbound load against the completion
// service; it is deliberate rate limiting, not an accident of scheduling.
func scanOffsets(sectorCount, stockCount int, stagger time.Duration) []time.Duration {
	offsets := make([]time.Duration, 0, sectorCount+stockCount)
	for i := 0; i < sectorCount+stockCount; i++ {
		offsets = append(offsets, time.Duration(i)*stagger)
	}
	return offsets
}

// ScanAll refreshes every sector then every watchlist stock, staggered by
// the configured delay, plus an immediate news and calendar fetch. Each
// entity runs in its own goroutine; one failure never aborts siblings.
func (e *Engine) ScanAll(ctx context.Context) error {
	if !e.hasCreds {
		return apperrors.ErrMissingCredential
	}

	sectors := e.store.Sectors()
	watchlist := e.store.Watchlist()

	ids := make([]string, 0, len(sectors)+len(watchlist))
	for _, s := range sectors {
		ids = append(ids, s.ID)
	}
	for _, w := range watchlist {
		ids = append(ids, w.ID)
	}

	offsets := scanOffsets(len(sectors), len(watchlist), e.cfg.ScanStagger)
	for i, id := range ids {
		id, offset := id, offsets[i]
		go func() {
			if offset > 0 {
				e.sleep(offset)
			}
			if !e.alive.Load() {
				return
			}
			_ = e.RefreshEntity(ctx, id)
		}()
	}

	go e.RefreshNews(ctx)
	go e.RefreshCalendar(ctx)

	e.logger.Info().Int("entities", len(ids)).Msg("Full scan started")
	return nil
}
