package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	"marketsense/internal/config"
	apperrors "marketsense/internal/errors"
	"marketsense/internal/models"
	"marketsense/internal/store"
	"marketsense/internal/stream"
)

// fakeAnalyzer is a scriptable Analyzer that records calls.
type fakeAnalyzer struct {
	mu            sync.Mutex
	entityCalls   []string
	newsCalls     int
	calendarCalls int

	entityOK bool
	newsOK   bool

	// gate, when non-nil, blocks AnalyzeEntity until closed.
	gate chan struct{}
}

func newFakeAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{entityOK: true, newsOK: true}
}

func (f *fakeAnalyzer) AnalyzeEntity(ctx context.Context, name string, kind models.EntityKind) models.AnalysisResult {
	f.mu.Lock()
	f.entityCalls = append(f.entityCalls, name)
	ok := f.entityOK
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	if !ok {
		return models.AnalysisResult{OK: false, Signal: models.SignalUnknown, Score: models.NeutralScore}
	}
	return models.AnalysisResult{OK: true, Signal: models.SignalBuy, Score: 72, Summary: "up"}
}

func (f *fakeAnalyzer) FetchNews(ctx context.Context) models.NewsResult {
	f.mu.Lock()
	f.newsCalls++
	ok := f.newsOK
	f.mu.Unlock()

	if !ok {
		return models.NewsResult{OK: false, MarketMood: "Unable to load market stream.", Items: []models.Citation{}}
	}
	return models.NewsResult{
		OK:         true,
		MarketMood: "Steady.",
		Items:      []models.Citation{{Title: "h", URL: "https://n.com/1", Source: "n.com"}},
	}
}

func (f *fakeAnalyzer) FetchCalendar(ctx context.Context) models.CalendarResult {
	f.mu.Lock()
	f.calendarCalls++
	f.mu.Unlock()
	return models.CalendarResult{
		Economic: []models.EconomicEvent{{Title: "CPI"}},
		Earnings: []models.EarningsEvent{},
	}
}

func (f *fakeAnalyzer) counts() (entities int, news int, calendar int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entityCalls), f.newsCalls, f.calendarCalls
}

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		NewsInterval:     time.Hour,
		CalendarInterval: time.Hour,
		ScanStagger:      time.Second,
		EntityCitations:  5,
		NewsCitations:    10,
	}
}

func newTestEngine(fake *fakeAnalyzer, hasCreds bool) *Engine {
	st := store.New(models.DefaultSectors, nil)
	return New(testEngineConfig(), fake, st, stream.NewHub(), hasCreds, zerolog.Nop())
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached before timeout")
}

func TestActivateWithoutCredentialIsInert(t *testing.T) {
	fake := newFakeAnalyzer()
	e := newTestEngine(fake, false)

	if !e.ConfigError() {
		t.Error("ConfigError must report the missing credential")
	}
	if err := e.Activate(context.Background()); !errors.Is(err, apperrors.ErrMissingCredential) {
		t.Fatalf("Activate err = %v, want ErrMissingCredential", err)
	}
	if err := e.RefreshEntity(context.Background(), "tech"); !errors.Is(err, apperrors.ErrMissingCredential) {
		t.Errorf("RefreshEntity err = %v", err)
	}
	if err := e.ScanAll(context.Background()); !errors.Is(err, apperrors.ErrMissingCredential) {
		t.Errorf("ScanAll err = %v", err)
	}
	e.RefreshNews(context.Background())
	e.RefreshCalendar(context.Background())

	entities, news, calendar := fake.counts()
	if entities+news+calendar != 0 {
		t.Errorf("inert engine made %d/%d/%d calls", entities, news, calendar)
	}
}

func TestActivateFetchesBothFeedsImmediately(t *testing.T) {
	fake := newFakeAnalyzer()
	e := newTestEngine(fake, true)
	defer e.Teardown()

	if err := e.Activate(context.Background()); err != nil {
		t.Fatal(err)
	}
	// Idempotent.
	if err := e.Activate(context.Background()); err != nil {
		t.Fatal(err)
	}

	waitFor(t, time.Second, func() bool {
		_, news, calendar := fake.counts()
		return news == 1 && calendar == 1
	})

	waitFor(t, time.Second, func() bool {
		return e.Store().News().MarketMood == "Steady."
	})
	if cal := e.Store().Calendar(); len(cal.EconomicEvents) != 1 {
		t.Errorf("calendar not committed: %+v", cal)
	}
}

func TestRefreshEntityCommitsOnSuccess(t *testing.T) {
	fake := newFakeAnalyzer()
	e := newTestEngine(fake, true)

	if err := e.RefreshEntity(context.Background(), "tech"); err != nil {
		t.Fatal(err)
	}

	entity, _ := e.Store().Entity("tech")
	if entity.Status != models.StatusIdle || entity.Signal != models.SignalBuy || entity.Score != 72 {
		t.Errorf("commit missing: %+v", entity)
	}
}

func TestRefreshEntityFailureIsIsolated(t *testing.T) {
	fake := newFakeAnalyzer()
	fake.entityOK = false
	e := newTestEngine(fake, true)

	if err := e.RefreshEntity(context.Background(), "tech"); err != nil {
		t.Fatalf("gateway failure must not surface as an error: %v", err)
	}

	entity, _ := e.Store().Entity("tech")
	if entity.Status != models.StatusError {
		t.Errorf("status = %s, want ERROR", entity.Status)
	}
	if entity.ErrorMessage != refreshFailedMessage {
		t.Errorf("message = %q", entity.ErrorMessage)
	}

	// Siblings untouched.
	for _, s := range e.Store().Sectors() {
		if s.ID != "tech" && s.Status != models.StatusIdle {
			t.Errorf("sector %s affected by sibling failure: %s", s.ID, s.Status)
		}
	}
}

func TestRefreshEntityUnknownID(t *testing.T) {
	e := newTestEngine(newFakeAnalyzer(), true)
	if err := e.RefreshEntity(context.Background(), "ghost"); !errors.Is(err, apperrors.ErrEntityNotFound) {
		t.Errorf("err = %v, want ErrEntityNotFound", err)
	}
}

func TestRefreshNewsFailStale(t *testing.T) {
	fake := newFakeAnalyzer()
	e := newTestEngine(fake, true)

	e.RefreshNews(context.Background())
	fake.mu.Lock()
	fake.newsOK = false
	fake.mu.Unlock()
	e.RefreshNews(context.Background())

	news := e.Store().News()
	if news.MarketMood != "Unable to load market stream." {
		t.Errorf("mood = %q", news.MarketMood)
	}
	if len(news.Items) != 1 {
		t.Errorf("failed refresh must keep prior items, got %d", len(news.Items))
	}
}

func TestTeardownDiscardsInFlightResults(t *testing.T) {
	fake := newFakeAnalyzer()
	fake.gate = make(chan struct{})
	e := newTestEngine(fake, true)

	if err := e.Activate(context.Background()); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		_ = e.RefreshEntity(context.Background(), "tech")
		close(done)
	}()

	waitFor(t, time.Second, func() bool {
		entity, _ := e.Store().Entity("tech")
		return entity.Status == models.StatusRefreshing
	})

	e.Teardown()
	close(fake.gate)
	<-done

	entity, _ := e.Store().Entity("tech")
	if entity.Status != models.StatusRefreshing {
		t.Errorf("post-teardown result must be discarded, status = %s", entity.Status)
	}
	if entity.Signal == models.SignalBuy {
		t.Error("post-teardown result committed content")
	}

	// Idempotent.
	e.Teardown()
}

func TestScanAllCoversEverythingOnce(t *testing.T) {
	fake := newFakeAnalyzer()
	e := newTestEngine(fake, true)
	e.sleep = func(time.Duration) {}

	e.Store().AddStock("stock-1", "AAPL - Apple Inc.")
	e.Store().AddStock("stock-2", "TSLA - Tesla Inc.")

	if err := e.ScanAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	waitFor(t, 2*time.Second, func() bool {
		entities, news, calendar := fake.counts()
		return entities == len(models.DefaultSectors)+2 && news == 1 && calendar == 1
	})

	fake.mu.Lock()
	seen := make(map[string]int)
	for _, name := range fake.entityCalls {
		seen[name]++
	}
	fake.mu.Unlock()
	for name, n := range seen {
		if n != 1 {
			t.Errorf("entity %q scanned %d times", name, n)
		}
	}
}

func TestScanAllObservesStagger(t *testing.T) {
	fake := newFakeAnalyzer()
	e := newTestEngine(fake, true)

	var mu sync.Mutex
	var offsets []time.Duration
	e.sleep = func(d time.Duration) {
		mu.Lock()
		offsets = append(offsets, d)
		mu.Unlock()
	}

	e.Store().AddStock("stock-1", "AAPL - Apple Inc.")

	if err := e.ScanAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	total := len(models.DefaultSectors) + 1
	waitFor(t, 2*time.Second, func() bool {
		entities, _, _ := fake.counts()
		return entities == total
	})

	// Offset 0 skips the sleep call entirely.
	mu.Lock()
	defer mu.Unlock()
	if len(offsets) != total-1 {
		t.Fatalf("got %d sleeps, want %d", len(offsets), total-1)
	}
	want := make(map[time.Duration]bool)
	for i := 1; i < total; i++ {
		want[time.Duration(i)*time.Second] = true
	}
	for _, d := range offsets {
		if !want[d] {
			t.Errorf("unexpected stagger offset %s", d)
		}
		delete(want, d)
	}
}

// Stagger schedule law: offsets are 0, s, 2s, ... across sectors then
// stocks, so sector i starts at i*s and stock j at (sectors+j)*s.
func TestScanOffsetsProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("arithmetic schedule over all entities", prop.ForAll(
		func(sectors, stocks int, staggerMs int) bool {
			stagger := time.Duration(staggerMs) * time.Millisecond
			offsets := scanOffsets(sectors, stocks, stagger)

			if len(offsets) != sectors+stocks {
				return false
			}
			for i, off := range offsets {
				if off != time.Duration(i)*stagger {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 20), gen.IntRange(0, 20), gen.IntRange(0, 5000),
	))

	properties.TestingRun(t)
}
