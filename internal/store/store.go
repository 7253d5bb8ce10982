// Package store holds the in-memory collection of tracked entities and the
// two global feeds. Every mutation is an atomic replace-record-by-id under
// one lock, which is what makes concurrent in-flight refreshes for
// different ids safe without further coordination. Mutations for unknown
// ids are silent no-ops, so results landing for removed entities are
// harmless.
package store

import (
	"strings"
	"sync"
	"time"

	"marketsense/internal/models"
	"marketsense/internal/stream"
)

// EntityStore owns all dashboard state visible to the rendering layer.
type EntityStore struct {
	mu        sync.RWMutex
	sectors   []models.TrackedEntity
	watchlist []models.TrackedEntity
	news      models.NewsFeedState
	calendar  models.CalendarState

	hub *stream.Hub
	now func() time.Time
}

// New creates a store pre-populated with the fixed sector set. Sectors are
// permanent; only watchlist stocks come and go.
func New(sectors []models.SectorDefinition, hub *stream.Hub) *EntityStore {
	s := &EntityStore{
		hub: hub,
		now: time.Now,
		news: models.NewsFeedState{
			MarketMood: "Initializing market stream...",
		},
	}
	for _, def := range sectors {
		s.sectors = append(s.sectors, models.NewEntity(def.ID, def.Name, models.KindSector))
	}
	return s
}

// SetClock overrides the time source. Test hook.
func (s *EntityStore) SetClock(now func() time.Time) {
	s.now = now
}

func (s *EntityStore) publish(t stream.EventType, id string) {
	if s.hub != nil {
		s.hub.Publish(stream.Event{Type: t, EntityID: id})
	}
}

// find returns a pointer into the live slices. Callers must hold the lock.
func (s *EntityStore) find(id string) *models.TrackedEntity {
	for i := range s.sectors {
		if s.sectors[i].ID == id {
			return &s.sectors[i]
		}
	}
	for i := range s.watchlist {
		if s.watchlist[i].ID == id {
			return &s.watchlist[i]
		}
	}
	return nil
}

// BeginRefresh moves an entity into REFRESHING: the prior error is cleared
// but existing content stays visibly stale under the loading indicator.
// No-op for unknown ids.
func (s *EntityStore) BeginRefresh(id string) {
	s.mu.Lock()
	if e := s.find(id); e != nil {
		e.Status = models.StatusRefreshing
		e.ErrorMessage = ""
	}
	s.mu.Unlock()
	s.publish(stream.EventEntityUpdated, id)
}

// CompleteRefresh commits a successful analysis: all content fields are
// replaced and lastRefreshedAt is stamped. No-op for unknown ids.
func (s *EntityStore) CompleteRefresh(id string, result models.AnalysisResult) {
	s.mu.Lock()
	if e := s.find(id); e != nil {
		e.Status = models.StatusIdle
		e.ErrorMessage = ""
		e.Signal = result.Signal
		e.Score = result.Score
		e.Summary = result.Summary
		e.Catalysts = result.Catalysts
		e.TopPicks = result.TopPicks
		e.Citations = result.Citations
		e.LastRefreshedAt = s.now()
	}
	s.mu.Unlock()
	s.publish(stream.EventEntityUpdated, id)
}

// FailRefresh records a failed refresh: status and message only, all other
// fields (including lastRefreshedAt) stay untouched so last-known-good
// data remains visible. No-op for unknown ids.
func (s *EntityStore) FailRefresh(id, message string) {
	s.mu.Lock()
	if e := s.find(id); e != nil {
		e.Status = models.StatusError
		e.ErrorMessage = message
	}
	s.mu.Unlock()
	s.publish(stream.EventEntityUpdated, id)
}

// AddStock inserts a watchlist entity already in REFRESHING so the first
// render never flashes a "never updated" card before its initial fetch.
func (s *EntityStore) AddStock(id, displayName string) models.TrackedEntity {
	e := models.NewEntity(id, displayName, models.KindStock)
	e.Status = models.StatusRefreshing
	e.Summary = "Initializing scan..."

	s.mu.Lock()
	s.watchlist = append(s.watchlist, e)
	s.mu.Unlock()

	s.publish(stream.EventWatchlistChanged, id)
	return e.Clone()
}

// RemoveStock deletes a watchlist entity unconditionally. An in-flight
// refresh for the removed id will land as a no-op. Returns false when the
// id is not a watchlist entity (sectors cannot be removed).
func (s *EntityStore) RemoveStock(id string) bool {
	s.mu.Lock()
	removed := false
	for i := range s.watchlist {
		if s.watchlist[i].ID == id {
			s.watchlist = append(s.watchlist[:i], s.watchlist[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()

	if removed {
		s.publish(stream.EventWatchlistChanged, id)
	}
	return removed
}

// HasStockMatching reports whether any watchlist entity's display name
// contains the given symbol or name fragment. Used for duplicate-add
// rejection.
func (s *EntityStore) HasStockMatching(fragment string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.watchlist {
		if containsFold(s.watchlist[i].DisplayName, fragment) {
			return true
		}
	}
	return false
}

// BeginNews flags the news feed as refreshing.
func (s *EntityStore) BeginNews() {
	s.mu.Lock()
	s.news.IsRefreshing = true
	s.mu.Unlock()
	s.publish(stream.EventNewsUpdated, "")
}

// CompleteNews overwrites the feed wholesale and stamps the refresh time.
func (s *EntityStore) CompleteNews(result models.NewsResult) {
	s.mu.Lock()
	s.news.IsRefreshing = false
	s.news.MarketMood = result.MarketMood
	s.news.Items = result.Items
	s.news.LastRefreshedAt = s.now()
	s.mu.Unlock()
	s.publish(stream.EventNewsUpdated, "")
}

// FailNews clears the refreshing flag but keeps the previous items visible
// (fail-stale). Only the mood line reflects the failure.
func (s *EntityStore) FailNews(mood string) {
	s.mu.Lock()
	s.news.IsRefreshing = false
	if mood != "" {
		s.news.MarketMood = mood
	}
	s.mu.Unlock()
	s.publish(stream.EventNewsUpdated, "")
}

// BeginCalendar flags the calendar as refreshing.
func (s *EntityStore) BeginCalendar() {
	s.mu.Lock()
	s.calendar.IsRefreshing = true
	s.mu.Unlock()
	s.publish(stream.EventCalendarUpdated, "")
}

// SetCalendar overwrites the calendar wholesale. A failed fetch passes
// empty lists here: the calendar fails closed, unlike the news feed.
func (s *EntityStore) SetCalendar(result models.CalendarResult) {
	s.mu.Lock()
	s.calendar.IsRefreshing = false
	s.calendar.EconomicEvents = result.Economic
	s.calendar.EarningsEvents = result.Earnings
	s.mu.Unlock()
	s.publish(stream.EventCalendarUpdated, "")
}

// Read model. All reads return deep copies so renders never alias store
// state.

// Sectors returns the ordered sector entities.
func (s *EntityStore) Sectors() []models.TrackedEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.sectors)
}

// Watchlist returns the ordered watchlist entities.
func (s *EntityStore) Watchlist() []models.TrackedEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.watchlist)
}

// Entity returns one entity by id.
func (s *EntityStore) Entity(id string) (models.TrackedEntity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e := s.find(id); e != nil {
		return e.Clone(), true
	}
	return models.TrackedEntity{}, false
}

// News returns the news feed state.
func (s *EntityStore) News() models.NewsFeedState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.news.Clone()
}

// Calendar returns the calendar state.
func (s *EntityStore) Calendar() models.CalendarState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calendar.Clone()
}

func cloneAll(entities []models.TrackedEntity) []models.TrackedEntity {
	out := make([]models.TrackedEntity, 0, len(entities))
	for i := range entities {
		out = append(out, entities[i].Clone())
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return needle != "" &&
		strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
