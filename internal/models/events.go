package models

import "time"

// Impact represents the expected market impact of an economic event.
type Impact string

const (
	ImpactHigh   Impact = "HIGH"
	ImpactMedium Impact = "MEDIUM"
	ImpactLow    Impact = "LOW"
)

// ParseImpact maps free-form model output to an Impact, defaulting to MEDIUM.
func ParseImpact(s string) Impact {
	switch Impact(s) {
	case ImpactHigh, ImpactMedium, ImpactLow:
		return Impact(s)
	default:
		return ImpactMedium
	}
}

// EventCategory classifies an economic calendar event.
type EventCategory string

const (
	CategoryEconomic  EventCategory = "ECONOMIC"
	CategoryPolitical EventCategory = "POLITICAL"
)

// ParseCategory maps free-form model output to a category, defaulting to ECONOMIC.
func ParseCategory(s string) EventCategory {
	switch EventCategory(s) {
	case CategoryEconomic, CategoryPolitical:
		return EventCategory(s)
	default:
		return CategoryEconomic
	}
}

// EarningsSession indicates when during the trading day earnings land.
type EarningsSession string

const (
	SessionPreMarket  EarningsSession = "PRE_MARKET"
	SessionAfterClose EarningsSession = "AFTER_CLOSE"
	SessionDuringDay  EarningsSession = "DURING_DAY"
	SessionUnknown    EarningsSession = "UNKNOWN"
)

// ParseSession maps the loose session strings the model emits
// ("Pre-Market", "After-Close", "During-Day") to an EarningsSession.
func ParseSession(s string) EarningsSession {
	switch s {
	case "Pre-Market", "PRE_MARKET":
		return SessionPreMarket
	case "After-Close", "AFTER_CLOSE":
		return SessionAfterClose
	case "During-Day", "DURING_DAY":
		return SessionDuringDay
	default:
		return SessionUnknown
	}
}

// EconomicEvent is one scheduled economic or political event.
type EconomicEvent struct {
	Title       string
	WhenText    string // human-readable schedule text, e.g. "Tue, Nov 14 - 8:30 AM EST"
	Impact      Impact
	Category    EventCategory
	Description string
}

// EarningsEvent is one scheduled earnings release.
type EarningsEvent struct {
	Ticker       string
	CompanyName  string
	WhenText     string
	Session      EarningsSession
	EstimateText string
}

// NewsFeedState is the singleton breaking-news feed. It is overwritten
// wholesale on each successful refresh; on failure the previous items
// remain visible (fail-stale).
type NewsFeedState struct {
	MarketMood      string
	Items           []Citation
	LastRefreshedAt time.Time
	IsRefreshing    bool
}

// Clone returns a deep copy of the feed state.
func (n NewsFeedState) Clone() NewsFeedState {
	c := n
	c.Items = append([]Citation(nil), n.Items...)
	return c
}

// CalendarState is the singleton weekly economic/earnings calendar.
// Overwritten wholesale on each refresh; a failed refresh resets both
// lists to empty (fail-closed, unlike the news feed).
type CalendarState struct {
	EconomicEvents []EconomicEvent
	EarningsEvents []EarningsEvent
	IsRefreshing   bool
}

// Clone returns a deep copy of the calendar state.
func (c CalendarState) Clone() CalendarState {
	out := c
	out.EconomicEvents = append([]EconomicEvent(nil), c.EconomicEvents...)
	out.EarningsEvents = append([]EarningsEvent(nil), c.EarningsEvents...)
	return out
}

// NewsResult is the typed outcome of one news-pulse fetch.
type NewsResult struct {
	OK         bool
	MarketMood string
	Items      []Citation
}

// CalendarResult is the typed outcome of one calendar fetch.
type CalendarResult struct {
	Economic []EconomicEvent
	Earnings []EarningsEvent
}
