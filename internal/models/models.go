// Package models provides domain models for the sentiment dashboard.
package models

import (
	"time"
)

// EntityKind represents the kind of a tracked entity.
type EntityKind string

const (
	KindSector EntityKind = "SECTOR"
	KindStock  EntityKind = "STOCK"
)

// Signal represents a sentiment signal for an entity.
type Signal string

const (
	SignalBuy     Signal = "BUY"
	SignalSell    Signal = "SELL"
	SignalHold    Signal = "HOLD"
	SignalUnknown Signal = "UNKNOWN"
)

// ParseSignal maps free-form model output to a Signal, defaulting to UNKNOWN.
func ParseSignal(s string) Signal {
	switch Signal(s) {
	case SignalBuy, SignalSell, SignalHold:
		return Signal(s)
	default:
		return SignalUnknown
	}
}

// EntityStatus represents the refresh state of a tracked entity.
type EntityStatus string

const (
	StatusIdle       EntityStatus = "IDLE"
	StatusRefreshing EntityStatus = "REFRESHING"
	StatusError      EntityStatus = "ERROR"
)

// NeutralScore is the sentiment score assigned before any analysis lands
// and whenever the model omits a score.
const NeutralScore = 50

// InitialSummary is shown for entities that have never been refreshed.
const InitialSummary = "Awaiting first scan..."

// Citation is a web source the completion service claims to have used.
type Citation struct {
	Title  string
	URL    string
	Source string // display hostname, may be empty when the URL is unparsable
}

// Catalysts holds the positive and negative sentiment drivers for an entity.
type Catalysts struct {
	Positive []string
	Negative []string
}

// StockRecommendation is a single buy/sell pick inside a sector analysis.
type StockRecommendation struct {
	Symbol string
	Name   string
	Reason string
}

// TopPicks holds sector-level stock recommendations. Empty for stocks.
type TopPicks struct {
	Buy  []StockRecommendation
	Sell []StockRecommendation
}

// TrackedEntity is a sector or user-added stock under sentiment analysis.
// Id and kind are immutable after creation; content fields are replaced
// wholesale by each successful refresh.
type TrackedEntity struct {
	ID              string
	DisplayName     string
	Kind            EntityKind
	Signal          Signal
	Score           int // conceptually 0-100; model output is trusted verbatim
	LastRefreshedAt time.Time
	Status          EntityStatus
	ErrorMessage    string
	Summary         string
	Catalysts       Catalysts
	TopPicks        TopPicks
	Citations       []Citation
}

// NewEntity creates a tracked entity in its pre-scan state.
func NewEntity(id, displayName string, kind EntityKind) TrackedEntity {
	return TrackedEntity{
		ID:          id,
		DisplayName: displayName,
		Kind:        kind,
		Signal:      SignalUnknown,
		Score:       NeutralScore,
		Status:      StatusIdle,
		Summary:     InitialSummary,
	}
}

// Clone returns a deep copy so store reads never alias store state.
func (e TrackedEntity) Clone() TrackedEntity {
	c := e
	c.Catalysts.Positive = append([]string(nil), e.Catalysts.Positive...)
	c.Catalysts.Negative = append([]string(nil), e.Catalysts.Negative...)
	c.TopPicks.Buy = append([]StockRecommendation(nil), e.TopPicks.Buy...)
	c.TopPicks.Sell = append([]StockRecommendation(nil), e.TopPicks.Sell...)
	c.Citations = append([]Citation(nil), e.Citations...)
	return c
}

// AnalysisResult is the typed outcome of one entity analysis. OK is false
// when the gateway conceded failure and the content fields carry the
// neutral fallback; the store must then record an error instead of
// overwriting last-known-good data.
type AnalysisResult struct {
	OK        bool
	Signal    Signal
	Score     int
	Summary   string
	Catalysts Catalysts
	TopPicks  TopPicks
	Citations []Citation
}

// SectorDefinition describes one of the fixed sectors scanned at startup.
type SectorDefinition struct {
	ID   string
	Name string
}

// DefaultSectors is the fixed sector set created at process start.
// Sectors are permanent: they are never removed at runtime.
var DefaultSectors = []SectorDefinition{
	{ID: "tech", Name: "Technology"},
	{ID: "energy", Name: "Energy"},
	{ID: "finance", Name: "Financials"},
	{ID: "healthcare", Name: "Healthcare"},
	{ID: "consumer", Name: "Consumer Disc."},
	{ID: "crypto", Name: "Crypto Assets"},
}
