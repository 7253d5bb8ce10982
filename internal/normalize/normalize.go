// Package normalize turns free-form completion-service output into
// validated, typed domain records. Its contract is graceful degradation:
// one malformed field never invalidates the rest of the payload, and one
// malformed payload never surfaces as an error to callers.
package normalize

import (
	"encoding/json"
	"regexp"
	"strings"

	"marketsense/internal/models"
)

// fallbackExcerptLen bounds the raw-text excerpt embedded in fallback
// summaries so the failure is visible without flooding the UI.
const fallbackExcerptLen = 100

var (
	jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	anyFenceRe  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// extractTree locates the structured block in raw model output and decodes
// it into an untyped tree: a ```json fence first, then any fence, then the
// whole text as JSON. Returns nil when nothing decodes.
func extractTree(text string) map[string]any {
	candidates := make([]string, 0, 3)
	if m := jsonFenceRe.FindStringSubmatch(text); len(m) == 2 {
		candidates = append(candidates, m[1])
	}
	if m := anyFenceRe.FindStringSubmatch(text); len(m) == 2 {
		candidates = append(candidates, m[1])
	}
	candidates = append(candidates, strings.TrimSpace(text))

	for _, c := range candidates {
		if c == "" {
			continue
		}
		var tree map[string]any
		if err := json.Unmarshal([]byte(c), &tree); err == nil {
			return tree
		}
	}
	return nil
}

// excerpt returns the head of raw text for a diagnostic summary.
func excerpt(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > fallbackExcerptLen {
		return text[:fallbackExcerptLen] + "..."
	}
	return text
}

// Total per-field coercion helpers. Each accepts anything the decoded tree
// may contain and returns the documented default on mismatch; a direct
// cast is never used on model-shaped data.

func asString(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func asInt(v any, def int) int {
	// encoding/json decodes all numbers as float64.
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return def
}

func asStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asObjectList(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func asPickList(v any) []models.StockRecommendation {
	objs := asObjectList(v)
	out := make([]models.StockRecommendation, 0, len(objs))
	for _, obj := range objs {
		pick := models.StockRecommendation{
			Symbol: asString(obj["symbol"], ""),
			Name:   asString(obj["name"], ""),
			Reason: asString(obj["reason"], ""),
		}
		if pick.Symbol == "" && pick.Name == "" {
			continue
		}
		out = append(out, pick)
	}
	return out
}

// SentimentRecord is the normalized per-entity analysis payload.
type SentimentRecord struct {
	Signal    models.Signal
	Score     int
	Summary   string
	Catalysts models.Catalysts
	TopPicks  models.TopPicks
	// Parsed is false when no structured block could be decoded at all and
	// the record carries the fixed fallback values.
	Parsed bool
}

// Sentiment extracts a sentiment record from raw model output. Missing or
// wrong-typed fields get their documented defaults: signal UNKNOWN, score
// 50, empty lists. Total parse failure yields the fixed fallback record
// with a diagnostic summary built from the head of the raw text.
func Sentiment(text string) SentimentRecord {
	tree := extractTree(text)
	if tree == nil {
		return SentimentRecord{
			Signal:  models.SignalUnknown,
			Score:   models.NeutralScore,
			Summary: "Data format error. Raw response: " + excerpt(text),
			Catalysts: models.Catalysts{
				Positive: []string{},
				Negative: []string{},
			},
			TopPicks: models.TopPicks{
				Buy:  []models.StockRecommendation{},
				Sell: []models.StockRecommendation{},
			},
		}
	}

	return SentimentRecord{
		Signal:  models.ParseSignal(asString(tree["signal"], "")),
		Score:   asInt(tree["score"], models.NeutralScore),
		Summary: asString(tree["summary"], "No summary available."),
		Catalysts: models.Catalysts{
			Positive: asStringList(tree["positive_catalysts"]),
			Negative: asStringList(tree["negative_risks"]),
		},
		TopPicks: models.TopPicks{
			Buy:  asPickList(tree["top_picks_buy"]),
			Sell: asPickList(tree["top_picks_sell"]),
		},
		Parsed: true,
	}
}

// NewsPulseRecord is the normalized news-feed payload.
type NewsPulseRecord struct {
	MarketMood string
	Parsed     bool
}

// newsFallbackMood is shown when the news payload cannot be decoded.
const newsFallbackMood = "Market data currently unavailable."

// NewsPulse extracts the one-sentence market mood from raw model output.
func NewsPulse(text string) NewsPulseRecord {
	tree := extractTree(text)
	if tree == nil {
		return NewsPulseRecord{MarketMood: newsFallbackMood}
	}
	return NewsPulseRecord{
		MarketMood: asString(tree["market_pulse"], "Tracking market movements..."),
		Parsed:     true,
	}
}

// Calendar extracts the weekly calendar record from raw model output.
// Total parse failure resets both lists to empty (fail-closed).
func Calendar(text string) models.CalendarResult {
	tree := extractTree(text)
	if tree == nil {
		return models.CalendarResult{
			Economic: []models.EconomicEvent{},
			Earnings: []models.EarningsEvent{},
		}
	}

	economic := make([]models.EconomicEvent, 0)
	for _, obj := range asObjectList(tree["economic_events"]) {
		ev := models.EconomicEvent{
			Title:       asString(obj["title"], ""),
			WhenText:    asString(obj["date"], ""),
			Impact:      models.ParseImpact(asString(obj["impact"], "")),
			Category:    models.ParseCategory(asString(obj["category"], "")),
			Description: asString(obj["description"], ""),
		}
		if ev.Title == "" {
			continue
		}
		economic = append(economic, ev)
	}

	earnings := make([]models.EarningsEvent, 0)
	for _, obj := range asObjectList(tree["earnings_events"]) {
		ev := models.EarningsEvent{
			Ticker:       asString(obj["ticker"], ""),
			CompanyName:  asString(obj["name"], ""),
			WhenText:     asString(obj["date"], ""),
			Session:      models.ParseSession(asString(obj["time"], "")),
			EstimateText: asString(obj["estimate"], ""),
		}
		if ev.Ticker == "" && ev.CompanyName == "" {
			continue
		}
		earnings = append(earnings, ev)
	}

	return models.CalendarResult{Economic: economic, Earnings: earnings}
}
