package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"marketsense/internal/llm"
	"marketsense/internal/models"
)

func TestSentimentFencedJSON(t *testing.T) {
	raw := "Here is the analysis:\n```json\n" + `{
		"signal": "BUY",
		"score": 78,
		"summary": "Strong momentum across the sector.",
		"positive_catalysts": ["Rate cut hopes", "Earnings beats"],
		"negative_risks": ["Valuation stretch"],
		"top_picks_buy": [{"symbol": "NVDA", "name": "NVIDIA", "reason": "AI demand"}],
		"top_picks_sell": []
	}` + "\n```\nHope this helps."

	record := Sentiment(raw)

	if !record.Parsed {
		t.Fatal("expected fenced JSON to parse")
	}
	if record.Signal != models.SignalBuy {
		t.Errorf("signal = %s, want BUY", record.Signal)
	}
	if record.Score != 78 {
		t.Errorf("score = %d, want 78", record.Score)
	}
	if record.Summary != "Strong momentum across the sector." {
		t.Errorf("unexpected summary: %s", record.Summary)
	}
	if len(record.Catalysts.Positive) != 2 || len(record.Catalysts.Negative) != 1 {
		t.Errorf("catalysts = %d/%d, want 2/1",
			len(record.Catalysts.Positive), len(record.Catalysts.Negative))
	}
	if len(record.TopPicks.Buy) != 1 || record.TopPicks.Buy[0].Symbol != "NVDA" {
		t.Errorf("unexpected top picks: %+v", record.TopPicks)
	}
}

func TestSentimentBareJSON(t *testing.T) {
	record := Sentiment(`{"signal": "SELL", "score": 22, "summary": "Weak."}`)
	if !record.Parsed {
		t.Fatal("expected bare JSON to parse")
	}
	if record.Signal != models.SignalSell || record.Score != 22 {
		t.Errorf("got %s/%d, want SELL/22", record.Signal, record.Score)
	}
	if record.Catalysts.Positive == nil || record.Catalysts.Negative == nil {
		t.Error("missing catalyst lists must default to empty, not nil")
	}
}

func TestSentimentUnfencedFallsBackToGenericFence(t *testing.T) {
	raw := "```\n{\"signal\": \"HOLD\", \"score\": 51, \"summary\": \"Flat.\"}\n```"
	record := Sentiment(raw)
	if !record.Parsed || record.Signal != models.SignalHold {
		t.Errorf("generic fence not parsed: %+v", record)
	}
}

func TestSentimentGarbageYieldsFallback(t *testing.T) {
	raw := "I'm sorry, I cannot provide financial advice today."
	record := Sentiment(raw)

	if record.Parsed {
		t.Fatal("garbage must not count as parsed")
	}
	if record.Signal != models.SignalUnknown {
		t.Errorf("signal = %s, want UNKNOWN", record.Signal)
	}
	if record.Score != models.NeutralScore {
		t.Errorf("score = %d, want %d", record.Score, models.NeutralScore)
	}
	if !strings.HasPrefix(record.Summary, "Data format error. Raw response: ") {
		t.Errorf("fallback summary missing diagnostic prefix: %s", record.Summary)
	}
	if !strings.Contains(record.Summary, "I'm sorry") {
		t.Errorf("fallback summary should embed the raw head: %s", record.Summary)
	}
}

func TestSentimentFallbackExcerptBounded(t *testing.T) {
	raw := strings.Repeat("x", 5000)
	record := Sentiment(raw)
	if len(record.Summary) > len("Data format error. Raw response: ")+fallbackExcerptLen+len("...") {
		t.Errorf("fallback summary unbounded: %d chars", len(record.Summary))
	}
}

func TestSentimentWrongTypesGetDefaults(t *testing.T) {
	raw := `{"signal": 42, "score": "high", "summary": null,
		"positive_catalysts": "not-a-list", "top_picks_buy": [{"reason": "no ids"}]}`
	record := Sentiment(raw)

	if !record.Parsed {
		t.Fatal("valid JSON with wrong field types must still parse")
	}
	if record.Signal != models.SignalUnknown {
		t.Errorf("non-string signal must default to UNKNOWN, got %s", record.Signal)
	}
	if record.Score != models.NeutralScore {
		t.Errorf("non-numeric score must default to %d, got %d", models.NeutralScore, record.Score)
	}
	if record.Summary != "No summary available." {
		t.Errorf("null summary must get its default, got %q", record.Summary)
	}
	if len(record.Catalysts.Positive) != 0 {
		t.Errorf("non-list catalysts must be empty, got %v", record.Catalysts.Positive)
	}
	if len(record.TopPicks.Buy) != 0 {
		t.Errorf("picks without symbol or name must be dropped, got %v", record.TopPicks.Buy)
	}
}

func TestSentimentScoreNotClamped(t *testing.T) {
	record := Sentiment(`{"signal": "BUY", "score": 150, "summary": "Over."}`)
	if record.Score != 150 {
		t.Errorf("score must pass through unclamped, got %d", record.Score)
	}
}

// Every sentiment field degrades independently: for any subset of valid
// fields present, the valid ones come through and only the missing ones
// default.
func TestSentimentFieldIndependence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("present fields survive, absent fields default", prop.ForAll(
		func(hasSignal, hasScore, hasSummary bool, score int) bool {
			tree := map[string]any{}
			if hasSignal {
				tree["signal"] = "SELL"
			}
			if hasScore {
				tree["score"] = score
			}
			if hasSummary {
				tree["summary"] = "present"
			}
			raw, _ := json.Marshal(tree)

			record := Sentiment(string(raw))
			if !record.Parsed {
				return false
			}
			if hasSignal && record.Signal != models.SignalSell {
				return false
			}
			if !hasSignal && record.Signal != models.SignalUnknown {
				return false
			}
			if hasScore && record.Score != score {
				return false
			}
			if !hasScore && record.Score != models.NeutralScore {
				return false
			}
			if hasSummary && record.Summary != "present" {
				return false
			}
			if !hasSummary && record.Summary != "No summary available." {
				return false
			}
			return true
		},
		gen.Bool(), gen.Bool(), gen.Bool(), gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

func TestNewsPulse(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		mood   string
		parsed bool
	}{
		{
			name:   "fenced payload",
			raw:    "```json\n{\"market_pulse\": \"Risk-on tone into the close.\"}\n```",
			mood:   "Risk-on tone into the close.",
			parsed: true,
		},
		{
			name:   "missing key gets default",
			raw:    `{"something_else": true}`,
			mood:   "Tracking market movements...",
			parsed: true,
		},
		{
			name:   "garbage gets fallback mood",
			raw:    "no json here",
			mood:   newsFallbackMood,
			parsed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := NewsPulse(tt.raw)
			if record.MarketMood != tt.mood {
				t.Errorf("mood = %q, want %q", record.MarketMood, tt.mood)
			}
			if record.Parsed != tt.parsed {
				t.Errorf("parsed = %v, want %v", record.Parsed, tt.parsed)
			}
		})
	}
}

func TestCalendarParsesBothLists(t *testing.T) {
	raw := "```json\n" + `{
		"economic_events": [
			{"title": "CPI Release", "date": "Tue, Sep 2", "impact": "HIGH", "category": "ECONOMIC", "description": "August inflation print."},
			{"title": "", "date": "skipped"},
			{"title": "Fed Speech", "date": "Wed, Sep 3", "impact": "weird", "category": "POLITICAL"}
		],
		"earnings_events": [
			{"ticker": "AVGO", "name": "Broadcom", "date": "Thu, Sep 4", "time": "After-Close", "estimate": "$1.65 EPS"},
			{"ticker": "", "name": ""}
		]
	}` + "\n```"

	result := Calendar(raw)

	if len(result.Economic) != 2 {
		t.Fatalf("economic = %d, want 2 (empty-title entries skipped)", len(result.Economic))
	}
	if result.Economic[0].Impact != models.ImpactHigh {
		t.Errorf("impact = %s, want HIGH", result.Economic[0].Impact)
	}
	if result.Economic[1].Impact != models.ImpactMedium {
		t.Errorf("unparsable impact must default to MEDIUM, got %s", result.Economic[1].Impact)
	}
	if result.Economic[1].Category != models.CategoryPolitical {
		t.Errorf("category = %s, want POLITICAL", result.Economic[1].Category)
	}
	if len(result.Earnings) != 1 {
		t.Fatalf("earnings = %d, want 1 (no-identity entries skipped)", len(result.Earnings))
	}
	if result.Earnings[0].Session != models.SessionAfterClose {
		t.Errorf("session = %s, want AFTER_CLOSE", result.Earnings[0].Session)
	}
}

func TestCalendarFailsClosed(t *testing.T) {
	result := Calendar("not a payload")
	if result.Economic == nil || result.Earnings == nil {
		t.Fatal("failed calendar parse must yield empty lists, not nil")
	}
	if len(result.Economic) != 0 || len(result.Earnings) != 0 {
		t.Errorf("failed parse must be empty, got %d/%d", len(result.Economic), len(result.Earnings))
	}
}

func TestDedupCitations(t *testing.T) {
	sources := []llm.Source{
		{URI: "https://www.reuters.com/a", Title: "First"},
		{URI: "https://www.reuters.com/a", Title: "Duplicate"},
		{URI: "https://bloomberg.com/b", Title: "Second"},
		{URI: "", Title: ""},
		{URI: "", Title: "No URL"},
	}

	citations := DedupCitations(sources, 5)

	if len(citations) != 3 {
		t.Fatalf("got %d citations, want 3", len(citations))
	}
	if citations[0].Title != "First" {
		t.Errorf("dedup must keep first-seen, got %q", citations[0].Title)
	}
	if citations[0].Source != "reuters.com" {
		t.Errorf("source host = %q, want reuters.com (www stripped)", citations[0].Source)
	}
	if citations[1].Source != "bloomberg.com" {
		t.Errorf("source host = %q, want bloomberg.com", citations[1].Source)
	}
	if citations[2].Title != "No URL" || citations[2].Source != "" {
		t.Errorf("title-only source must survive with empty host: %+v", citations[2])
	}
}

// Deduplication law: output URLs are unique, order follows first
// appearance, and length never exceeds the cap.
func TestDedupCitationsProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	genSources := gen.SliceOf(gen.IntRange(0, 9).Map(func(n int) llm.Source {
		return llm.Source{
			URI:   fmt.Sprintf("https://example.com/%d", n),
			Title: fmt.Sprintf("Article %d", n),
		}
	}))

	properties.Property("unique, ordered, capped", prop.ForAll(
		func(sources []llm.Source, max int) bool {
			citations := DedupCitations(sources, max)

			if len(citations) > max {
				return false
			}
			seen := make(map[string]struct{})
			for _, c := range citations {
				if _, dup := seen[c.URL]; dup {
					return false
				}
				seen[c.URL] = struct{}{}
			}
			// Order must match first appearance in the input.
			idx := 0
			for _, s := range sources {
				if idx < len(citations) && citations[idx].URL == s.URI {
					idx++
				}
			}
			return idx == len(citations)
		},
		genSources, gen.IntRange(1, 10),
	))

	properties.Property("idempotent under repetition", prop.ForAll(
		func(sources []llm.Source) bool {
			doubled := append(append([]llm.Source{}, sources...), sources...)
			a := DedupCitations(sources, 10)
			b := DedupCitations(doubled, 10)
			if len(a) != len(b) {
				return false
			}
			for i := range a {
				if a[i] != b[i] {
					return false
				}
			}
			return true
		},
		genSources,
	))

	properties.TestingRun(t)
}
