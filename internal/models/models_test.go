package models

import (
	"testing"
)

func TestParseSignal(t *testing.T) {
	tests := []struct {
		in   string
		want Signal
	}{
		{"BUY", SignalBuy},
		{"SELL", SignalSell},
		{"HOLD", SignalHold},
		{"UNKNOWN", SignalUnknown},
		{"buy", SignalUnknown},
		{"Strong Buy", SignalUnknown},
		{"", SignalUnknown},
	}
	for _, tt := range tests {
		if got := ParseSignal(tt.in); got != tt.want {
			t.Errorf("ParseSignal(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseImpactAndCategory(t *testing.T) {
	if ParseImpact("HIGH") != ImpactHigh || ParseImpact("nonsense") != ImpactMedium {
		t.Error("impact parsing wrong")
	}
	if ParseCategory("POLITICAL") != CategoryPolitical || ParseCategory("") != CategoryEconomic {
		t.Error("category parsing wrong")
	}
}

func TestParseSession(t *testing.T) {
	tests := []struct {
		in   string
		want EarningsSession
	}{
		{"Pre-Market", SessionPreMarket},
		{"PRE_MARKET", SessionPreMarket},
		{"After-Close", SessionAfterClose},
		{"During-Day", SessionDuringDay},
		{"Unknown", SessionUnknown},
		{"", SessionUnknown},
	}
	for _, tt := range tests {
		if got := ParseSession(tt.in); got != tt.want {
			t.Errorf("ParseSession(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNewEntityPreScanState(t *testing.T) {
	e := NewEntity("tech", "Technology", KindSector)
	if e.Signal != SignalUnknown || e.Score != NeutralScore || e.Status != StatusIdle {
		t.Errorf("unexpected pre-scan state: %+v", e)
	}
	if e.Summary != InitialSummary {
		t.Errorf("summary = %q", e.Summary)
	}
}

func TestCloneIsDeep(t *testing.T) {
	e := NewEntity("tech", "Technology", KindSector)
	e.Catalysts = Catalysts{Positive: []string{"p"}, Negative: []string{"n"}}
	e.TopPicks = TopPicks{Buy: []StockRecommendation{{Symbol: "NVDA"}}}
	e.Citations = []Citation{{Title: "t", URL: "u"}}

	c := e.Clone()
	c.Catalysts.Positive[0] = "changed"
	c.TopPicks.Buy[0].Symbol = "changed"
	c.Citations[0].Title = "changed"

	if e.Catalysts.Positive[0] != "p" || e.TopPicks.Buy[0].Symbol != "NVDA" || e.Citations[0].Title != "t" {
		t.Error("Clone shares backing arrays with the original")
	}
}

func TestMatchStocks(t *testing.T) {
	matches := MatchStocks("apple")
	if len(matches) != 1 || matches[0].Symbol != "AAPL" {
		t.Errorf("MatchStocks(apple) = %+v", matches)
	}

	// Substring on symbol, catalog order, capped at eight.
	matches = MatchStocks("a")
	if len(matches) != maxStockMatches {
		t.Errorf("broad query returned %d, want cap %d", len(matches), maxStockMatches)
	}

	if MatchStocks("   ") != nil {
		t.Error("blank query must return nil")
	}
	if len(MatchStocks("zzzz")) != 0 {
		t.Error("no-match query must return empty")
	}
}

func TestResolveStock(t *testing.T) {
	def, ok := ResolveStock("aapl")
	if !ok || def.Name != "Apple Inc." {
		t.Errorf("ResolveStock(aapl) = %+v, %v", def, ok)
	}
	if _, ok := ResolveStock("Apple"); ok {
		t.Error("name fragments must not resolve, only exact symbols")
	}
}

func TestDefaultSectorsFixedSet(t *testing.T) {
	if len(DefaultSectors) != 6 {
		t.Fatalf("sectors = %d, want 6", len(DefaultSectors))
	}
	wantIDs := []string{"tech", "energy", "finance", "healthcare", "consumer", "crypto"}
	for i, id := range wantIDs {
		if DefaultSectors[i].ID != id {
			t.Errorf("sector %d = %s, want %s", i, DefaultSectors[i].ID, id)
		}
	}
}
