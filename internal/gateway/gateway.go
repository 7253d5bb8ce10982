// Package gateway issues analysis requests to the completion service and
// composes the normalizer and citation deduplicator per response. All
// operations fail closed: transport and parse failures are absorbed here
// and converted into safe defaults, so the scheduler never needs per-call
// error handling.
package gateway

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	apperrors "marketsense/internal/errors"
	"marketsense/internal/llm"
	"marketsense/internal/logging"
	"marketsense/internal/models"
	"marketsense/internal/normalize"
	"marketsense/pkg/utils"
)

// Caps bounds the citation lists produced by each operation.
type Caps struct {
	Entity int
	News   int
}

// DefaultCaps returns the citation caps observed by the rendering layer.
func DefaultCaps() Caps {
	return Caps{Entity: 5, News: 10}
}

// Gateway mediates between the scheduler and the completion service.
type Gateway struct {
	client  llm.Client
	caps    Caps
	retry   utils.RetryConfig
	timeout time.Duration
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates a gateway over the given completion client. timeout bounds
// each individual completion call; zero means no bound.
func New(client llm.Client, caps Caps, timeout time.Duration, logger zerolog.Logger) *Gateway {
	retry := utils.DefaultRetryConfig()
	retry.ShouldRetry = apperrors.IsTransient
	return &Gateway{
		client:  client,
		caps:    caps,
		retry:   retry,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// complete performs one search-grounded completion with bounded retry.
func (g *Gateway) complete(ctx context.Context, operation string, req llm.CompletionRequest) (*llm.Completion, error) {
	start := g.now()
	completion, err := utils.RetryWithResult(ctx, g.retry, func() (*llm.Completion, error) {
		callCtx := ctx
		if g.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}
		return g.client.Complete(callCtx, req)
	})
	logging.LogAPICall(g.logger, g.client.Provider(), operation, g.now().Sub(start), err)
	return completion, err
}

// unavailableSummary is the neutral patch summary used when the completion
// service cannot be reached at all.
const unavailableSummary = "Sentiment service unavailable. Try again."

// AnalyzeEntity fetches a sentiment analysis for one sector or stock.
// On transport failure it returns a neutral patch with OK=false; the store
// records an error state from it without touching stale content. A
// degenerate but received response still commits (OK=true) with the
// normalizer's fallback record, so the failure is visible to the user.
func (g *Gateway) AnalyzeEntity(ctx context.Context, name string, kind models.EntityKind) models.AnalysisResult {
	completion, err := g.complete(ctx, "analyze_entity", llm.CompletionRequest{
		Prompt:       sentimentPrompt(name, kind),
		EnableSearch: true,
		SearchQuery:  entitySearchQuery(name, kind),
	})
	if err != nil {
		g.logger.Warn().Err(err).Str("entity", name).Msg("Entity analysis failed")
		return models.AnalysisResult{
			OK:      false,
			Signal:  models.SignalUnknown,
			Score:   models.NeutralScore,
			Summary: unavailableSummary,
		}
	}

	record := normalize.Sentiment(completion.Text)
	if !record.Parsed {
		g.logger.Warn().Str("entity", name).Msg("Model did not return valid JSON, using fallback")
	}

	return models.AnalysisResult{
		OK:        true,
		Signal:    record.Signal,
		Score:     record.Score,
		Summary:   record.Summary,
		Catalysts: record.Catalysts,
		TopPicks:  record.TopPicks,
		Citations: normalize.DedupCitations(completion.Sources, g.caps.Entity),
	}
}

// newsUnavailableMood is returned when the news fetch fails at transport level.
const newsUnavailableMood = "Unable to load market stream."

// FetchNews fetches the breaking-news pulse. Transport failure yields an
// empty feed with a fixed unavailability summary and OK=false so the store
// can keep last-known-good items visible (fail-stale).
func (g *Gateway) FetchNews(ctx context.Context) models.NewsResult {
	completion, err := g.complete(ctx, "fetch_news", llm.CompletionRequest{
		Prompt:       newsPrompt(),
		EnableSearch: true,
		SearchQuery:  "breaking financial news stock market today",
	})
	if err != nil {
		g.logger.Warn().Err(err).Msg("News fetch failed")
		return models.NewsResult{
			OK:         false,
			MarketMood: newsUnavailableMood,
			Items:      []models.Citation{},
		}
	}

	record := normalize.NewsPulse(completion.Text)
	return models.NewsResult{
		OK:         true,
		MarketMood: record.MarketMood,
		Items:      normalize.DedupCitations(completion.Sources, g.caps.News),
	}
}

// FetchCalendar fetches the upcoming week's calendar. Both transport and
// parse failures yield empty lists (fail-closed, unlike the news feed).
// Past-event rejection is a prompt-level instruction only.
func (g *Gateway) FetchCalendar(ctx context.Context) models.CalendarResult {
	completion, err := g.complete(ctx, "fetch_calendar", llm.CompletionRequest{
		Prompt:       calendarPrompt(g.now()),
		EnableSearch: true,
		SearchQuery:  "economic calendar earnings schedule this week",
	})
	if err != nil {
		g.logger.Warn().Err(err).Msg("Calendar fetch failed")
		return models.CalendarResult{
			Economic: []models.EconomicEvent{},
			Earnings: []models.EarningsEvent{},
		}
	}

	return normalize.Calendar(completion.Text)
}
