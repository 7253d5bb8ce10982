// Package llm provides clients for the hosted completion services that
// back the sentiment engine.
package llm

import "context"

// CompletionRequest is one natural-language instruction sent to a
// completion service.
type CompletionRequest struct {
	Prompt string
	// EnableSearch asks the provider to ground the completion in live web
	// search. Providers that support native grounding (Gemini) cannot
	// combine it with a structured-output schema, so callers prompt for a
	// fenced JSON block instead.
	EnableSearch bool
	// SearchQuery is the query used by providers that emulate grounding
	// through an external search API. Ignored by natively-grounded providers.
	SearchQuery string
}

// Source is a grounding citation the provider claims to have used.
type Source struct {
	URI   string
	Title string
}

// Completion is the raw outcome of a completion call: free text, possibly
// containing a fenced JSON block, plus optional grounding citations.
type Completion struct {
	Text    string
	Sources []Source
}

// Client captures the ability to perform a (optionally search-grounded)
// completion. Implementations must treat the model as an unreliable
// text-generation oracle: they report transport failures as errors and
// leave all content interpretation to the caller.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	Provider() string
}
