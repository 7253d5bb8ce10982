package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	apperrors "marketsense/internal/errors"
)

// searchContextResults is the number of search hits stuffed into the
// prompt when emulating grounding.
const searchContextResults = 8

// OpenAIClient implements Client using the OpenAI chat completion API.
// OpenAI has no native search grounding here, so search augmentation is
// emulated: a WebSearchClient fetches live results, their content is
// prepended to the prompt, and the hits are surfaced as the completion's
// grounding citations.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	webSearch WebSearchClient
}

// NewOpenAIClient creates a new OpenAI completion client. webSearch may be
// nil, in which case search-augmented requests run without grounding and
// yield no citations.
func NewOpenAIClient(apiKey, model string, webSearch WebSearchClient) *OpenAIClient {
	return &OpenAIClient{
		client:    openai.NewClient(apiKey),
		model:     model,
		webSearch: webSearch,
	}
}

// Provider implements Client.
func (c *OpenAIClient) Provider() string { return "openai" }

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	prompt := req.Prompt
	var sources []Source

	if req.EnableSearch && c.webSearch != nil && req.SearchQuery != "" {
		results, err := c.webSearch.Search(ctx, req.SearchQuery, searchContextResults)
		if err == nil && len(results) > 0 {
			prompt = buildSearchContext(results) + "\n\n" + req.Prompt
			for _, r := range results {
				sources = append(sources, Source{URI: r.URL, Title: r.Title})
			}
		}
		// Search failure is not fatal: the completion proceeds ungrounded.
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, apperrors.NewTransportError("openai", "chat_completion", err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.NewTransportError("openai", "chat_completion",
			fmt.Errorf("no choices in response"))
	}

	return &Completion{
		Text:    resp.Choices[0].Message.Content,
		Sources: sources,
	}, nil
}

// buildSearchContext renders search hits into a context block the model
// can cite from.
func buildSearchContext(results []SearchResult) string {
	var sb strings.Builder
	sb.WriteString("Live web search results:\n")
	for i, r := range results {
		sb.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, r.Title, r.URL))
		if r.Content != "" {
			sb.WriteString("   ")
			sb.WriteString(truncate(r.Content, 400))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
