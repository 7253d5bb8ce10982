package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "marketsense/internal/errors"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient is a thin wrapper around the Gemini generateContent REST API.
// Search grounding uses the native google_search tool; grounding citations
// are read from the response groundingMetadata.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiClient constructs a client with sane defaults.
func NewGeminiClient(apiKey, model string, opts ...func(*GeminiClient)) *GeminiClient {
	c := &GeminiClient{
		baseURL: defaultGeminiBaseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithGeminiHTTPClient overrides the internal HTTP client.
func WithGeminiHTTPClient(hc *http.Client) func(*GeminiClient) {
	return func(c *GeminiClient) {
		c.httpClient = hc
	}
}

// WithGeminiBaseURL overrides the default API base URL (useful for tests).
func WithGeminiBaseURL(url string) func(*GeminiClient) {
	return func(c *GeminiClient) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// Provider implements Client.
func (c *GeminiClient) Provider() string { return "gemini" }

// Request/response wire types, limited to the fields we consume.

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	Tools    []geminiTool    `json:"tools,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		GroundingMetadata struct {
			GroundingChunks []struct {
				Web struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

// Complete implements Client.
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if c.apiKey == "" {
		return nil, apperrors.ErrMissingCredential
	}

	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: req.Prompt}}}},
	}
	if req.EnableSearch {
		// Provider limitation: response schemas cannot be combined with the
		// search tool, so the prompt must ask for a fenced JSON block.
		payload.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewTransportError("gemini", "generateContent", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperrors.NewTransportError("gemini", "generateContent",
			fmt.Errorf("api error %d: %s", resp.StatusCode, string(data)))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.NewTransportError("gemini", "generateContent", err)
	}

	var payload2 geminiResponse
	if err := json.Unmarshal(raw, &payload2); err != nil {
		return nil, apperrors.NewMalformedResponseError("generateContent", headOf(raw), err)
	}

	if len(payload2.Candidates) == 0 {
		return nil, apperrors.NewMalformedResponseError("generateContent", headOf(raw),
			fmt.Errorf("no candidates in response"))
	}

	cand := payload2.Candidates[0]

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		sb.WriteString(part.Text)
	}

	out := &Completion{Text: sb.String()}
	for _, chunk := range cand.GroundingMetadata.GroundingChunks {
		if chunk.Web.URI == "" && chunk.Web.Title == "" {
			continue
		}
		out.Sources = append(out.Sources, Source{URI: chunk.Web.URI, Title: chunk.Web.Title})
	}

	return out, nil
}

// headOf bounds a raw payload for error diagnostics.
func headOf(raw []byte) string {
	const max = 200
	s := strings.TrimSpace(string(raw))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
