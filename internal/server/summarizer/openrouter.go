package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Provider names as they appear in placeholder summaries.
const (
	ProviderOpenRouter = "OpenRouter"
	ProviderGemini     = "Gemini"
)

const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel   = "stepfun/step-3.5-flash:free"
	openRouterMaxTokens      = 500
	openRouterReferer        = "http://localhost:3000"
	openRouterTitle          = "AI Note Summarizer"
)

type OpenRouterConfig struct {
	APIKey string
	// BaseURL of an OpenAI compatible API, DefaultOpenRouterBaseURL when empty.
	BaseURL string
	// Model defaults to DefaultOpenRouterModel.
	Model string
	// HTTPClient defaults to http.DefaultClient, so there is no timeout of
	// our own.
	HTTPClient *http.Client
}

// OpenRouter calls the /chat/completions endpoint of OpenRouter or any
// OpenAI compatible API.
type OpenRouter struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type chatCompletionRequest struct {
	Model     string              `json:"model"`
	Messages  []chatCompletionMsg `json:"messages"`
	MaxTokens int                 `json:"max_tokens,omitempty"`
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

func NewOpenRouter(cfg OpenRouterConfig) *OpenRouter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenRouterBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenRouterModel
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &OpenRouter{
		client:  cfg.HTTPClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		model:   cfg.Model,
	}
}

func (o *OpenRouter) Generate(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model: o.model,
		Messages: []chatCompletionMsg{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens: openRouterMaxTokens,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal chat request")
	}

	url := o.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create chat request", goerr.V("url", url))
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("HTTP-Referer", openRouterReferer)
	req.Header.Set("X-Title", openRouterTitle)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "chat request failed", goerr.V("url", url))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read chat response")
	}

	var out chatCompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", goerr.Wrap(err, "failed to decode chat response",
			goerr.V("status", resp.StatusCode), goerr.V("body", truncate(string(raw), 512)))
	}

	if out.Error != nil {
		return "", goerr.New("chat API error",
			goerr.V("status", resp.StatusCode), goerr.V("message", out.Error.Message), goerr.V("code", out.Error.Code))
	}
	if resp.StatusCode != http.StatusOK {
		return "", goerr.New("unexpected chat API status", goerr.V("status", resp.StatusCode))
	}
	if len(out.Choices) == 0 {
		return "", goerr.New("no choices in chat response", goerr.V("model", o.model))
	}

	return out.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
