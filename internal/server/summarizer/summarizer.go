// Package summarizer turns note content into a short summary through a
// generative AI provider. Summarizers never fail: an unconfigured provider or
// a failed call yields a fixed placeholder string instead.
package summarizer

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/m-mizutani/goerr/v2"
)

// FailedSummary is returned when the provider call fails or answers nothing.
const FailedSummary = "Failed to generate summary at this time."

var placeholderKeys = map[string]struct{}{
	"":                             {},
	"your_openrouter_api_key_here": {},
	"your_gemini_api_key_here":     {},
}

//go:embed prompt/system.md
var systemPrompt string

//go:embed prompt/note.md
var notePromptRaw string

var notePromptTmpl = template.Must(template.New("note").Parse(notePromptRaw))

// UnconfiguredSummary is returned when the provider has no usable API key.
func UnconfiguredSummary(provider string) string {
	return "Summary not available: Please provide a valid " + provider + " API Key."
}

// IsPlaceholderKey reports whether key is empty or one of the sample values
// shipped in example env files.
func IsPlaceholderKey(key string) bool {
	_, ok := placeholderKeys[strings.TrimSpace(key)]
	return ok
}

// Clean strips bold markers, which some models emit despite being told not
// to, and surrounding whitespace.
func Clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "**", ""))
}

// Generator is one round trip to a model: system instruction plus user text
// in, raw answer out.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Result tells a real summary apart from a placeholder.
type Result struct {
	Text      string
	Generated bool
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) string
	SummarizeDetailed(ctx context.Context, text string) Result
}

// Service applies the fallback policy around a Generator. A nil generator
// means the provider is not configured.
type Service struct {
	provider string
	gen      Generator
	logger   logging.Logger
}

func NewService(provider string, gen Generator, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Service{provider: provider, gen: gen, logger: logger.With("module", "summarizer", "provider", provider)}
}

// New picks the adapter named by cfg.AIProvider (OpenRouter unless "gemini").
// It never fails: without a usable key, or when the client cannot be built,
// the returned Service hands out placeholders.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop{}
	}

	if cfg.AIProvider == config.AIProviderGemini {
		if IsPlaceholderKey(cfg.AIAPIKey) {
			logger.Warn(ctx, "gemini API key is not set, summaries will be placeholders")
			return NewService(ProviderGemini, nil, logger)
		}
		g, err := NewGemini(ctx, cfg.AIAPIKey, cfg.AIModel)
		if err != nil {
			logger.Error(ctx, "cannot create gemini client", "error", err)
			return NewService(ProviderGemini, failing{err: err}, logger)
		}
		return NewService(ProviderGemini, g, logger)
	}

	if IsPlaceholderKey(cfg.AIAPIKey) {
		logger.Warn(ctx, "openrouter API key is not set, summaries will be placeholders")
		return NewService(ProviderOpenRouter, nil, logger)
	}
	return NewService(ProviderOpenRouter, NewOpenRouter(OpenRouterConfig{
		APIKey:  cfg.AIAPIKey,
		BaseURL: cfg.AIBaseURL,
		Model:   cfg.AIModel,
	}), logger)
}

func (s *Service) Summarize(ctx context.Context, text string) string {
	return s.SummarizeDetailed(ctx, text).Text
}

// SummarizeDetailed makes a single attempt, without retry.
func (s *Service) SummarizeDetailed(ctx context.Context, text string) Result {
	if s.gen == nil {
		return Result{Text: UnconfiguredSummary(s.provider)}
	}

	var buf bytes.Buffer
	if err := notePromptTmpl.Execute(&buf, struct{ Content string }{Content: text}); err != nil {
		s.logger.Warn(ctx, "cannot render prompt", "error", err)
		return Result{Text: FailedSummary}
	}

	answer, err := s.gen.Generate(ctx, systemPrompt, buf.String())
	if err != nil {
		s.logger.Warn(ctx, "summarization failed", "error", err)
		return Result{Text: FailedSummary}
	}

	summary := Clean(answer)
	if summary == "" {
		s.logger.Warn(ctx, "summarization failed", "error", goerr.New("empty answer"))
		return Result{Text: FailedSummary}
	}
	return Result{Text: summary, Generated: true}
}

type failing struct{ err error }

func (f failing) Generate(context.Context, string, string) (string, error) { return "", f.err }
