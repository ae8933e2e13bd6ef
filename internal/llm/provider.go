package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Backend is one model variant of a generative text service. Variants of the
// same provider are interchangeable; callers try them in order.
type Backend interface {
	Name() string
	Generate(ctx context.Context, instruction string) (string, error)
}

var (
	ErrNoAPIKey      = errors.New("llm: api key not configured")
	ErrEmptyResponse = errors.New("llm: empty response")
	ErrNoVariants    = errors.New("llm: no model variants configured")
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

const defaultTimeout = 60 * time.Second

// Options configures the backends built by NewBackends.
type Options struct {
	Provider        string
	APIKey          string
	BaseURL         string
	Variants        []string
	Timeout         time.Duration
	MaxOutputTokens int
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return defaultTimeout
	}
	return o.Timeout
}

// NewBackends returns one Backend per configured variant, in configured order.
// All variants share a single client.
func NewBackends(ctx context.Context, opts Options) ([]Backend, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	var variants []string
	for _, v := range opts.Variants {
		if v = strings.TrimSpace(v); v != "" {
			variants = append(variants, v)
		}
	}
	if len(variants) == 0 {
		return nil, ErrNoVariants
	}

	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case ProviderOpenAI:
		client := newOpenAIClient(opts)
		out := make([]Backend, 0, len(variants))
		for _, model := range variants {
			out = append(out, &OpenAIBackend{client: client, model: model, timeout: opts.timeout(), maxTokens: opts.MaxOutputTokens})
		}
		return out, nil
	case ProviderGemini, "":
		client, err := newGeminiClient(ctx, opts)
		if err != nil {
			return nil, err
		}
		out := make([]Backend, 0, len(variants))
		for _, model := range variants {
			out = append(out, &GeminiBackend{client: client, model: model, timeout: opts.timeout(), maxTokens: opts.MaxOutputTokens})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", opts.Provider)
	}
}
