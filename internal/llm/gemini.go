package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiBackend calls one Gemini model through the Google GenAI SDK.
type GeminiBackend struct {
	client    *genai.Client
	model     string
	timeout   time.Duration
	maxTokens int
}

func newGeminiClient(ctx context.Context, opts Options) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return client, nil
}

func (g *GeminiBackend) Name() string { return "gemini:" + g.model }

// Generate sends instruction as a single user turn and returns the response text.
func (g *GeminiBackend) Generate(ctx context.Context, instruction string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if g.maxTokens > 0 {
		cfg.MaxOutputTokens = int32(g.maxTokens)
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(instruction), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", g.model, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini %s: %w", g.model, ErrEmptyResponse)
	}
	return text, nil
}
