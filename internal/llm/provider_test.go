package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewBackendsValidatesOptions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := NewBackends(ctx, Options{Provider: ProviderOpenAI, Variants: []string{"m"}})
	require.ErrorIs(t, err, ErrNoAPIKey)

	_, err = NewBackends(ctx, Options{Provider: ProviderOpenAI, APIKey: "k", Variants: []string{" ", ""}})
	require.ErrorIs(t, err, ErrNoVariants)

	_, err = NewBackends(ctx, Options{Provider: "claude", APIKey: "k", Variants: []string{"m"}})
	require.Error(t, err)
}

func TestNewBackendsPreservesVariantOrder(t *testing.T) {
	t.Parallel()

	backends, err := NewBackends(context.Background(), Options{
		Provider: ProviderOpenAI,
		APIKey:   "k",
		Variants: []string{"gpt-a", "gpt-b", "gpt-c"},
	})
	require.NoError(t, err)
	names := make([]string, 0, len(backends))
	for _, b := range backends {
		names = append(names, b.Name())
	}
	require.Equal(t, []string{"openai:gpt-a", "openai:gpt-b", "openai:gpt-c"}, names)
}

func TestOpenAIBackendGenerate(t *testing.T) {
	t.Parallel()

	var gotModel, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  [{\"title\":\"A\"}]  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	backends, err := NewBackends(context.Background(), Options{
		Provider: ProviderOpenAI,
		APIKey:   "k",
		BaseURL:  srv.URL + "/v1",
		Variants: []string{"gpt-test"},
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)

	out, err := backends[0].Generate(context.Background(), "suggest")
	require.NoError(t, err)
	require.Equal(t, `[{"title":"A"}]`, out)
	require.Equal(t, "gpt-test", gotModel)
	require.True(t, strings.HasSuffix(gotPath, "/chat/completions"))
}

func TestOpenAIBackendEmptyChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	backends, err := NewBackends(context.Background(), Options{
		Provider: ProviderOpenAI, APIKey: "k", BaseURL: srv.URL + "/v1", Variants: []string{"m"},
	})
	require.NoError(t, err)
	_, err = backends[0].Generate(context.Background(), "x")
	require.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestGeminiBackendGenerate(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"boardTitle\":\"X\"}"}]}}]}`))
	}))
	defer srv.Close()

	backends, err := NewBackends(context.Background(), Options{
		Provider: ProviderGemini,
		APIKey:   "k",
		BaseURL:  srv.URL,
		Variants: []string{"gemini-test"},
	})
	require.NoError(t, err)
	require.Equal(t, "gemini:gemini-test", backends[0].Name())

	out, err := backends[0].Generate(context.Background(), "make a board")
	require.NoError(t, err)
	require.Equal(t, `{"boardTitle":"X"}`, out)
	require.Contains(t, gotPath, "gemini-test:generateContent")
}
