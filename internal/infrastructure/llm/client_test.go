package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"truthsignal/internal/domain"
)

const validAssessmentJSON = `{
	"disclosure_found": true,
	"disclosure_location": "beginning",
	"content_intent": "informative",
	"confidence_score": 0.95,
	"reasoning": "Clear disclosure at the start."
}`

func envelope(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

func completionServer(t *testing.T, hits *atomic.Int32, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); !strings.HasPrefix(got, "Bearer ") {
			t.Errorf("missing bearer auth, got %q", got)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAnalyzeNoProviderConfigured(t *testing.T) {
	t.Parallel()

	client := NewClient([]Provider{
		{ID: "deepseek", BaseURL: "https://api.deepseek.com/v1", Model: "deepseek-chat"},
	}, nil)

	_, err := client.Analyze(context.Background(), "some text", "")
	if !errors.Is(err, ErrNoProviderConfigured) {
		t.Fatalf("expected ErrNoProviderConfigured, got %v", err)
	}
}

func TestAnalyzeSuccess(t *testing.T) {
	t.Parallel()

	server := completionServer(t, nil, http.StatusOK, envelope(validAssessmentJSON))
	client := NewClient([]Provider{
		{ID: "deepseek", BaseURL: server.URL, Model: "deepseek-chat", APIKey: "k1"},
	}, nil)

	got, err := client.Analyze(context.Background(), "some text", "")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if !got.Found || got.Location != domain.LocationBeginning {
		t.Fatalf("unexpected assessment: %+v", got)
	}
	if got.Intent != domain.IntentInformative || got.Confidence != 0.95 {
		t.Fatalf("unexpected assessment: %+v", got)
	}
	if got.ProviderUsed != "deepseek" {
		t.Fatalf("expected providerUsed=deepseek, got %s", got.ProviderUsed)
	}
}

func TestAnalyzeFallbackToNextProvider(t *testing.T) {
	t.Parallel()

	var firstHits, secondHits atomic.Int32
	failing := completionServer(t, &firstHits, http.StatusInternalServerError, "boom")
	working := completionServer(t, &secondHits, http.StatusOK, envelope(validAssessmentJSON))

	client := NewClient([]Provider{
		{ID: "deepseek", BaseURL: failing.URL, Model: "deepseek-chat", APIKey: "k1"},
		{ID: "groq", BaseURL: working.URL, Model: "llama-3.1-8b-instant", APIKey: "k2"},
	}, nil)

	got, err := client.Analyze(context.Background(), "some text", "")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if firstHits.Load() != 1 {
		t.Fatalf("failed provider must be attempted exactly once, got %d", firstHits.Load())
	}
	if secondHits.Load() != 1 {
		t.Fatalf("fallback provider must be attempted once, got %d", secondHits.Load())
	}
	if got.ProviderUsed != "multiple" {
		t.Fatalf("expected providerUsed=multiple with two configured providers, got %s", got.ProviderUsed)
	}
}

func TestAnalyzeAllProvidersFailed(t *testing.T) {
	t.Parallel()

	failing := completionServer(t, nil, http.StatusBadGateway, "down")
	client := NewClient([]Provider{
		{ID: "deepseek", BaseURL: failing.URL, Model: "deepseek-chat", APIKey: "k1"},
		{ID: "groq", BaseURL: failing.URL, Model: "llama-3.1-8b-instant", APIKey: "k2"},
	}, nil)

	_, err := client.Analyze(context.Background(), "some text", "")

	var allFailed *AllProvidersFailedError
	if !errors.As(err, &allFailed) {
		t.Fatalf("expected AllProvidersFailedError, got %v", err)
	}
	if allFailed.Last == nil {
		t.Fatal("expected last error to be carried")
	}
}

func TestAnalyzeSkipsUncredentialedProvider(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	working := completionServer(t, &hits, http.StatusOK, envelope(validAssessmentJSON))

	client := NewClient([]Provider{
		{ID: "deepseek", BaseURL: "http://127.0.0.1:1", Model: "deepseek-chat"}, // no key, never attempted
		{ID: "groq", BaseURL: working.URL, Model: "llama-3.1-8b-instant", APIKey: "k2"},
	}, nil)

	got, err := client.Analyze(context.Background(), "some text", "")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected single attempt on credentialed provider, got %d", hits.Load())
	}
	// Only one credentialed provider, so the label is its id.
	if got.ProviderUsed != "groq" {
		t.Fatalf("expected providerUsed=groq, got %s", got.ProviderUsed)
	}
}

func TestAnalyzePreferredProviderFirst(t *testing.T) {
	t.Parallel()

	var firstHits, secondHits atomic.Int32
	deepseek := completionServer(t, &firstHits, http.StatusOK, envelope(validAssessmentJSON))
	groq := completionServer(t, &secondHits, http.StatusOK, envelope(validAssessmentJSON))

	client := NewClient([]Provider{
		{ID: "deepseek", BaseURL: deepseek.URL, Model: "deepseek-chat", APIKey: "k1"},
		{ID: "groq", BaseURL: groq.URL, Model: "llama-3.1-8b-instant", APIKey: "k2"},
	}, nil)

	if _, err := client.Analyze(context.Background(), "some text", "groq"); err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if secondHits.Load() != 1 || firstHits.Load() != 0 {
		t.Fatalf("expected preferred provider attempted first, got deepseek=%d groq=%d",
			firstHits.Load(), secondHits.Load())
	}
}

func TestAnalyzeValidationFailsClosed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
	}{
		{"confidence out of range", `{"disclosure_found":true,"disclosure_location":"beginning","content_intent":"informative","confidence_score":1.5,"reasoning":"x"}`},
		{"unknown location", `{"disclosure_found":false,"disclosure_location":"unknown","content_intent":"informative","confidence_score":0.8,"reasoning":"x"}`},
		{"unknown intent", `{"disclosure_found":false,"disclosure_location":"nowhere","content_intent":"salesy","confidence_score":0.8,"reasoning":"x"}`},
		{"missing field", `{"disclosure_found":true,"disclosure_location":"beginning","content_intent":"informative","confidence_score":0.8}`},
		{"non-boolean found", `{"disclosure_found":"true","disclosure_location":"beginning","content_intent":"informative","confidence_score":0.8,"reasoning":"x"}`},
		{"not JSON", `the model rambled instead of emitting JSON`},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var fallbackHits atomic.Int32
			bad := completionServer(t, nil, http.StatusOK, envelope(tc.content))
			fallback := completionServer(t, &fallbackHits, http.StatusOK, envelope(validAssessmentJSON))

			client := NewClient([]Provider{
				{ID: "deepseek", BaseURL: bad.URL, Model: "deepseek-chat", APIKey: "k1"},
				{ID: "groq", BaseURL: fallback.URL, Model: "llama-3.1-8b-instant", APIKey: "k2"},
			}, nil)

			_, err := client.Analyze(context.Background(), "some text", "")
			if err == nil {
				t.Fatal("expected validation error")
			}
			// Validation failure after a successful HTTP call must not
			// trigger the next provider.
			if fallbackHits.Load() != 0 {
				t.Fatalf("validation failure must not fall back, fallback hit %d times", fallbackHits.Load())
			}
		})
	}
}

func TestAnalyzeAcceptsGenuineFalse(t *testing.T) {
	t.Parallel()

	content := `{"disclosure_found":false,"disclosure_location":"nowhere","content_intent":"informative","confidence_score":0.0,"reasoning":"nothing found"}`
	server := completionServer(t, nil, http.StatusOK, envelope(content))
	client := NewClient([]Provider{
		{ID: "deepseek", BaseURL: server.URL, Model: "deepseek-chat", APIKey: "k1"},
	}, nil)

	got, err := client.Analyze(context.Background(), "some text", "")
	if err != nil {
		t.Fatalf("false/0.0 must pass the required checks: %v", err)
	}
	if got.Found || got.Confidence != 0 || got.Location != domain.LocationNowhere {
		t.Fatalf("unexpected assessment: %+v", got)
	}
}

func TestBuildPromptTruncation(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("a", 9000)
	prompt := buildPrompt(text)

	if strings.Contains(prompt, strings.Repeat("a", 8001)) {
		t.Fatal("expected text truncated to 8000 characters")
	}
	if !strings.Contains(prompt, strings.Repeat("a", 8000)) {
		t.Fatal("expected the first 8000 characters to survive")
	}
	if !strings.Contains(prompt, "TEXT TO ANALYZE:") {
		t.Fatal("expected instruction template around the text")
	}
}

func TestCompleteRequestShape(t *testing.T) {
	t.Parallel()

	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(envelope(validAssessmentJSON)))
	}))
	t.Cleanup(server.Close)

	client := NewClient([]Provider{
		{ID: "deepseek", BaseURL: server.URL, Model: "deepseek-chat", APIKey: "k1"},
	}, nil)

	if _, err := client.Analyze(context.Background(), "review text", ""); err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if captured.Model != "deepseek-chat" {
		t.Fatalf("unexpected model %s", captured.Model)
	}
	if captured.Temperature != 0.1 || captured.MaxTokens != 1000 {
		t.Fatalf("unexpected sampling params: %+v", captured)
	}
	if captured.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format, got %q", captured.ResponseFormat.Type)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Fatalf("expected system+user messages, got %+v", captured.Messages)
	}
}
