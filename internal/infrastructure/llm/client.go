package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"truthsignal/internal/domain"
	"truthsignal/internal/ports"
)

// ErrNoProviderConfigured is returned when no provider in the table carries
// a credential. Fatal configuration error, not retryable.
var ErrNoProviderConfigured = errors.New("no disclosure provider configured: set at least one provider API key")

// AllProvidersFailedError means every credentialed provider was attempted
// and failed. Transient; carries the last attempt's error.
type AllProvidersFailedError struct {
	Last error
}

func (e *AllProvidersFailedError) Error() string {
	return fmt.Sprintf("all providers failed, last error: %v", e.Last)
}

func (e *AllProvidersFailedError) Unwrap() error { return e.Last }

const requestTimeout = 30 * time.Second

// Client implements ports.DisclosureAnalyzer over an ordered provider table
// with strict in-order fallback: a failed attempt is abandoned for the next
// candidate, never retried.
type Client struct {
	providers  []Provider
	httpClient *http.Client
	validate   *validator.Validate
	logger     *slog.Logger
}

var _ ports.DisclosureAnalyzer = (*Client)(nil)

// NewClient builds a client over the configured provider table.
func NewClient(providers []Provider, log *slog.Logger) *Client {
	return &Client{
		providers:  providers,
		httpClient: &http.Client{Timeout: requestTimeout},
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     log,
	}
}

// Analyze sends cleanText to the first answering provider and returns the
// validated assessment. A response that parses but violates the schema is
// raised directly; it does not trigger trying the next provider.
func (c *Client) Analyze(ctx context.Context, cleanText, preferredProvider string) (domain.DisclosureAssessment, error) {
	candidates := c.candidates(preferredProvider)
	if len(candidates) == 0 {
		return domain.DisclosureAssessment{}, ErrNoProviderConfigured
	}

	prompt := buildPrompt(cleanText)

	var (
		content  string
		answered bool
		lastErr  error
	)
	for _, provider := range candidates {
		c.debug("trying provider", "provider", provider.ID)
		body, err := c.complete(ctx, provider, prompt)
		if err != nil {
			c.warn("provider failed", "provider", provider.ID, "error", err)
			lastErr = err
			continue
		}
		content = body
		answered = true
		break
	}

	if !answered {
		return domain.DisclosureAssessment{}, &AllProvidersFailedError{Last: lastErr}
	}

	assessment, err := c.parseAssessment(content)
	if err != nil {
		return domain.DisclosureAssessment{}, err
	}

	assessment.ProviderUsed = c.providerLabel()
	return assessment, nil
}

// candidates orders the credentialed providers: the preferred one first when
// it carries a credential, then the rest in table order, no duplicates.
func (c *Client) candidates(preferred string) []Provider {
	ordered := make([]Provider, 0, len(c.providers))

	if preferred != "" {
		for _, p := range c.providers {
			if p.ID == preferred && p.Credentialed() {
				ordered = append(ordered, p)
				break
			}
		}
	}

	for _, p := range c.providers {
		if !p.Credentialed() {
			continue
		}
		if len(ordered) > 0 && ordered[0].ID == p.ID {
			continue
		}
		ordered = append(ordered, p)
	}

	return ordered
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat formatSpec    `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type formatSpec struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, provider Provider, prompt string) (string, error) {
	payload := chatRequest{
		Model: provider.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:      1000,
		Temperature:    0.1,
		ResponseFormat: formatSpec{Type: "json_object"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal completion payload: %w", err)
	}

	url := strings.TrimSuffix(provider.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	for key, value := range headersFor(provider.ID, provider.APIKey) {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("provider %s returned %s: %s", provider.ID, resp.Status, strings.TrimSpace(string(detail)))
	}

	var envelope chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("decode completion envelope: %w", err)
	}
	if len(envelope.Choices) == 0 {
		return "", fmt.Errorf("provider %s returned no choices", provider.ID)
	}

	return envelope.Choices[0].Message.Content, nil
}

// rawAssessment mirrors the JSON object the model is instructed to emit.
// Pointer fields make a missing key distinguishable from a zero value, so a
// genuine false or 0.0 still passes the required check.
type rawAssessment struct {
	DisclosureFound    *bool    `json:"disclosure_found" validate:"required"`
	DisclosureLocation *string  `json:"disclosure_location" validate:"required,oneof=beginning middle end nowhere"`
	ContentIntent      *string  `json:"content_intent" validate:"required,oneof=informative persuasive mixed"`
	ConfidenceScore    *float64 `json:"confidence_score" validate:"required,gte=0,lte=1"`
	Reasoning          *string  `json:"reasoning" validate:"required"`
}

// parseAssessment validates fail-closed: any missing field, wrong type or
// out-of-range value is an error, never replaced by a default.
func (c *Client) parseAssessment(content string) (domain.DisclosureAssessment, error) {
	var raw rawAssessment
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return domain.DisclosureAssessment{}, fmt.Errorf("invalid JSON in model response: %w", err)
	}

	if err := c.validate.Struct(raw); err != nil {
		return domain.DisclosureAssessment{}, fmt.Errorf("model response failed validation: %w", err)
	}

	return domain.DisclosureAssessment{
		Found:        *raw.DisclosureFound,
		Location:     domain.DisclosureLocation(*raw.DisclosureLocation),
		Intent:       domain.ContentIntent(*raw.ContentIntent),
		Confidence:   *raw.ConfidenceScore,
		RawReasoning: *raw.Reasoning,
	}, nil
}

// providerLabel reports "multiple" when more than one provider is
// credentialed, regardless of which one ultimately answered.
func (c *Client) providerLabel() string {
	var label string
	count := 0
	for _, p := range c.providers {
		if p.Credentialed() {
			count++
			if label == "" {
				label = p.ID
			}
		}
	}
	if count > 1 {
		return "multiple"
	}
	return label
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
