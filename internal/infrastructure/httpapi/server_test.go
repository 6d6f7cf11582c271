package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"truthsignal/internal/domain"
)

type stubPipeline struct {
	verdict domain.TrustVerdict
	gotHTML string
}

func (s *stubPipeline) Analyze(_ context.Context, html string) domain.TrustVerdict {
	s.gotHTML = html
	return s.verdict
}

func newTestServer(verdict domain.TrustVerdict) (*stubPipeline, http.Handler) {
	pipeline := &stubPipeline{verdict: verdict}
	return pipeline, New(pipeline, nil).Router()
}

func TestHealth(t *testing.T) {
	t.Parallel()

	_, handler := newTestServer(domain.TrustVerdict{})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	t.Parallel()

	pipeline, handler := newTestServer(domain.TrustVerdict{
		Score:   domain.ScoreYellow,
		Reasons: []string{"medium affiliate links (2) with no disclosure"},
		Summary: "Trust Score: YELLOW",
	})

	body := `{"url":"https://example.com/review","html_content":"<a href='https://amzn.to/x'>x</a>"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		TrustScore        string   `json:"trust_score"`
		Reasons           []string `json:"reasons"`
		ScanID            string   `json:"scan_id"`
		AnalysisTimestamp string   `json:"analysis_timestamp"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.TrustScore != "yellow" {
		t.Fatalf("unexpected trust_score %s", resp.TrustScore)
	}
	if len(resp.Reasons) != 1 {
		t.Fatalf("unexpected reasons %v", resp.Reasons)
	}
	if resp.ScanID == "" || resp.AnalysisTimestamp == "" {
		t.Fatal("expected scan id and timestamp")
	}
	if !strings.Contains(pipeline.gotHTML, "amzn.to") {
		t.Fatalf("pipeline did not receive the html content: %q", pipeline.gotHTML)
	}
}

func TestAnalyzeRejectsMissingFields(t *testing.T) {
	t.Parallel()

	_, handler := newTestServer(domain.TrustVerdict{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"url":"https://example.com"}`))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing html_content, got %d", rec.Code)
	}
}

func TestAnalyzeRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	_, handler := newTestServer(domain.TrustVerdict{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`not json`))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid JSON, got %d", rec.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	t.Parallel()

	_, handler := newTestServer(domain.TrustVerdict{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "chrome-extension://abcdef")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected permissive CORS, got %q", got)
	}
}
