package affiliate

import (
	"fmt"
	"log/slog"
	"strings"

	"truthsignal/internal/domain"
	"truthsignal/internal/ports"
)

const (
	maxSampleURLs   = 5
	maxSampleLength = 100
)

// Detector scans raw markup for affiliate links using the network table.
type Detector struct {
	extractor ports.LinkExtractor
	logger    *slog.Logger
}

var _ ports.AffiliateDetector = (*Detector)(nil)

// NewDetector wires a link extractor; logger may be nil.
func NewDetector(extractor ports.LinkExtractor, log *slog.Logger) *Detector {
	return &Detector{extractor: extractor, logger: log}
}

// Detect classifies every candidate URL in html and aggregates the matches.
// It never fails: malformed input or an extraction fault yields the canonical
// empty result, annotated with a diagnostic so callers can tell degradation
// from a genuinely clean document if they care to look.
func (d *Detector) Detect(html string) domain.ScanResult {
	if strings.TrimSpace(html) == "" {
		return emptyResult()
	}

	if d.extractor == nil {
		result := emptyResult()
		result.Diagnostic = "no link extractor configured"
		return result
	}

	candidates, err := d.extractor.ExtractLinks(html)
	if err != nil {
		d.warn("link extraction failed", "error", err)
		result := emptyResult()
		result.Diagnostic = fmt.Sprintf("link extraction failed: %v", err)
		return result
	}

	if len(candidates) == 0 {
		return emptyResult()
	}

	matches := make([]domain.AffiliateMatch, 0)
	for _, candidate := range candidates {
		match, ok := classify(normalizeURL(candidate))
		if !ok {
			continue
		}
		matches = append(matches, match)
	}

	return buildResult(matches)
}

// normalizeURL trims whitespace and decodes ampersand entities. No other
// normalization happens: no percent-decoding, no case-folding of the path.
func normalizeURL(url string) string {
	url = strings.TrimSpace(url)
	url = strings.ReplaceAll(url, "&amp;", "&")
	url = strings.ReplaceAll(url, "&#38;", "&")
	url = strings.ReplaceAll(url, "&#x26;", "&")
	return url
}

func buildResult(matches []domain.AffiliateMatch) domain.ScanResult {
	if len(matches) == 0 {
		return emptyResult()
	}

	networks := make([]string, 0)
	seenNetworks := map[string]struct{}{}
	uniqueURLs := make([]string, 0)
	seenURLs := map[string]struct{}{}

	for _, match := range matches {
		if _, ok := seenNetworks[match.NetworkID]; !ok {
			seenNetworks[match.NetworkID] = struct{}{}
			networks = append(networks, match.DisplayName)
		}
		if _, ok := seenURLs[match.MatchedURL]; !ok {
			seenURLs[match.MatchedURL] = struct{}{}
			uniqueURLs = append(uniqueURLs, match.MatchedURL)
		}
	}

	return domain.ScanResult{
		Found:        true,
		Networks:     networks,
		TotalMatches: len(matches),
		UniqueURLs:   len(uniqueURLs),
		SampleURLs:   sampleURLs(uniqueURLs),
		AllMatches:   matches,
	}
}

// sampleURLs keeps the first maxSampleURLs unique URLs in first-seen order,
// truncating long entries for readability.
func sampleURLs(unique []string) []string {
	samples := make([]string, 0, maxSampleURLs)
	for _, url := range unique {
		if len(samples) == maxSampleURLs {
			break
		}
		if len(url) > maxSampleLength {
			url = url[:maxSampleLength] + "..."
		}
		samples = append(samples, url)
	}
	return samples
}

func emptyResult() domain.ScanResult {
	return domain.ScanResult{
		Networks:   []string{},
		SampleURLs: []string{},
		AllMatches: []domain.AffiliateMatch{},
	}
}

func (d *Detector) warn(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}
