package ports

import (
	"context"

	"truthsignal/internal/domain"
)

// LinkExtractor pulls candidate URLs out of markup attributes.
type LinkExtractor interface {
	ExtractLinks(html string) ([]string, error)
}

// TextCleaner strips markup down to best-effort readable text.
type TextCleaner interface {
	CleanText(html string) string
}

// AffiliateDetector classifies raw markup for affiliate links.
// Implementations never fail; faults degrade to an empty ScanResult.
type AffiliateDetector interface {
	Detect(html string) domain.ScanResult
}

// DisclosureAnalyzer assesses disclosure and intent via a remote model.
// preferredProvider may be empty to use the configured provider order.
type DisclosureAnalyzer interface {
	Analyze(ctx context.Context, cleanText, preferredProvider string) (domain.DisclosureAssessment, error)
}
