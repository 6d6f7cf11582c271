package usecase

import (
	"context"
	"log/slog"

	"truthsignal/internal/domain"
	"truthsignal/internal/ports"
	"truthsignal/internal/scoring"
)

// PipelineDeps wires the analysis stages into the orchestrator.
type PipelineDeps struct {
	Detector          ports.AffiliateDetector
	Cleaner           ports.TextCleaner
	Analyzer          ports.DisclosureAnalyzer
	PreferredProvider string
	Logger            *slog.Logger
}

// Pipeline runs detection, disclosure analysis and aggregation in sequence.
// Stages hold no cross-request state, so concurrent calls are safe.
type Pipeline struct {
	detector  ports.AffiliateDetector
	cleaner   ports.TextCleaner
	analyzer  ports.DisclosureAnalyzer
	preferred string
	logger    *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		detector:  deps.Detector,
		cleaner:   deps.Cleaner,
		analyzer:  deps.Analyzer,
		preferred: deps.PreferredProvider,
		logger:    deps.Logger,
	}
}

// Analyze produces a verdict for raw markup. The caller never sees an
// analyzer error: when disclosure analysis fails, the verdict is computed
// from detection alone, marked as partial, and held at yellow or worse.
func (p *Pipeline) Analyze(ctx context.Context, html string) domain.TrustVerdict {
	scan := p.detector.Detect(html)
	if scan.Diagnostic != "" {
		p.warn("detection degraded", "diagnostic", scan.Diagnostic)
	}

	if p.analyzer == nil {
		return p.partialVerdict(scan)
	}

	cleanText := html
	if p.cleaner != nil {
		cleanText = p.cleaner.CleanText(html)
	}

	disclosure, err := p.analyzer.Analyze(ctx, cleanText, p.preferred)
	if err != nil {
		p.warn("disclosure analysis failed", "error", err)
		return p.partialVerdict(scan)
	}

	return scoring.Aggregate(scan, disclosure)
}

// partialVerdict aggregates with a zero assessment and forces the result to
// at least yellow, unless the affiliate counts alone already made it red.
func (p *Pipeline) partialVerdict(scan domain.ScanResult) domain.TrustVerdict {
	verdict := scoring.Aggregate(scan, domain.DisclosureAssessment{
		Location: domain.LocationNowhere,
		Intent:   domain.IntentInformative,
	})

	verdict.Reasons = append(verdict.Reasons, "disclosure analysis unavailable, verdict based on affiliate detection only")
	if verdict.Score == domain.ScoreGreen {
		verdict.Score = domain.ScoreYellow
	}
	return verdict
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
