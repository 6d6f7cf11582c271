package domain

// DisclosureLocation marks where in the content a disclosure statement sits.
type DisclosureLocation string

const (
	LocationBeginning DisclosureLocation = "beginning"
	LocationMiddle    DisclosureLocation = "middle"
	LocationEnd       DisclosureLocation = "end"
	LocationNowhere   DisclosureLocation = "nowhere"
)

// ContentIntent classifies the overall tone of the analyzed content.
type ContentIntent string

const (
	IntentInformative ContentIntent = "informative"
	IntentPersuasive  ContentIntent = "persuasive"
	IntentMixed       ContentIntent = "mixed"
)

// TrustScore is the coarse three-level verdict.
type TrustScore string

const (
	ScoreRed    TrustScore = "red"
	ScoreYellow TrustScore = "yellow"
	ScoreGreen  TrustScore = "green"
)

// AffiliateMatch records a single affiliate URL occurrence attributed to a network.
type AffiliateMatch struct {
	NetworkID   string
	DisplayName string
	MatchedURL  string
}

// ScanResult summarizes affiliate link detection over one document.
// Found is true exactly when TotalMatches is positive; UniqueURLs counts
// distinct matched URLs; SampleURLs holds at most five unique URLs in
// first-seen order, each truncated at 100 characters.
type ScanResult struct {
	Found        bool
	Networks     []string
	TotalMatches int
	UniqueURLs   int
	SampleURLs   []string
	AllMatches   []AffiliateMatch

	// Diagnostic carries an optional note when the scan degraded; an empty
	// result with a diagnostic is observably identical to a clean empty result.
	Diagnostic string
}

// DisclosureAssessment is the structured output of the remote disclosure analysis.
// Found==false implies Location==nowhere by the remote schema; it is not
// recomputed locally.
type DisclosureAssessment struct {
	Found        bool
	Location     DisclosureLocation
	Intent       ContentIntent
	Confidence   float64
	RawReasoning string
	ProviderUsed string
}

// TrustVerdict is the final output of the pipeline. Reasons is never empty.
type TrustVerdict struct {
	Score   TrustScore
	Reasons []string
	Summary string
}
