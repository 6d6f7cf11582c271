// Package scoring combines affiliate detection counts with the disclosure
// assessment into the final trust verdict. Pure and total: every input maps
// to a verdict with at least one reason.
package scoring

import (
	"fmt"
	"strings"

	"truthsignal/internal/domain"
)

const maxSummaryNetworks = 3

// Aggregate evaluates the verdict tiers in order. Within a tier every
// matching condition contributes a reason; the first tier with any match
// decides the score.
func Aggregate(scan domain.ScanResult, disclosure domain.DisclosureAssessment) domain.TrustVerdict {
	count := scan.TotalMatches

	var red []string
	if count > 3 && !disclosure.Found {
		red = append(red, fmt.Sprintf("high number of affiliate links (%d) with no disclosure", count))
	}
	if disclosure.Intent == domain.IntentPersuasive && !disclosure.Found {
		red = append(red, "persuasive sales content with no disclosure")
	}
	if count > 5 {
		red = append(red, fmt.Sprintf("very high number of affiliate links (%d)", count))
	}
	if len(red) > 0 {
		return verdict(domain.ScoreRed, red, scan, disclosure)
	}

	var yellow []string
	if count >= 1 && count <= 3 && !disclosure.Found {
		yellow = append(yellow, fmt.Sprintf("medium affiliate links (%d) with no disclosure", count))
	}
	if disclosure.Intent == domain.IntentMixed && !disclosure.Found {
		yellow = append(yellow, "mixed content intent with no disclosure")
	}
	if count > 0 && disclosure.Found &&
		(disclosure.Location == domain.LocationMiddle || disclosure.Location == domain.LocationEnd) {
		yellow = append(yellow, fmt.Sprintf("affiliate links with disclosure at %s (not beginning)", disclosure.Location))
	}
	if len(yellow) > 0 {
		return verdict(domain.ScoreYellow, yellow, scan, disclosure)
	}

	var green []string
	if count == 0 {
		green = append(green, "no affiliate links detected")
	}
	if disclosure.Found && disclosure.Location == domain.LocationBeginning {
		green = append(green, fmt.Sprintf("clear disclosure at beginning with %d affiliate links", count))
	}
	if len(green) == 0 {
		green = append(green, "minimal risk factors detected")
	}
	return verdict(domain.ScoreGreen, green, scan, disclosure)
}

func verdict(score domain.TrustScore, reasons []string, scan domain.ScanResult, disclosure domain.DisclosureAssessment) domain.TrustVerdict {
	return domain.TrustVerdict{
		Score:   score,
		Reasons: reasons,
		Summary: buildSummary(score, reasons, scan, disclosure),
	}
}

// buildSummary composes the human-readable analysis: verdict, reasons,
// affiliate counts with a few named networks, disclosure state, intent and
// confidence, plus the raw model reasoning when it stays readable.
func buildSummary(score domain.TrustScore, reasons []string, scan domain.ScanResult, disclosure domain.DisclosureAssessment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Trust Score: %s\n", strings.ToUpper(string(score)))

	b.WriteString("Primary Factors:\n")
	for _, reason := range reasons {
		fmt.Fprintf(&b, "  - %s\n", reason)
	}

	b.WriteString("\nAffiliate Analysis:\n")
	fmt.Fprintf(&b, "  - Affiliate Links: %d\n", scan.TotalMatches)
	if scan.TotalMatches > 0 && len(scan.Networks) > 0 {
		networks := scan.Networks
		suffix := ""
		if len(networks) > maxSummaryNetworks {
			networks = networks[:maxSummaryNetworks]
			suffix = "..."
		}
		fmt.Fprintf(&b, "  - Affiliate Networks: %s%s\n", strings.Join(networks, ", "), suffix)
	}

	b.WriteString("\nDisclosure Analysis:\n")
	fmt.Fprintf(&b, "  - Disclosure Found: %s\n", yesNo(disclosure.Found))
	if disclosure.Found {
		fmt.Fprintf(&b, "  - Disclosure Location: %s\n", disclosure.Location)
	}
	fmt.Fprintf(&b, "  - Content Intent: %s\n", disclosure.Intent)
	fmt.Fprintf(&b, "  - Analysis Confidence: %.1f%%", disclosure.Confidence*100)

	if disclosure.RawReasoning != "" && len(disclosure.RawReasoning) < 500 {
		fmt.Fprintf(&b, "\n\nModel Insights: %s", disclosure.RawReasoning)
	}

	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
