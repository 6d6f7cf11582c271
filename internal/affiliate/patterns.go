package affiliate

import (
	"regexp"

	"truthsignal/internal/domain"
)

// NetworkRule binds a network to its ordered URL patterns. The table below is
// built once at init and never mutated; within a network the first matching
// pattern wins, and across networks the table order decides attribution.
type NetworkRule struct {
	NetworkID   string
	DisplayName string
	Patterns    []*regexp.Regexp
}

const amazonTLDs = `(?:com|co\.uk|ca|de|fr|it|es|co\.jp|cn|com\.au|com\.br|com\.mx)`

var networkRules = []NetworkRule{
	{
		NetworkID:   "amazon",
		DisplayName: "Amazon Associates",
		Patterns: []*regexp.Regexp{
			// tag parameter in the query string
			regexp.MustCompile(`(?i)https?://(?:www\.)?amazon\.` + amazonTLDs + `/[^"']*[?&](?:tag|associate-tag)=[a-zA-Z0-9_-]+`),
			// gp/product with affiliate ref structure
			regexp.MustCompile(`(?i)https?://(?:www\.)?amazon\.` + amazonTLDs + `/gp/product/[^"']*/ref=[^"']*\?[^"']*tag=[a-zA-Z0-9_-]+`),
			// dp with affiliate ref structure
			regexp.MustCompile(`(?i)https?://(?:www\.)?amazon\.` + amazonTLDs + `/[^"']*/dp/[^"']*/ref=[^"']*\?[^"']*tag=[a-zA-Z0-9_-]+`),
			// amzn.to shortlinks
			regexp.MustCompile(`(?i)https?://amzn\.to/[a-zA-Z0-9]+`),
			// smile.amazon with tag parameter
			regexp.MustCompile(`(?i)https?://smile\.amazon\.` + amazonTLDs + `/[^"']*[?&]tag=[a-zA-Z0-9_-]+`),
		},
	},
	{
		NetworkID:   "shareasale",
		DisplayName: "ShareASale",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)https?://(?:www\.)?shareasale\.com/[^"']*[?&]r=[0-9]+`),
			regexp.MustCompile(`(?i)https?://(?:www\.)?shareasale\.com/r\.cfm\?[^"']*(?:merchantID|m)=[0-9]+`),
			regexp.MustCompile(`(?i)https?://(?:www\.)?shareasale\.com/[^"']*\?(?:[^"']*&)*[a-zA-Z]+=[0-9]+`),
			regexp.MustCompile(`(?i)https?://(?:www\.)?shareasale\.com/[^"']*[?&]affiliate=[0-9]+`),
		},
	},
	{
		NetworkID:   "cj_affiliate",
		DisplayName: "CJ Affiliate",
		Patterns:    cjPatterns(),
	},
	{
		NetworkID:   "ebay",
		DisplayName: "eBay Partner Network",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)https?://(?:www\.)?ebay\.com/[^"']*[?&]_trksid=[a-zA-Z0-9_-]+`),
			regexp.MustCompile(`(?i)https?://(?:www\.)?ebay\.com/[^"']*[?&]mkcid=[0-9]+`),
			regexp.MustCompile(`(?i)https?://(?:www\.)?ebay\.com/[^"']*[?&]campid=[0-9]+`),
		},
	},
	{
		NetworkID:   "clickbank",
		DisplayName: "ClickBank",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)https?://(?:[a-zA-Z0-9-]+\.)?clickbank\.net/[^"']*`),
			regexp.MustCompile(`(?i)https?://(?:hop|redirect)\.clickbank\.net/\?[^"']*`),
			regexp.MustCompile(`(?i)https?://[^"']*\.hop\.clickbank\.net[^"']*`),
		},
	},
}

func cjPatterns() []*regexp.Regexp {
	domains := []string{
		"anrdoezrs.net",
		"dpbolvw.net",
		"tkqlhce.com",
		"jdoqocy.com",
		"kqzyfj.com",
		"qksrv.net",
		"awltovhc.com",
		"vwcjb.net",
	}

	patterns := make([]*regexp.Regexp, 0, len(domains))
	for _, d := range domains {
		patterns = append(patterns, regexp.MustCompile(`(?i)https?://(?:www\.)?`+regexp.QuoteMeta(d)+`/[\w/\.-]+`))
	}
	return patterns
}

// Rules exposes the network table in attribution order.
func Rules() []NetworkRule {
	return networkRules
}

// classify attributes a normalized URL to the first network whose first
// pattern matches. The second return is false when no network matches.
func classify(url string) (domain.AffiliateMatch, bool) {
	for _, rule := range networkRules {
		for _, pattern := range rule.Patterns {
			if pattern.MatchString(url) {
				return domain.AffiliateMatch{
					NetworkID:   rule.NetworkID,
					DisplayName: rule.DisplayName,
					MatchedURL:  url,
				}, true
			}
		}
	}
	return domain.AffiliateMatch{}, false
}
