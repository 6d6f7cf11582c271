package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"truthsignal/internal/ports"
)

var refreshURLExpr = regexp.MustCompile(`(?i)url=(.+)`)

// HTMLParser extracts candidate URLs and readable text from raw markup.
type HTMLParser struct{}

var _ ports.LinkExtractor = (*HTMLParser)(nil)
var _ ports.TextCleaner = (*HTMLParser)(nil)

// NewHTMLParser builds a stateless parser.
func NewHTMLParser() *HTMLParser {
	return &HTMLParser{}
}

// ExtractLinks returns every literal URL appearing in href, src and action
// attributes plus meta refresh directives, one entry per occurrence in
// document order. Attribute values come back entity-decoded by the parser.
func (p *HTMLParser) ExtractLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	links := make([]string, 0)

	doc.Find("a[href], link[href], area[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && strings.TrimSpace(href) != "" {
			links = append(links, href)
		}
	})

	doc.Find("img[src], script[src], iframe[src], frame[src]").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && strings.TrimSpace(src) != "" {
			links = append(links, src)
		}
	})

	doc.Find("form[action]").Each(func(_ int, s *goquery.Selection) {
		if action, ok := s.Attr("action"); ok && strings.TrimSpace(action) != "" {
			links = append(links, action)
		}
	})

	doc.Find("meta[http-equiv]").Each(func(_ int, s *goquery.Selection) {
		equiv, _ := s.Attr("http-equiv")
		if !strings.EqualFold(strings.TrimSpace(equiv), "refresh") {
			return
		}
		content, _ := s.Attr("content")
		if m := refreshURLExpr.FindStringSubmatch(content); m != nil {
			links = append(links, strings.TrimSpace(m[1]))
		}
	})

	return links, nil
}

// CleanText strips tags and collapses whitespace into a single-spaced string.
// Best-effort only: unparseable markup yields an empty string.
func (p *HTMLParser) CleanText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
