package prober

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// metaSelectors are the meta tags platforms use to describe the landing page.
// Dead invite and channel pages usually state their condition there.
var metaSelectors = []string{
	`meta[property="og:title"]`,
	`meta[property="og:description"]`,
	`meta[name="description"]`,
	`meta[name="twitter:description"]`,
}

// pageText returns the lower-cased text a reader would see on the page: the
// title, descriptive meta tags and the body text without scripts or styles.
// Non-HTML bodies are returned lower-cased as they are.
func pageText(body []byte, contentType string) string {
	if !isHTML(contentType, body) {
		return strings.ToLower(string(body))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return strings.ToLower(string(body))
	}

	var parts []string

	if title := doc.Find("title").First().Text(); title != "" {
		parts = append(parts, title)
	}

	for _, sel := range metaSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if content, ok := s.Attr("content"); ok && content != "" {
				parts = append(parts, content)
			}
		})
	}

	doc.Find("script, style, noscript").Remove()
	parts = append(parts, doc.Find("body").Text())

	return strings.ToLower(strings.Join(strings.Fields(strings.Join(parts, " ")), " "))
}

func isHTML(contentType string, body []byte) bool {
	if contentType != "" {
		ct := strings.ToLower(contentType)
		return strings.Contains(ct, "html") || strings.Contains(ct, "xml")
	}

	head := strings.ToLower(string(body[:min(len(body), 512)]))

	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
}

// findMarker returns the first marker contained in text, or "".
func findMarker(text string, markers []string) string {
	for _, m := range markers {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" && strings.Contains(text, m) {
			return m
		}
	}

	return ""
}
