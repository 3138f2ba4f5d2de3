package ingestion

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockSelectors = "p, div, br, li, tr, h1, h2, h3, h4, h5, h6, section, article, header, footer, pre, blockquote"

// extractHTML returns the visible body text of an HTML resume and the
// http(s) targets of its anchors in document order.
func extractHTML(data []byte) (string, []string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, template").Remove()

	body := doc.Find("body")
	var links []string
	body.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if u, ok := httpURL(href); ok {
			links = append(links, u)
		}
	})

	body.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return CleanText(body.Text()), links, nil
}

func httpURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return raw, true
	}
	return "", false
}
