package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF returns the plain text of every page in order along with the
// URI targets of the pages' link annotations. The pdf reader panics on some
// malformed input, so panics are turned into errors.
func extractPDF(ctx context.Context, data []byte) (text string, links []string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, links, pages = "", nil, 0
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, 0, fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	pages = reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", nil, 0, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err == nil && content != "" {
			sb.WriteString(content)
			sb.WriteString("\n")
		}
		links = append(links, annotationURIs(page)...)
	}

	return CleanText(sb.String()), links, pages, nil
}

// annotationURIs reads /Annots entries whose action dictionary carries a /URI.
func annotationURIs(page pdf.Page) []string {
	annots := page.V.Key("Annots")
	var uris []string
	for i := 0; i < annots.Len(); i++ {
		uri := annots.Index(i).Key("A").Key("URI")
		if uri.Kind() != pdf.String {
			continue
		}
		if u := strings.TrimSpace(uri.Text()); u != "" {
			uris = append(uris, u)
		}
	}
	return uris
}
