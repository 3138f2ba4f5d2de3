package ingestion

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// DefaultFetchTimeout bounds a single document download.
const DefaultFetchTimeout = 30 * time.Second

// DefaultUserAgent is sent with document downloads.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ColdMessage/1.0)"

// MaxDownloadBytes caps the size of a downloaded document.
const MaxDownloadBytes = 10 << 20

// contentTypes maps response media types to a file name extension, used when
// the URL path has no recognized extension.
var contentTypes = map[string]string{
	"application/pdf": ".pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"text/html":     ".html",
	"text/plain":    ".txt",
	"text/markdown": ".md",
}

// IsURL reports whether s is an absolute http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FromURL downloads a document using DefaultExtractor.
func FromURL(ctx context.Context, client *http.Client, rawURL string) (*Document, error) {
	return DefaultExtractor.FromURL(ctx, client, rawURL)
}

// FromURL downloads a hosted resume and extracts it. The format comes from the
// URL path extension, or from the response Content-Type when the path has none.
// A nil client uses one with DefaultFetchTimeout.
func (x *Extractor) FromURL(ctx context.Context, client *http.Client, rawURL string) (*Document, error) {
	if !IsURL(rawURL) {
		return nil, &SourceError{Source: rawURL, Message: "invalid URL"}
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &SourceError{Source: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &SourceError{Source: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &SourceError{Source: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	name, err := documentName(rawURL, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadBytes+1))
	if err != nil {
		return nil, &SourceError{Source: rawURL, Message: "failed to read response body", Cause: err}
	}
	if len(data) > MaxDownloadBytes {
		return nil, &SourceError{Source: rawURL, Message: fmt.Sprintf("document exceeds %d bytes", MaxDownloadBytes)}
	}

	doc, err := x.Extract(ctx, name, data)
	if err != nil {
		return nil, err
	}
	doc.Metadata.Source = rawURL
	return doc, nil
}

// documentName picks a file name whose extension DetectFormat understands.
func documentName(rawURL, contentType string) (string, error) {
	u, _ := url.Parse(rawURL)
	base := path.Base(u.Path)
	if _, err := DetectFormat(base); err == nil {
		return base, nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil {
		if ext, ok := contentTypes[strings.ToLower(mediaType)]; ok {
			return "resume" + ext, nil
		}
	}
	return "", &UnsupportedFormatError{Name: rawURL}
}
