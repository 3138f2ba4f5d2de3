// Package ingestion turns uploaded resume documents into plain text plus the
// hyperlinks they contain.
package ingestion

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Format identifies a supported document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
	FormatText Format = "text"
)

var extensions = map[string]Format{
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".html": FormatHTML,
	".htm":  FormatHTML,
	".txt":  FormatText,
	".md":   FormatText,
}

// DetectFormat picks the document format from the file extension of name.
func DetectFormat(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", &UnsupportedFormatError{Name: name}
}

// Document is the result of extracting a resume.
type Document struct {
	Text     string    `json:"text"`
	Links    []string  `json:"links"`
	Metadata *Metadata `json:"metadata"`
}

// Extractor extracts text and links from resume documents.
type Extractor struct {
	logger *zap.Logger
}

// DefaultExtractor discards its logs.
var DefaultExtractor = NewExtractor(nil)

// NewExtractor creates an Extractor. A nil logger discards output.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger.With(zap.String("component", "ingestion"))}
}

// Extract extracts a document using DefaultExtractor.
func Extract(ctx context.Context, name string, data []byte) (*Document, error) {
	return DefaultExtractor.Extract(ctx, name, data)
}

// Extract reads the text and hyperlinks of the document called name. Only the
// extension of name is inspected. Content that cannot be parsed in a supported
// format yields an empty Document rather than an error.
func (x *Extractor) Extract(ctx context.Context, name string, data []byte) (*Document, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	meta := NewMetadata(filepath.Base(name), format, data)
	var (
		text  string
		links []string
	)

	switch format {
	case FormatPDF:
		var pages int
		text, links, pages, err = extractPDF(ctx, data)
		meta.PageCount = pages
	case FormatDOCX:
		text, err = extractDOCX(data)
		links = FindURLs(text)
	case FormatHTML:
		text, links, err = extractHTML(data)
	case FormatText:
		text = string(data)
		links = FindURLs(text)
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		x.logger.Warn("document could not be parsed, continuing with empty text",
			zap.String("source", meta.Source),
			zap.String("format", string(format)),
			zap.Error(err))
		text, links = "", nil
		meta.PageCount = 0
	}

	if links == nil {
		links = []string{}
	}
	meta.LinkCount = len(links)
	x.logger.Debug("document extracted",
		zap.String("source", meta.Source),
		zap.String("format", string(format)),
		zap.Int("text_len", len(text)),
		zap.Int("link_count", len(links)))

	return &Document{Text: text, Links: links, Metadata: meta}, nil
}
