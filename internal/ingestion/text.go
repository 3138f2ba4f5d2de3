package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	innerSpace   = regexp.MustCompile(`\s+`)
	blankRuns    = regexp.MustCompile(`\n\n\n+`)
	urlPattern   = regexp.MustCompile(`https?://[^\s<>"'\x60{}|\\^\[\]]+`)
	urlTrailSet  = ".,;:!?)'\""
	bulletPrefix = []string{"- ", "* ", "• ", "· "}
)

// CleanText normalizes extracted document text while preserving its line structure.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := blankRuns.ReplaceAllString(strings.Join(cleaned, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine trims trailing space and collapses inner whitespace, keeping
// leading indentation. Markdown headings are flushed left.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := len(line) - len(trimmed)
	if isBulletLine(trimmed) {
		return strings.Repeat(" ", indent) + trimmed
	}

	content := innerSpace.ReplaceAllString(strings.TrimSpace(line), " ")
	return strings.Repeat(" ", indent) + content
}

func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, p := range bulletPrefix {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// FindURLs returns the http(s) URLs appearing in text, in order, duplicates kept.
// Trailing sentence punctuation is not considered part of a URL.
func FindURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, urlTrailSet)
		if m == "http://" || m == "https://" || strings.HasSuffix(m, "://") {
			continue
		}
		urls = append(urls, m)
	}
	return urls
}

// FromFile reads a resume document from disk and extracts it.
func FromFile(ctx context.Context, path string) (*Document, error) {
	return DefaultExtractor.FromFile(ctx, path)
}

// FromFile reads a resume document from disk and extracts it.
func (x *Extractor) FromFile(ctx context.Context, path string) (*Document, error) {
	if _, err := DetectFormat(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &SourceError{Source: path, Message: "file not found", Cause: err}
		}
		return nil, &SourceError{Source: path, Message: "failed to read file", Cause: err}
	}
	return x.Extract(ctx, path, data)
}

// WriteOutput writes the extracted text and its metadata next to each other in outDir.
func WriteOutput(outDir string, doc *Document) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	textPath := filepath.Join(outDir, "resume.cleaned.txt")
	if err := os.WriteFile(textPath, []byte(doc.Text), 0644); err != nil {
		return fmt.Errorf("failed to write cleaned text file: %w", err)
	}

	metaJSON, err := doc.Metadata.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	metaPath := filepath.Join(outDir, "resume.meta.json")
	if err := os.WriteFile(metaPath, metaJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	return nil
}
