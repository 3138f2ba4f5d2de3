// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cold-message-generator/internal/ingestion"
	"github.com/jonathan/cold-message-generator/internal/pipeline"
	"github.com/jonathan/cold-message-generator/internal/placeholders"
	"github.com/jonathan/cold-message-generator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, inner), inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(line string, width int) string {
	if utf8.RuneCountInString(line) <= width {
		return line
	}
	runes := []rune(line)
	return string(runes[:width-3]) + "..."
}

func pad(line string, width int) string {
	if n := utf8.RuneCountInString(line); n < width {
		return line + strings.Repeat(" ", width-n)
	}
	return line
}

func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// PrintDocument outputs the metadata and link count of an extracted document.
func (p *Printer) PrintDocument(doc *ingestion.Document) {
	if doc == nil || doc.Metadata == nil {
		return
	}
	m := doc.Metadata

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:  %s\n", m.Source))
	sb.WriteString(fmt.Sprintf("Format:  %s\n", m.Format))
	if m.PageCount > 0 {
		sb.WriteString(fmt.Sprintf("Pages:   %d\n", m.PageCount))
	}
	sb.WriteString(fmt.Sprintf("Text:    %d characters\n", utf8.RuneCountInString(doc.Text)))
	sb.WriteString(fmt.Sprintf("Links:   %d\n", m.LinkCount))
	sb.WriteString(fmt.Sprintf("Hash:    %s", m.Hash[:min(len(m.Hash), 16)]))

	p.printBox("EXTRACTED DOCUMENT", sb.String())
}

// PrintLinks outputs the classified links.
func (p *Printer) PrintLinks(links types.LinkMap) {
	entries := links.Entries()
	if len(entries) == 0 {
		p.printBox("CLASSIFIED LINKS", "(none)")
		return
	}

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%-10s %s\n", e.Label+":", e.URL))
	}
	p.printBox("CLASSIFIED LINKS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSummary outputs a human-readable view of the extracted resume summary.
func (p *Printer) PrintSummary(summary *types.Summary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	if summary.FullName != "" {
		sb.WriteString(fmt.Sprintf("Name:       %s\n", summary.FullName))
	}
	if summary.CareerLevel != "" {
		sb.WriteString(fmt.Sprintf("Level:      %s\n", summary.CareerLevel))
	}
	if summary.TotalExperience != "" {
		sb.WriteString(fmt.Sprintf("Experience: %s\n", summary.TotalExperience))
	}
	sb.WriteString("\n")
	sb.WriteString(wrap(summary.ProfessionalSummary, boxWidth-4))
	sb.WriteString("\n\n")

	writeList(&sb, "Technical Skills", summary.TechnicalSkills)

	if len(summary.WorkExperience) > 0 {
		roles := make([]string, 0, len(summary.WorkExperience))
		for _, exp := range summary.WorkExperience {
			roles = append(roles, fmt.Sprintf("%s, %s (%s)", exp.JobTitle, exp.Company, exp.Duration))
		}
		writeList(&sb, "Work Experience", roles)
	}
	writeList(&sb, "Target Roles", summary.TargetRoles)

	p.printBox("RESUME SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTemplate outputs a composed template and whether it carries both placeholders.
func (p *Printer) PrintTemplate(template string) {
	report := placeholderReport(template)
	p.printBox("MESSAGE TEMPLATE", wrapLines(template, boxWidth-4)+"\n\n"+report)
}

// PrintProgress outputs a single pipeline progress line.
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) PrintProgress(event pipeline.ProgressEvent) {
	fmt.Fprintf(p.out, "[%s] %s\n", event.Step, event.Message)
}

// Progress returns a pipeline progress callback that prints each event and,
// for the steps that carry content, the detailed view.
func (p *Printer) Progress() pipeline.ProgressCallback {
	return func(event pipeline.ProgressEvent) {
		p.PrintProgress(event)
		switch content := event.Content.(type) {
		case types.LinkMap:
			p.PrintLinks(content)
		case *types.Summary:
			p.PrintSummary(content)
		case string:
			p.PrintTemplate(content)
		}
	}
}

func placeholderReport(template string) string {
	report := placeholders.Inspect(template)
	if report.Complete() {
		return "Placeholders: complete"
	}
	return "Placeholders missing: " + strings.Join(report.Missing(), ", ")
}

// wrapLines wraps each line of text independently, keeping blank lines.
func wrapLines(text string, width int) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = wrap(line, width)
	}
	return strings.Join(lines, "\n")
}

// wrap breaks text on spaces so no line exceeds width runes where possible.
func wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var sb strings.Builder
	lineLen := 0
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		if lineLen > 0 && lineLen+1+n > width {
			sb.WriteString("\n")
			lineLen = 0
		} else if lineLen > 0 {
			sb.WriteString(" ")
			lineLen++
		}
		sb.WriteString(w)
		lineLen += n
	}
	return sb.String()
}
