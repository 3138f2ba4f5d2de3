// Package llm - extractor.go builds prompts for schema-constrained extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "LinkMap")
	Description string        // Preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
	Rules       []string      // Task-specific rules appended to the generic ones
	InputLabel  string        // Heading for the input block; defaults to "Input text"
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	for _, rule := range schema.Rules {
		sb.WriteString("- ")
		sb.WriteString(rule)
		sb.WriteString("\n")
	}
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	label := schema.InputLabel
	if label == "" {
		label = "Input text"
	}
	sb.WriteString(label)
	sb.WriteString(":\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// LinkMapSchema returns the extraction schema for classifying a document's hyperlinks by platform.
func LinkMapSchema() ExtractionSchema {
	url := "\"string\" | null"
	return ExtractionSchema{
		Name:        "LinkMap",
		Description: `You are an assistant that classifies URLs by platform. Given a list of URLs taken from a resume, map each platform to the candidate's own full URL.`,
		Fields: []SchemaField{
			{Name: "linkedin", Type: url, Description: "LinkedIn profile URL"},
			{Name: "github", Type: url, Description: "GitHub profile URL"},
			{Name: "portfolio", Type: url, Description: "Personal portfolio or website URL"},
			{Name: "blog", Type: url, Description: "Blog URL (Hashnode, Dev.to, Medium, personal blog)"},
		},
		Rules: []string{
			"Copy URLs exactly as given, including the http:// or https:// prefix.",
			"If a platform is missing, use null for that key.",
			"Ignore mailto: links, phone numbers, and links to employers or schools.",
		},
		InputLabel: "Links",
	}
}
