// Package placeholders substitutes the recipient and company into a composed template.
//
// Substitution is literal: only the two exact tokens are recognized and each is replaced
// in a single left-to-right pass, so inserted values are never scanned again.
package placeholders

import (
	"strings"
)

// The two tokens a template may contain. Matching is exact and case-sensitive.
const (
	RecipientToken = "{recipient_name}"
	CompanyToken   = "{company_name}"
)

// Filler replaces placeholder tokens.
type Filler struct {
	// Strict makes Fill fail with *MissingPlaceholderError when a token is absent.
	// When false an absent token is a no-op.
	Strict bool
}

// Lenient fills templates and ignores absent tokens.
var Lenient = Filler{}

// Strict fills templates and rejects templates missing either token.
var Strict = Filler{Strict: true}

// Fill replaces every occurrence of both tokens with recipient and company.
// Both values must be non-blank. In strict mode the recipient token is checked before
// the company token, and the first missing one is reported.
func (f Filler) Fill(template, recipient, company string) (string, error) {
	if strings.TrimSpace(recipient) == "" {
		return "", &ValidationError{Field: "recipient_name", Message: "must not be empty"}
	}
	if strings.TrimSpace(company) == "" {
		return "", &ValidationError{Field: "company_name", Message: "must not be empty"}
	}

	if f.Strict {
		report := Inspect(template)
		if report.Recipient == 0 {
			return "", &MissingPlaceholderError{Token: RecipientToken}
		}
		if report.Company == 0 {
			return "", &MissingPlaceholderError{Token: CompanyToken}
		}
	}

	r := strings.NewReplacer(RecipientToken, recipient, CompanyToken, company)
	return r.Replace(template), nil
}

// Fill is Lenient.Fill.
func Fill(template, recipient, company string) (string, error) {
	return Lenient.Fill(template, recipient, company)
}

// Report counts token occurrences in a template.
type Report struct {
	Recipient int `json:"recipient_name"`
	Company   int `json:"company_name"`
}

// Complete reports whether both tokens appear at least once.
func (r Report) Complete() bool {
	return r.Recipient > 0 && r.Company > 0
}

// Missing lists the absent tokens in recipient, company order.
func (r Report) Missing() []string {
	var missing []string
	if r.Recipient == 0 {
		missing = append(missing, RecipientToken)
	}
	if r.Company == 0 {
		missing = append(missing, CompanyToken)
	}
	return missing
}

// Inspect counts the placeholder tokens in template.
func Inspect(template string) Report {
	return Report{
		Recipient: strings.Count(template, RecipientToken),
		Company:   strings.Count(template, CompanyToken),
	}
}
