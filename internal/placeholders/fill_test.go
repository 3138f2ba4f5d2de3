package placeholders

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFill_Example(t *testing.T) {
	got, err := Fill("Hi {recipient_name}, I'd love to connect with someone at {company_name}.", "Asha", "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Hi Asha, I'd love to connect with someone at Acme.", got)
}

func TestFill_AllOccurrences(t *testing.T) {
	template := "Subject: {company_name} role\n\nDear {recipient_name},\nI admire {company_name}.\nThanks {recipient_name}!"
	got, err := Fill(template, "Asha", "Acme")
	require.NoError(t, err)

	assert.Equal(t, "Subject: Acme role\n\nDear Asha,\nI admire Acme.\nThanks Asha!", got)
	assert.NotContains(t, got, RecipientToken)
	assert.NotContains(t, got, CompanyToken)
}

func TestFill_Idempotent(t *testing.T) {
	template := "Hi {recipient_name} at {company_name}"
	first, err := Fill(template, "Asha", "Acme")
	require.NoError(t, err)
	second, err := Fill(template, "Asha", "Acme")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Filling an already-filled message changes nothing.
	again, err := Fill(first, "Asha", "Acme")
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestFill_NoReinterpolation(t *testing.T) {
	got, err := Fill("Hi {recipient_name} at {company_name}", "{company_name}", "{recipient_name} Inc")
	require.NoError(t, err)
	assert.Equal(t, "Hi {company_name} at {recipient_name} Inc", got)
}

func TestFill_OtherTextUntouched(t *testing.T) {
	template := "Hi {Recipient_Name} {recipient} {{recipient_name}} ${company_name} %s {0}"
	got, err := Fill(template, "Asha", "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Hi {Recipient_Name} {recipient} {Asha} $Acme %s {0}", got)
}

func TestFill_LenientMissingToken(t *testing.T) {
	got, err := Fill("Hello there, {recipient_name}.", "Asha", "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Hello there, Asha.", got)

	got, err = Fill("No tokens at all.", "Asha", "Acme")
	require.NoError(t, err)
	assert.Equal(t, "No tokens at all.", got)
}

func TestFill_Strict(t *testing.T) {
	tests := []struct {
		name     string
		template string
		missing  string
	}{
		{"both missing reports recipient first", "Hello.", RecipientToken},
		{"company missing", "Hi {recipient_name}.", CompanyToken},
		{"recipient missing", "At {company_name}.", RecipientToken},
		{"wrong case", "Hi {Recipient_name} at {company_name}", RecipientToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Strict.Fill(tt.template, "Asha", "Acme")
			var missing *MissingPlaceholderError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.missing, missing.Token)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}

	got, err := Strict.Fill("Hi {recipient_name} at {company_name}", "Asha", "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Hi Asha at Acme", got)
}

func TestFill_EmptyValues(t *testing.T) {
	for _, f := range []Filler{Lenient, Strict} {
		_, err := f.Fill("Hi {recipient_name} at {company_name}", "", "Acme")
		var valErr *ValidationError
		require.True(t, errors.As(err, &valErr))
		assert.Equal(t, "recipient_name", valErr.Field)

		_, err = f.Fill("Hi {recipient_name} at {company_name}", "Asha", "  ")
		require.True(t, errors.As(err, &valErr))
		assert.Equal(t, "company_name", valErr.Field)
	}
}

func TestFill_ExactlyOneEachLeavesNoTokens(t *testing.T) {
	names := []string{"Asha", "Ravi Kumar", "O'Brien", "李"}
	companies := []string{"Acme", "Globex Corp.", "A&B", "$company"}
	for _, r := range names {
		for _, c := range companies {
			got, err := Fill("X {recipient_name} Y {company_name} Z", r, c)
			require.NoError(t, err)
			assert.Equal(t, 0, strings.Count(got, RecipientToken))
			assert.Equal(t, 0, strings.Count(got, CompanyToken))
		}
	}
}

func TestInspect(t *testing.T) {
	r := Inspect("{recipient_name} {recipient_name} {company_name}")
	assert.Equal(t, Report{Recipient: 2, Company: 1}, r)
	assert.True(t, r.Complete())
	assert.Empty(t, r.Missing())

	r = Inspect("nothing")
	assert.False(t, r.Complete())
	assert.Equal(t, []string{RecipientToken, CompanyToken}, r.Missing())
}
