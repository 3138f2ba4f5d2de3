package links

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/cold-message-generator/internal/credentials"
	"github.com/jonathan/cold-message-generator/internal/llm"
	"github.com/jonathan/cold-message-generator/internal/llm/llmtest"
	"github.com/jonathan/cold-message-generator/internal/metrics"
	"github.com/jonathan/cold-message-generator/internal/types"
)

func fallbacks(reason string) float64 {
	return testutil.ToFloat64(metrics.LinkClassificationFallbacks.WithLabelValues(reason))
}

func TestClassify_EmptyInputMakesNoCall(t *testing.T) {
	fake := llmtest.New(`{"github": "https://github.com/should-not-be-used"}`)
	c := NewClassifier(fake.Factory(), nil)

	for _, raw := range [][]string{nil, {}, {"", "   ", "\n"}} {
		assert.Equal(t, types.LinkMap{}, c.Classify(context.Background(), raw))
	}
	assert.Equal(t, 0, fake.CallCount())
}

func TestClassify_Success(t *testing.T) {
	fake := llmtest.New(`{
		"linkedin": "https://www.linkedin.com/in/asha-rao",
		"github": "https://github.com/asharao",
		"portfolio": null,
		"blog": "https://asha.hashnode.dev"
	}`)
	c := NewClassifier(fake.Factory(), nil)

	got := c.Classify(context.Background(), []string{
		"https://github.com/asharao",
		" https://www.linkedin.com/in/asha-rao ",
		"https://github.com/asharao",
		"https://asha.hashnode.dev",
	})

	assert.Equal(t, types.LinkMap{
		LinkedIn: "https://www.linkedin.com/in/asha-rao",
		GitHub:   "https://github.com/asharao",
		Blog:     "https://asha.hashnode.dev",
	}, got)

	calls := fake.Calls()
	require.Len(t, calls, 1, "exactly one request per call")
	assert.Equal(t, "json", calls[0].Kind)
	assert.Equal(t, llm.TierLite, calls[0].Tier)
	assert.InDelta(t, Temperature, calls[0].Options.Temperature, 1e-6)
	assert.Equal(t, 1, strings.Count(calls[0].Prompt, "https://github.com/asharao"), "duplicates removed")
	assert.Contains(t, calls[0].Prompt, "https://www.linkedin.com/in/asha-rao\n")
}

func TestClassify_CodeFenceAndPreamble(t *testing.T) {
	fake := llmtest.New("Sure! Here is the mapping:\n{\"github\": \"https://github.com/asharao\"}\nHope this helps.")
	c := NewClassifier(fake.Factory(), nil)

	got := c.Classify(context.Background(), []string{"https://github.com/asharao"})
	assert.Equal(t, "https://github.com/asharao", got.GitHub)
}

func TestClassify_ResumeKeyAccepted(t *testing.T) {
	fake := llmtest.New(`{"resume": "https://drive.google.com/file/d/abc", "twitter": "https://x.com/asha"}`)
	c := NewClassifier(fake.Factory(), nil)

	got := c.Classify(context.Background(), []string{"https://drive.google.com/file/d/abc", "https://x.com/asha"})
	assert.Equal(t, types.LinkMap{Resume: "https://drive.google.com/file/d/abc"}, got)
}

func TestClassify_FailSoft(t *testing.T) {
	tests := []struct {
		name    string
		factory llm.Factory
		reason  string
	}{
		{
			name:    "missing credential",
			factory: llmtest.FailingFactory(&credentials.ConfigurationError{Message: "API key is not set"}),
			reason:  reasonCredentials,
		},
		{
			name:    "client construction fails",
			factory: llmtest.FailingFactory(errors.New("dial tcp: refused")),
			reason:  reasonRequest,
		},
		{
			name:    "request fails",
			factory: llmtest.Failing(errors.New("429 too many requests")).Factory(),
			reason:  reasonRequest,
		},
		{
			name:    "not json",
			factory: llmtest.New("I could not classify these links.").Factory(),
			reason:  reasonParse,
		},
		{
			name:    "truncated json",
			factory: llmtest.New(`{"github": "https://github.com/asharao"`).Factory(),
			reason:  reasonParse,
		},
		{
			name:    "value is not a url",
			factory: llmtest.New(`{"github": "asharao on github", "linkedin": "https://linkedin.com/in/asha"}`).Factory(),
			reason:  reasonValidation,
		},
		{
			name:    "array instead of object",
			factory: llmtest.New(`["https://github.com/asharao"]`).Factory(),
			reason:  reasonValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			c := NewClassifier(tt.factory, zap.New(core))
			before := fallbacks(tt.reason)

			var got types.LinkMap
			assert.NotPanics(t, func() {
				got = c.Classify(context.Background(), []string{"https://github.com/asharao", "mailto:asha@example.com"})
			})

			assert.Equal(t, types.LinkMap{}, got)
			assert.Equal(t, before+1, fallbacks(tt.reason))

			entries := logs.FilterMessage("link classification failed, continuing without links").All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.reason, entries[0].ContextMap()["reason"])
			assert.EqualValues(t, 2, entries[0].ContextMap()["link_count"])
		})
	}
}

func TestParseResponse_Errors(t *testing.T) {
	_, err := ParseResponse("nope")
	var extErr *ExtractionError
	assert.True(t, errors.As(err, &extErr))

	_, err = ParseResponse(`{"portfolio": "ftp://asha.dev"}`)
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "portfolio", valErr.Field)
	assert.Contains(t, valErr.Error(), "portfolio")
}

func TestPrepare(t *testing.T) {
	got := Prepare([]string{" b ", "a", "", "b", "a", "c"})
	assert.Equal(t, []string{"b", "a", "c"}, got)
	assert.Empty(t, Prepare(nil))
}
