package composing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cold-message-generator/internal/credentials"
	"github.com/jonathan/cold-message-generator/internal/llm"
	"github.com/jonathan/cold-message-generator/internal/llm/llmtest"
	"github.com/jonathan/cold-message-generator/internal/metrics"
	"github.com/jonathan/cold-message-generator/internal/types"
)

const draft = `Subject: Referral for Backend Engineer role

Hi {recipient_name},

I have spent 5 years building distributed systems and would love a referral for the Backend Engineer opening at {company_name}.

- GitHub: https://github.com/asha`

func referralInput() types.UserInput {
	return types.UserInput{
		Summary:     "5 years building distributed systems",
		GitHub:      "https://github.com/asha",
		MessageType: types.ColdEmailReferral,
		JobType:     "Backend Engineer",
	}
}

func TestCompose_ReturnsResponseVerbatim(t *testing.T) {
	fake := llmtest.New(draft)
	c := NewComposer(fake.Factory(), nil)

	before := testutil.ToFloat64(metrics.MessagesGenerated.WithLabelValues(string(types.ColdEmailReferral)))

	template, err := c.Compose(context.Background(), referralInput())
	require.NoError(t, err)
	assert.Equal(t, draft, template)
	assert.Contains(t, template, "{recipient_name}")
	assert.Contains(t, template, "{company_name}")

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.MessagesGenerated.WithLabelValues(string(types.ColdEmailReferral))))

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "content", calls[0].Kind)
	assert.Equal(t, llm.TierAdvanced, calls[0].Tier)
	assert.InDelta(t, Temperature, calls[0].Options.Temperature, 1e-6)
}

func TestCompose_Prompt(t *testing.T) {
	fake := llmtest.New(draft)
	c := NewComposer(fake.Factory(), nil)

	in := referralInput()
	in.LinkedIn = "https://linkedin.com/in/asha"
	_, err := c.Compose(context.Background(), in)
	require.NoError(t, err)

	prompt := fake.Calls()[0].Prompt
	assert.Contains(t, prompt, "compelling Cold Email for referral")
	assert.Contains(t, prompt, "relevant to the Backend Engineer role")
	assert.Contains(t, prompt, `"summary": "5 years building distributed systems"`)
	assert.Contains(t, prompt, `"message_type": "Cold Email for referral"`)
	assert.Contains(t, prompt, "{recipient_name}")
	assert.Contains(t, prompt, "{company_name}")
	assert.Contains(t, prompt, "Subject:")
	assert.Contains(t, prompt, "  - LinkedIn: https://linkedin.com/in/asha\n  - GitHub: https://github.com/asha")
	assert.NotContains(t, prompt, "Portfolio:")
	assert.NotContains(t, prompt, "{{.")
}

func TestCompose_AllMessageTypes(t *testing.T) {
	for _, mt := range types.MessageTypes {
		t.Run(string(mt), func(t *testing.T) {
			fake := llmtest.New(draft)
			c := NewComposer(fake.Factory(), nil)

			in := referralInput()
			in.MessageType = mt
			template, err := c.Compose(context.Background(), in)
			require.NoError(t, err)
			assert.NotEmpty(t, template)

			prompt := fake.Calls()[0].Prompt
			assert.Contains(t, prompt, string(mt))
			assert.Contains(t, prompt, "subject line")
		})
	}
}

func TestCompose_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.UserInput)
		field  string
	}{
		{"blank summary", func(u *types.UserInput) { u.Summary = " " }, "summary"},
		{"unknown message type", func(u *types.UserInput) { u.MessageType = "Cold Email for Referral" }, "message_type"},
		{"missing job type", func(u *types.UserInput) { u.JobType = "" }, "job_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := llmtest.New(draft)
			c := NewComposer(fake.Factory(), nil)

			in := referralInput()
			tt.mutate(&in)
			_, err := c.Compose(context.Background(), in)

			var valErr *ValidationError
			require.True(t, errors.As(err, &valErr), "got %v", err)
			assert.Equal(t, tt.field, valErr.Field)
			assert.Equal(t, 0, fake.CallCount())
		})
	}
}

func TestCompose_MissingCredential(t *testing.T) {
	c := NewComposer(llm.NewFactory(nil, credentials.NewStore(), nil), nil)

	_, err := c.Compose(context.Background(), referralInput())
	var cfgErr *credentials.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestCompose_APIErrors(t *testing.T) {
	c := NewComposer(llmtest.Failing(errors.New("timeout")).Factory(), nil)
	_, err := c.Compose(context.Background(), referralInput())
	var apiErr *APICallError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "timeout")

	c = NewComposer(llmtest.New("   \n").Factory(), nil)
	_, err = c.Compose(context.Background(), referralInput())
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "empty response")

	c = NewComposer(llmtest.FailingFactory(errors.New("bad base url")), nil)
	_, err = c.Compose(context.Background(), referralInput())
	assert.True(t, errors.As(err, &apiErr))
}

func TestRenderLinks_Deterministic(t *testing.T) {
	m := types.LinkMap{
		Blog:      "https://asha.hashnode.dev",
		Portfolio: "https://asha.dev",
		Resume:    "https://example.com/asha.pdf",
	}

	want := "- Resume: https://example.com/asha.pdf\n- Portfolio: https://asha.dev\n- Blog: https://asha.hashnode.dev"
	for i := 0; i < 5; i++ {
		assert.Equal(t, want, RenderLinks(m))
	}
	assert.Equal(t, "", RenderLinks(types.LinkMap{}))
}

func TestRenderLinks_ValuesUnchanged(t *testing.T) {
	m := types.LinkMap{GitHub: "HTTPS://GitHub.com/Asha/?tab=repositories"}
	assert.True(t, strings.HasSuffix(RenderLinks(m), m.GitHub))
}

func TestBuildPrompt_NoLinks(t *testing.T) {
	in := referralInput()
	in.GitHub = ""
	prompt, err := BuildPrompt(in)
	require.NoError(t, err)
	assert.Contains(t, prompt, "no links provided")
}
