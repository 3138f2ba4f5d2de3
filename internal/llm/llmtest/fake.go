// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/cold-message-generator/internal/llm"
)

// Call records one request made to a Fake.
type Call struct {
	Kind    string // "content" or "json"
	Prompt  string
	Tier    llm.ModelTier
	Options llm.Options
}

// Response is one scripted reply.
type Response struct {
	Text string
	Err  error
}

// ErrExhausted is returned when a Fake has no scripted responses left.
var ErrExhausted = errors.New("llmtest: no scripted responses left")

// Fake replays scripted responses in order and records every call.
// When Respond is set it is used instead of the script.
type Fake struct {
	mu        sync.Mutex
	responses []Response
	calls     []Call
	closed    int

	Respond func(call Call) (string, error)
}

// New returns a Fake that answers with texts in order.
func New(texts ...string) *Fake {
	f := &Fake{}
	for _, t := range texts {
		f.responses = append(f.responses, Response{Text: t})
	}
	return f
}

// Failing returns a Fake whose every call fails with err.
func Failing(err error) *Fake {
	return &Fake{Respond: func(Call) (string, error) { return "", err }}
}

// Push appends a scripted response.
func (f *Fake) Push(text string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, Response{Text: text, Err: err})
	return f
}

func (f *Fake) next(call Call) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	respond := f.Respond
	if respond == nil {
		defer f.mu.Unlock()
		if len(f.responses) == 0 {
			return "", ErrExhausted
		}
		r := f.responses[0]
		f.responses = f.responses[1:]
		return r.Text, r.Err
	}
	f.mu.Unlock()
	return respond(call)
}

// GenerateContent implements llm.Client.
func (f *Fake) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier, opts ...llm.Option) (string, error) {
	return f.next(Call{Kind: "content", Prompt: prompt, Tier: tier, Options: llm.ResolveOptions(opts...)})
}

// GenerateJSON implements llm.Client. Responses pass through llm.CleanJSONBlock like the real providers.
func (f *Fake) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier, opts ...llm.Option) (string, error) {
	text, err := f.next(Call{Kind: "json", Prompt: prompt, Tier: tier, Options: llm.ResolveOptions(opts...)})
	if err != nil {
		return "", err
	}
	return llm.CleanJSONBlock(text), nil
}

// GetModel implements llm.Client.
func (f *Fake) GetModel(tier llm.ModelTier) string {
	return "fake-" + string(tier)
}

// Provider implements llm.Client.
func (f *Fake) Provider() llm.Provider {
	return "fake"
}

// Close implements llm.Client.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns the number of generate calls made.
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Closed returns how many times Close was called.
func (f *Fake) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Factory returns an llm.Factory that always hands out f.
func (f *Fake) Factory() llm.Factory {
	return func(context.Context) (llm.Client, error) {
		return f, nil
	}
}

// FailingFactory returns an llm.Factory that fails with err without producing a client.
func FailingFactory(err error) llm.Factory {
	return func(context.Context) (llm.Client, error) {
		return nil, err
	}
}
