package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prismfin/prism/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider records the last request and returns a fixed reply.
type fakeProvider struct {
	lastReq llm.ChatRequest
	reply   string
	err     error
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{
		Content:      f.reply,
		Usage:        llm.Usage{InputTokens: 10, OutputTokens: 5},
		FinishReason: "stop",
	}, nil
}

// fakeQuotes serves a fixed close series.
type fakeQuotes struct {
	closes []float64
	bench  []float64
	err    error
}

func (f *fakeQuotes) RiskInputs(symbol, rng string) ([]float64, []float64, error) {
	return f.closes, f.bench, f.err
}
func (f *fakeQuotes) BenchmarkSymbol() string { return "SPY" }

func TestRespond_EmbedsSymbolContext(t *testing.T) {
	provider := &fakeProvider{reply: "looks volatile"}
	quotes := &fakeQuotes{
		closes: []float64{100, 102, 101, 105, 107, 106, 110},
		bench:  []float64{0.001, 0.001, 0.001, 0.001, 0.001, 0.001},
	}
	svc := NewService(provider, quotes, nil)

	resp, err := svc.Respond(context.Background(), Request{
		Symbol:   "AAPL",
		Messages: []llm.Message{{Role: "user", Content: "how risky is this?"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "looks volatile", resp.Reply)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 10, resp.Usage.InputTokens)

	// The computed summary must reach the provider's system prompt
	assert.True(t, strings.Contains(provider.lastReq.SystemPrompt, "AAPL"))
	assert.True(t, strings.Contains(provider.lastReq.SystemPrompt, "Beta vs SPY"))
	assert.True(t, strings.Contains(provider.lastReq.SystemPrompt, "Last close: 110.00"))
}

func TestRespond_NoSymbolSkipsContext(t *testing.T) {
	provider := &fakeProvider{reply: "hello"}
	svc := NewService(provider, &fakeQuotes{}, nil)

	resp, err := svc.Respond(context.Background(), Request{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)

	assert.Empty(t, resp.Context)
	assert.False(t, strings.Contains(provider.lastReq.SystemPrompt, "Current symbol"))
}

func TestRespond_QuoteFailureDegradesToNoContext(t *testing.T) {
	provider := &fakeProvider{reply: "ok"}
	quotes := &fakeQuotes{err: errors.New("source down")}
	svc := NewService(provider, quotes, nil)

	resp, err := svc.Respond(context.Background(), Request{
		Symbol:   "AAPL",
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err, "quote failure should not fail the chat turn")
	assert.Empty(t, resp.Context)
}

func TestRespond_EmptyMessages(t *testing.T) {
	svc := NewService(&fakeProvider{}, &fakeQuotes{}, nil)

	_, err := svc.Respond(context.Background(), Request{})
	assert.Error(t, err)
}

func TestRespond_ProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("rate limited")}
	svc := NewService(provider, &fakeQuotes{}, nil)

	_, err := svc.Respond(context.Background(), Request{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	assert.Error(t, err)
}
