// internal/api/handler/api/chat_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prismfin/prism/internal/api/response"
	"github.com/prismfin/prism/internal/chat"
	"github.com/prismfin/prism/internal/llm"
	"github.com/prismfin/prism/internal/metrics"
	"go.uber.org/zap"
)

type fakeProvider struct {
	reply string
	err   error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &llm.ChatResponse{
		Content: p.reply,
		Usage:   llm.Usage{InputTokens: 10, OutputTokens: 20},
	}, nil
}

type noQuotes struct{}

func (noQuotes) RiskInputs(symbol, rng string) ([]float64, []float64, error) {
	return nil, nil, errors.New("unavailable")
}

func (noQuotes) BenchmarkSymbol() string { return "SPY" }

func chatBody(t *testing.T, req chat.Request) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		t.Fatalf("encoding request: %v", err)
	}
	return &buf
}

func TestChatHandler_Post(t *testing.T) {
	svc := chat.NewService(&fakeProvider{reply: "looks volatile"}, noQuotes{}, zap.NewNop())
	h := NewChatHandler(svc, metrics.NewRegistry())

	body := chatBody(t, chat.Request{
		Messages: []llm.Message{{Role: "user", Content: "how risky is this?"}},
	})
	req := httptest.NewRequest("POST", "/api/v1/chat", body)
	w := httptest.NewRecorder()
	h.Post(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp response.SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	data := resp.Data.(map[string]any)
	if data["reply"] != "looks volatile" {
		t.Errorf("expected provider reply, got %v", data["reply"])
	}
	if data["id"] == "" {
		t.Error("expected a response ID")
	}
}

func TestChatHandler_Post_BadJSON(t *testing.T) {
	svc := chat.NewService(&fakeProvider{}, noQuotes{}, zap.NewNop())
	h := NewChatHandler(svc, nil)

	req := httptest.NewRequest("POST", "/api/v1/chat", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	h.Post(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad JSON, got %d", w.Code)
	}
}

func TestChatHandler_Post_EmptyMessages(t *testing.T) {
	svc := chat.NewService(&fakeProvider{}, noQuotes{}, zap.NewNop())
	h := NewChatHandler(svc, nil)

	body := chatBody(t, chat.Request{})
	req := httptest.NewRequest("POST", "/api/v1/chat", body)
	w := httptest.NewRecorder()
	h.Post(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty messages, got %d", w.Code)
	}
}

func TestChatHandler_Post_ProviderError(t *testing.T) {
	svc := chat.NewService(&fakeProvider{err: errors.New("rate limited")}, noQuotes{}, zap.NewNop())
	h := NewChatHandler(svc, metrics.NewRegistry())

	body := chatBody(t, chat.Request{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	req := httptest.NewRequest("POST", "/api/v1/chat", body)
	w := httptest.NewRecorder()
	h.Post(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502 for provider failure, got %d", w.Code)
	}

	var resp response.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Code != "LLM_FAILED" {
		t.Errorf("expected LLM_FAILED, got %s", resp.Error.Code)
	}
}

func TestChatHandler_Post_NoServiceConfigured(t *testing.T) {
	h := NewChatHandler(nil, nil)

	body := chatBody(t, chat.Request{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	req := httptest.NewRequest("POST", "/api/v1/chat", body)
	w := httptest.NewRecorder()
	h.Post(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 when chat is not configured, got %d", w.Code)
	}
}
