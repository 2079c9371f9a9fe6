// Package chat implements the dashboard AI assistant backend.
// The service is stateless: conversation history travels with each
// request and nothing is persisted server-side.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/prismfin/prism/internal/core"
	"github.com/prismfin/prism/internal/engine"
	"github.com/prismfin/prism/internal/llm"
	"go.uber.org/zap"
)

const systemPrompt = `You are the assistant panel of a market dashboard.
Answer questions about the displayed ticker using the metrics provided in
the context. Be concise, cite the numbers you are given, and say so when
a question cannot be answered from the available data. Never invent
prices or statistics.`

// forecastSteps is the horizon embedded in the chat context.
const forecastSteps = 10

// SymbolContextProvider supplies the numeric inputs for a symbol's
// context block.
type SymbolContextProvider interface {
	RiskInputs(symbol, rng string) (closes []float64, benchmarkReturns []float64, err error)
	BenchmarkSymbol() string
}

// Request is one chat turn from the dashboard.
type Request struct {
	Symbol   string        `json:"symbol,omitempty"`
	Messages []llm.Message `json:"messages"`
}

// Response is the assistant's reply.
type Response struct {
	ID      string    `json:"id"`
	Reply   string    `json:"reply"`
	Usage   llm.Usage `json:"usage"`
	Context string    `json:"context,omitempty"`
}

// Service forwards chat requests to the configured LLM provider,
// enriching the system prompt with the selected symbol's computed
// risk summary and forecast.
type Service struct {
	provider llm.Provider
	quotes   SymbolContextProvider
	logger   *zap.Logger
}

// NewService creates a chat service.
func NewService(provider llm.Provider, quotes SymbolContextProvider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider: provider,
		quotes:   quotes,
		logger:   logger,
	}
}

// Provider returns the name of the backing LLM provider.
func (s *Service) Provider() string {
	return s.provider.Name()
}

// Respond handles one chat turn.
func (s *Service) Respond(ctx context.Context, req Request) (*Response, error) {
	if len(req.Messages) == 0 {
		return nil, core.WrapError(core.ErrInvalidParam, fmt.Errorf("no messages in request"))
	}

	id := uuid.NewString()
	prompt := systemPrompt
	contextBlock := ""

	if req.Symbol != "" {
		contextBlock = s.buildSymbolContext(req.Symbol)
		if contextBlock != "" {
			prompt = prompt + "\n\n" + contextBlock
		}
	}

	resp, err := s.provider.Chat(ctx, llm.ChatRequest{
		SystemPrompt: prompt,
		Messages:     req.Messages,
		MaxTokens:    1024,
		Temperature:  0.3,
	})
	if err != nil {
		s.logger.Error("chat request failed",
			zap.String("request_id", id),
			zap.String("provider", s.provider.Name()),
			zap.Error(err),
		)
		return nil, core.WrapError(core.ErrLLMFailed, err)
	}

	s.logger.Debug("chat turn completed",
		zap.String("request_id", id),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
	)

	return &Response{
		ID:      id,
		Reply:   resp.Content,
		Usage:   resp.Usage,
		Context: contextBlock,
	}, nil
}

// buildSymbolContext renders the symbol's computed metrics as a prompt
// block. Fetch failures degrade to no context rather than failing the
// chat turn.
func (s *Service) buildSymbolContext(symbol string) string {
	closes, benchReturns, err := s.quotes.RiskInputs(symbol, "6M")
	if err != nil {
		s.logger.Warn("symbol context unavailable",
			zap.String("symbol", symbol),
			zap.Error(err),
		)
		return ""
	}

	summary := engine.ComputeRiskSummary(closes, benchReturns)
	forecast := engine.ComputeForecast(closes, forecastSteps)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Current symbol: %s\n", symbol))
	if len(closes) > 0 {
		sb.WriteString(fmt.Sprintf("- Last close: %.2f\n", closes[len(closes)-1]))
	}
	sb.WriteString(fmt.Sprintf("- Mean daily return: %.4f%%\n", summary.Growth))
	sb.WriteString(fmt.Sprintf("- Volatility: %.4f%%\n", summary.Volatility))
	sb.WriteString(fmt.Sprintf("- Beta vs %s: %.4f\n", s.quotes.BenchmarkSymbol(), summary.Beta))
	sb.WriteString(fmt.Sprintf("- Sharpe: %.4f\n", summary.Sharpe))
	sb.WriteString(fmt.Sprintf("- Trend fit R²: %.2f%%\n", summary.Confidence))
	if len(forecast.Points) > 0 {
		sb.WriteString(fmt.Sprintf("- %d-day trend projection ends at %.2f\n",
			forecastSteps, forecast.Points[len(forecast.Points)-1]))
	}
	return sb.String()
}
