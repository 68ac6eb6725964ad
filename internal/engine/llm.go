package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
)

// completeFunc sends one system+user exchange and returns the reply text.
type completeFunc func(ctx context.Context, system, prompt string) (string, error)

// Translator turns an English transcript into Korean markdown for Notion.
type Translator struct {
	complete completeFunc
	metrics  *Metrics
	model    string
}

// NewLLMClient builds the chat-completion client from config.
func NewLLMClient(c Config) *llm.Client {
	return llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: c.LLMTimeout}),
	)
}

// NewTranslator wraps an LLM client. m may be nil.
func NewTranslator(client *llm.Client, model string, m *Metrics) *Translator {
	return newTranslator(func(ctx context.Context, system, prompt string) (string, error) {
		return client.Complete(ctx, system, prompt)
	}, model, m)
}

func newTranslator(fn completeFunc, model string, m *Metrics) *Translator {
	if m == nil {
		m = &Metrics{}
	}
	return &Translator{complete: fn, model: model, metrics: m}
}

// Model returns the model name used for cache keys.
func (t *Translator) Model() string { return t.model }

// Translate sends the transcript with the fixed Korean formatting prompt.
// The reply is trimmed; an empty reply is returned as "" with no error.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(translatePrompt, text)
	t.metrics.LLMCalls.Add(1)
	raw, err := t.complete(ctx, translateSystemPrompt, prompt)
	if err != nil {
		t.metrics.LLMErrors.Add(1)
		return "", Remote("translate", err)
	}
	out := strings.TrimSpace(raw)
	slog.Debug("translation received",
		slog.Int("chars", len([]rune(out))),
		slog.String("preview", Preview(out, 80)),
	)
	return out, nil
}
