package llm

import (
	"context"
	"errors"
	"testing"

	"research-assistant/internal/metrics"
	"research-assistant/pkg/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInstrumentedProvider_LogsSuccess(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	mock := NewMockProvider(MockResponse{Text: "ok", Usage: Usage{InputTokens: 3, OutputTokens: 1}})
	p := WithInstrumentation(mock, logger.NewFromZap(zap.New(core)), metrics.New(nil))

	resp, err := p.Complete(WithOperation(context.Background(), "answer"), UserPrompt("q", 10, 0.1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "ok" {
		t.Fatalf("expected ok, got %q", resp.Text)
	}

	entries := logs.FilterMessage("LLM request completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one completion log, got %d", len(entries))
	}
	if entries[0].ContextMap()["operation"] != "answer" {
		t.Fatalf("expected operation field, got %v", entries[0].ContextMap())
	}
}

func TestInstrumentedProvider_PassesErrorThrough(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	p := WithInstrumentation(mock, logger.NewFromZap(zap.New(core)), nil)

	_, err := p.Complete(context.Background(), UserPrompt("q", 10, 0.1))
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T", err)
	}
	if logs.FilterMessage("LLM request failed").Len() != 1 {
		t.Fatal("expected failure to be logged")
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected mock model id, got %q", p.ModelID())
	}
}
