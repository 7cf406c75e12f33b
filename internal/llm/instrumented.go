package llm

import (
	"context"
	"time"

	"research-assistant/internal/domain"
	"research-assistant/internal/metrics"
)

// InstrumentedProvider is a decorator that logs every LLM request and
// records it in the metrics registry.
type InstrumentedProvider struct {
	inner   Provider
	logger  domain.Logger
	metrics *metrics.Metrics
}

// WithInstrumentation wraps a Provider with logging and metrics.
func WithInstrumentation(p Provider, logger domain.Logger, m *metrics.Metrics) Provider {
	return &InstrumentedProvider{inner: p, logger: logger, metrics: m}
}

func (i *InstrumentedProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	op := OperationFrom(ctx)

	resp, err := i.inner.Complete(ctx, req)
	elapsed := time.Since(start)

	var usage Usage
	if resp != nil {
		usage = resp.Usage
	}
	i.metrics.ObserveLLM(op, elapsed, usage.InputTokens, usage.OutputTokens, err)

	if err != nil {
		i.logger.Error("LLM request failed", err,
			"operation", op,
			"model", i.inner.ModelID(),
			"latency_ms", elapsed.Milliseconds(),
		)
		return nil, err
	}

	i.logger.Info("LLM request completed",
		"operation", op,
		"model", resp.Model,
		"latency_ms", elapsed.Milliseconds(),
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
		"stop_reason", resp.StopReason,
	)
	if resp.StopReason == "max_tokens" {
		i.logger.Warn("LLM completion hit the token limit", "operation", op, "max_tokens", req.MaxTokens)
	}

	return resp, nil
}

func (i *InstrumentedProvider) ModelID() string {
	return i.inner.ModelID()
}
