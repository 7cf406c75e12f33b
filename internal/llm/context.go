package llm

import "context"

type contextKey string

const operationKey contextKey = "llm_operation"

// WithOperation attaches an operation label (summary, answer, questions,
// evaluation) to the context for logging and metrics.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// OperationFrom extracts the operation label from the context.
func OperationFrom(ctx context.Context) string {
	if v, ok := ctx.Value(operationKey).(string); ok {
		return v
	}
	return "unknown"
}
