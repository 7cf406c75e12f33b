package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestGetStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad file"), http.StatusBadRequest},
		{"too large", NewTooLargeError("too big"), http.StatusRequestEntityTooLarge},
		{"processing", NewProcessingError("extract", errors.New("corrupt")), http.StatusUnprocessableEntity},
		{"not found", NewNotFoundError("no document"), http.StatusNotFound},
		{"upstream", NewUpstreamError("model", errors.New("quota")), http.StatusBadGateway},
		{"wrapped", fmt.Errorf("ctx: %w", NewNotFoundError("x")), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetStatusCode(tt.err); got != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, got)
			}
		})
	}
}

func TestIsType_Wrapped(t *testing.T) {
	err := fmt.Errorf("while asking: %w", NewUpstreamError("model call failed", errors.New("timeout")))
	if !IsType(err, ErrorTypeUpstream) {
		t.Fatalf("expected upstream error type")
	}
	if IsType(err, ErrorTypeValidation) {
		t.Fatalf("did not expect validation error type")
	}
}

func TestUserMessage(t *testing.T) {
	err := NewProcessingError("Error processing PDF", errors.New("no text"))
	if got := UserMessage(err); got != "Error processing PDF: no text" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root")
	err := NewInternalError("wrapped", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find the cause")
	}
}
