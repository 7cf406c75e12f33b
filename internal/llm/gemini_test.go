package llm

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genai"
)

func TestMapGeminiError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{
			name:  "rate limit",
			err:   genai.APIError{Code: 429, Message: "quota exceeded"},
			check: func(err error) bool { var e *ErrRateLimit; return errors.As(err, &e) },
		},
		{
			name:  "unauthorized",
			err:   genai.APIError{Code: 401, Message: "bad key"},
			check: func(err error) bool { var e *ErrAuthentication; return errors.As(err, &e) },
		},
		{
			name:  "forbidden wrapped",
			err:   fmt.Errorf("generate: %w", genai.APIError{Code: 403}),
			check: func(err error) bool { var e *ErrAuthentication; return errors.As(err, &e) },
		},
		{
			name:  "server error",
			err:   genai.APIError{Code: 500},
			check: func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) },
		},
		{
			name:  "network error",
			err:   errors.New("connection refused"),
			check: func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapGeminiError(tt.err)
			if !tt.check(got) {
				t.Fatalf("unexpected mapping: %T (%v)", got, got)
			}
		})
	}
}
