package service

import (
	"sync"

	"research-assistant/internal/domain"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

const (
	tokenEncoding = "cl100k_base"
	charsPerToken = 4
)

var setLoaderOnce sync.Once

// Truncator cuts document text down to a token budget, keeping the start.
type Truncator struct {
	enc *tiktoken.Tiktoken
}

// NewTruncator loads the cl100k_base encoding from the embedded BPE files.
// When it cannot be loaded, budgets are approximated from character counts.
func NewTruncator(logger domain.Logger) *Truncator {
	setLoaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		logger.Warn("Tokenizer unavailable, falling back to character budget", "encoding", tokenEncoding, "error", err)
		return &Truncator{}
	}
	return &Truncator{enc: enc}
}

// CountTokens returns the number of tokens in text.
func (t *Truncator) CountTokens(text string) int {
	if t.enc == nil {
		return (len([]rune(text)) + charsPerToken - 1) / charsPerToken
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Truncate returns the longest prefix of text that fits in maxTokens.
func (t *Truncator) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if t.enc == nil {
		runes := []rune(text)
		limit := maxTokens * charsPerToken
		if len(runes) <= limit {
			return text
		}
		return string(runes[:limit])
	}

	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return t.enc.Decode(tokens[:maxTokens])
}
