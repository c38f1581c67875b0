package extract

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenEncoding is the BPE vocabulary used for token estimates.
const TokenEncoding = "o200k_base"

var (
	tokOnce sync.Once
	tok     *tiktoken.Tiktoken
)

// CountTokens estimates the token footprint of text. The encoder fetches
// its vocabulary on first use; when that is unavailable (offline runs) a
// coarse chars/4 estimate keeps the budget check working.
func CountTokens(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	tokOnce.Do(func() {
		tok, _ = tiktoken.GetEncoding(TokenEncoding)
	})
	if tok == nil {
		return (len([]rune(text)) + 3) / 4
	}
	return len(tok.Encode(text, nil, nil))
}
