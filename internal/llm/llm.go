// Package llm provides the completion-service boundary for Scopeline.
//
// The rest of the codebase depends only on the Completer interface; the
// Anthropic client in anthropic.go is the production implementation.
package llm

import (
	"context"
	"fmt"
)

// Chat message roles understood by the completion service.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversational turn sent to the completion service.
type Message struct {
	Role    string
	Content string
}

// Completer produces one assistant turn from a system prompt and message
// history. Implementations must enforce their own request timeout and
// surface RateLimitedError/OverloadedError for the corresponding upstream
// conditions rather than hanging or returning opaque failures.
type Completer interface {
	Complete(ctx context.Context, system string, messages []Message) (string, error)
}

// RateLimitedError reports an upstream 429. RetryAfter is in seconds and
// zero when the provider supplied no hint.
type RateLimitedError struct {
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("llm: rate limited, retry after %ds", e.RetryAfter)
	}
	return "llm: rate limited"
}

// OverloadedError reports that the completion service is temporarily
// refusing work (Anthropic status 529).
type OverloadedError struct{}

func (e *OverloadedError) Error() string { return "llm: service overloaded" }
