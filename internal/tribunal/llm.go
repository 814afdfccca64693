package tribunal

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Request is one text-generation call. MaxTokens 0 leaves the provider
// default; JSON asks providers that support it for a JSON-only response.
type Request struct {
	Model     string
	Prompt    string
	MaxTokens int
	JSON      bool
}

type LLMCaller interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Callers maps a provider name (groq, gemini, anthropic) to its caller.
type Callers map[string]LLMCaller

var ErrNoCredentials = errors.New("provider credentials not configured")

func (c Callers) get(provider string) (LLMCaller, error) {
	caller, ok := c[provider]
	if !ok || caller == nil {
		return nil, fmt.Errorf("%s: %w", provider, ErrNoCredentials)
	}
	return caller, nil
}

func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
