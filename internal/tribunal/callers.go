package tribunal

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/joelkehle/sanctionguard/internal/platform/config"
)

// NewCallers builds one caller per provider that has credentials. Providers
// without a key are left out; stages that need them fail with ErrNoCredentials.
func NewCallers(ctx context.Context, creds config.CredentialsConfig, logger *zap.Logger) Callers {
	callers := Callers{}
	if key := strings.TrimSpace(creds.GroqAPIKey); key != "" {
		callers["groq"] = NewGroqCaller(key, creds.GroqBaseURL)
	}
	if key := strings.TrimSpace(creds.GoogleAPIKey); key != "" {
		g, err := NewGeminiCaller(ctx, key)
		if err != nil {
			logger.Warn("gemini caller unavailable", zap.Error(err))
		} else {
			callers["gemini"] = g
		}
	}
	if key := strings.TrimSpace(creds.AnthropicAPIKey); key != "" {
		a, err := NewAnthropicCaller(key)
		if err != nil {
			logger.Warn("anthropic caller unavailable", zap.Error(err))
		} else {
			callers["anthropic"] = a
		}
	}
	return callers
}
