package ai

import (
	"context"
	"strings"
)

// Supported provider codes. OpenAI is the hardcoded fallback when neither the
// request nor the configuration names a recognized provider.
const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
)

// ChatProvider is a remote chat-completion backend. Implementations send one
// system and one user message and return the assistant's text content.
type ChatProvider interface {
	Code() string
	ChatComplete(ctx context.Context, systemMessage, userMessage string) (string, error)
}

// NormalizeProviderCode canonicalizes a requested provider identifier.
func NormalizeProviderCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// IsSupportedProvider reports whether code names one of the supported
// providers.
func IsSupportedProvider(code string) bool {
	return code == ProviderOpenAI || code == ProviderGroq
}
