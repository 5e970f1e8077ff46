package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/protomedic/emstags/internal/models"
)

// DefaultMaxTags is the tag budget used when a caller passes none.
const DefaultMaxTags = 12

// InstructionSource supplies the admin-configured prompt rules.
type InstructionSource interface {
	CurrentInstructions() string
}

// Generator turns a protocol's title and description into a deduplicated,
// bounded sequence of structured tags via a remote chat-completion provider.
type Generator struct {
	registry        *Registry
	rules           InstructionSource
	defaultProvider string
}

// NewGenerator creates a Generator. defaultProvider is consulted when a
// request names no recognized provider; an unrecognized default falls back to
// OpenAI.
func NewGenerator(registry *Registry, rules InstructionSource, defaultProvider string) *Generator {
	return &Generator{
		registry:        registry,
		rules:           rules,
		defaultProvider: defaultProvider,
	}
}

// GenerateTags runs the full pipeline: instruction composition, prompt
// construction, provider call, tolerant parsing, normalization, dedup and
// truncation. An empty structured result is an error, never an empty success.
func (g *Generator) GenerateTags(ctx context.Context, title, description string, maxTags int, overrideRules, provider string) ([]models.StructuredTag, error) {
	instructions := g.combineInstructions(overrideRules)
	systemMessage := buildSystemPrompt(instructions)
	userMessage := buildUserPrompt(title, description, maxTags)

	chat, err := g.resolveProvider(provider)
	if err != nil {
		return nil, err
	}

	content, err := chat.ChatComplete(ctx, systemMessage, userMessage)
	if err != nil {
		return nil, err
	}

	elements, ok := parseTagArray(content)
	if !ok {
		return nil, ErrNoTags
	}

	tags := normalizeElements(elements)
	if len(tags) == 0 {
		return nil, ErrNoTags
	}

	if maxTags > 0 && len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return tags, nil
}

// combineInstructions joins the saved admin rules with the per-request
// override, separated by a blank line when both are present.
func (g *Generator) combineInstructions(overrideRules string) string {
	adminRules := ""
	if g.rules != nil {
		adminRules = strings.TrimSpace(g.rules.CurrentInstructions())
	}
	override := strings.TrimSpace(overrideRules)

	switch {
	case adminRules != "" && override != "":
		return adminRules + "\n\n" + override
	case adminRules != "":
		return adminRules
	default:
		return override
	}
}

// resolveProvider applies the fallback order: requested, then configured
// default, then OpenAI.
func (g *Generator) resolveProvider(requested string) (ChatProvider, error) {
	code := NormalizeProviderCode(requested)
	if !IsSupportedProvider(code) {
		code = NormalizeProviderCode(g.defaultProvider)
		if !IsSupportedProvider(code) {
			code = ProviderOpenAI
		}
	}

	chat, err := g.registry.Get(code)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve provider: %w", err)
	}
	return chat, nil
}
