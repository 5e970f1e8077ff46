package ai

import "fmt"

// taggingSystemPrompt fixes the assistant's role and the output contract the
// parser relies on.
const taggingSystemPrompt = `You are a medical tagging assistant for EMS treatment protocols. ` +
	`Always respond with a compact JSON array of objects, each of the form {"key": "...", "label": "..."}, ` +
	`where key is a lowercase URL-safe slug and label is the human-readable form of the tag. ` +
	`Avoid explanations or additional text.`

// buildSystemPrompt appends the combined admin/override instructions to the
// fixed role description when present.
func buildSystemPrompt(instructions string) string {
	if instructions == "" {
		return taggingSystemPrompt
	}
	return taggingSystemPrompt + "\n\nAdmin rules to follow:\n" + instructions
}

// buildUserPrompt embeds the tag budget and the protocol content.
func buildUserPrompt(title, description string, maxTags int) string {
	return fmt.Sprintf(
		"Generate at most %d high-quality search tags for the following protocol. "+
			"Include synonymous medical terms when appropriate. "+
			"Return ONLY the JSON array.\n\nTitle: %s\n\nDescription: %s",
		maxTags, title, description,
	)
}
