package ai

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/protomedic/emstags/internal/models"
	"github.com/protomedic/emstags/internal/slug"
)

// Model output is untyped text with no structural guarantee: sometimes a bare
// JSON array, sometimes prose around one, sometimes a fenced code block. The
// parser runs increasingly permissive extraction strategies and stops at the
// first one whose candidate decodes as a JSON array.

var fencedArrayPattern = regexp.MustCompile("(?i)```(?:json)?\\s*(\\[[\\s\\S]*?\\])\\s*```")

// extractStrategy returns a candidate JSON array substring, or ok=false when
// the strategy does not apply to the content.
type extractStrategy func(content string) (string, bool)

var extractStrategies = []extractStrategy{
	extractWholeContent,
	extractBalancedArray,
	extractFencedArray,
}

// parseTagArray returns the elements of the first JSON array found in
// content, or ok=false when no strategy yields one.
func parseTagArray(content string) ([]json.RawMessage, bool) {
	for _, extract := range extractStrategies {
		candidate, ok := extract(content)
		if !ok {
			continue
		}
		var elements []json.RawMessage
		if err := json.Unmarshal([]byte(candidate), &elements); err == nil {
			return elements, true
		}
	}
	return nil, false
}

func extractWholeContent(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// extractBalancedArray finds the first bracket-balanced [...] substring,
// ignoring brackets inside JSON string literals.
func extractBalancedArray(content string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range content {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '[':
			if start < 0 {
				start = i
			}
			depth++
		case ']':
			if start >= 0 {
				depth--
				if depth == 0 {
					return content[start : i+1], true
				}
			}
		}
	}
	return "", false
}

func extractFencedArray(content string) (string, bool) {
	m := fencedArrayPattern.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// taggedElement is the object shape the model is asked for. Some models emit
// "name" instead of "label"; both are accepted.
type taggedElement struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Name  string `json:"name"`
}

// normalizeElements converts raw array elements into structured tags: plain
// strings become labels with derived keys, objects may carry their own key.
// Blank labels are dropped; duplicates by key keep the first occurrence.
func normalizeElements(elements []json.RawMessage) []models.StructuredTag {
	structured := make([]models.StructuredTag, 0, len(elements))
	for _, element := range elements {
		var label, key string

		var s string
		if err := json.Unmarshal(element, &s); err == nil {
			label = strings.TrimSpace(s)
		} else {
			var obj taggedElement
			if err := json.Unmarshal(element, &obj); err != nil {
				continue
			}
			label = strings.TrimSpace(obj.Label)
			if label == "" {
				label = strings.TrimSpace(obj.Name)
			}
			key = strings.TrimSpace(obj.Key)
		}

		if label == "" {
			continue
		}
		if key == "" {
			key = slug.Slugify(label)
		}
		structured = append(structured, models.StructuredTag{Key: key, Label: label})
	}
	return DedupeByKey(structured)
}

// DedupeByKey removes structured tags whose key was already seen, preserving
// first-seen order.
func DedupeByKey(tags []models.StructuredTag) []models.StructuredTag {
	seen := make(map[string]bool, len(tags))
	unique := make([]models.StructuredTag, 0, len(tags))
	for _, t := range tags {
		if seen[t.Key] {
			continue
		}
		seen[t.Key] = true
		unique = append(unique, t)
	}
	return unique
}

// NormalizeStructured cleans caller-supplied structured tags: trims labels,
// drops blank ones, derives missing keys, dedupes by key. Used by the admin
// layer for tag input that bypassed generation.
func NormalizeStructured(tags []models.StructuredTag) []models.StructuredTag {
	cleaned := make([]models.StructuredTag, 0, len(tags))
	for _, t := range tags {
		label := strings.TrimSpace(t.Label)
		if label == "" {
			continue
		}
		key := strings.TrimSpace(t.Key)
		if key == "" {
			key = slug.Slugify(label)
		}
		cleaned = append(cleaned, models.StructuredTag{Key: key, Label: label})
	}
	return DedupeByKey(cleaned)
}
