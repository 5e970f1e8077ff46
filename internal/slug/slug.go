package slug

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Slugify converts a tag label into its stable lookup key: lowercase, runs of
// non-alphanumeric characters collapsed to single hyphens, outer hyphens
// trimmed. Labels with no alphanumeric content fall back to a fixed 8-char
// hash token so the key is never empty and stays stable for the same label.
func Slugify(label string) string {
	lower := strings.ToLower(label)

	var b strings.Builder
	b.Grow(len(lower))
	pendingHyphen := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		} else {
			pendingHyphen = true
		}
	}

	key := b.String()
	if key == "" {
		sum := md5.Sum([]byte(label))
		return hex.EncodeToString(sum[:])[:8]
	}
	return key
}
