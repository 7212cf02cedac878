package metadata

import (
	"regexp"
	"strings"
)

var assetCountPattern = regexp.MustCompile(`(?i)\([0-9]+ assets\)`)

// SanitizeTag strips "(<n> assets)" annotations and surrounding whitespace
// from a folder name or tag file entry. Removal repeats until no annotation
// is left so that the result is stable under a second call.
func SanitizeTag(raw string) string {
	s := raw
	for {
		next := assetCountPattern.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}
	return strings.TrimSpace(s)
}
