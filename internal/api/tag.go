package api

import "strings"

const (
	tagMinLen = 3
	tagMaxLen = 15
)

// ValidateTag reports whether tag looks like a Clash Royale player
// tag: optionally prefixed with '#', 3-15 characters, uppercase
// letters and digits only.
func ValidateTag(tag string) bool {
	clean := strings.TrimPrefix(tag, "#")
	if len(clean) < tagMinLen || len(clean) > tagMaxLen {
		return false
	}
	for _, r := range clean {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}

// NormalizeTag upper-cases the tag and guarantees the '#' prefix, the
// form the API itself uses in battle log entries.
func NormalizeTag(tag string) string {
	clean := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	return "#" + clean
}

// EncodeTag prepares a tag for use in a URL path ('#' becomes '%23').
func EncodeTag(tag string) string {
	return "%23" + strings.TrimPrefix(tag, "#")
}
