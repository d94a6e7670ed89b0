package normalize

import (
	"regexp"
	"strings"
)

var (
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
	nbspRegex    = regexp.MustCompile(`&nbsp;|&#160;|\x{00a0}`)

	// RE2's \s is ASCII-only; U+00A0 is matched explicitly.
	whitespaceRegex = regexp.MustCompile(`[\s\x{00a0}]+`)
)

// StripMarkup converts posting content to plain text: tags become spaces,
// &nbsp; and &amp; are decoded, and whitespace runs collapse to one space.
// A literal non-breaking space counts as whitespace. Other entities are left
// as-is.
func StripMarkup(content string) string {
	plain := htmlTagRegex.ReplaceAllString(content, " ")
	plain = nbspRegex.ReplaceAllString(plain, " ")
	plain = strings.ReplaceAll(plain, "&amp;", "&")
	plain = whitespaceRegex.ReplaceAllString(plain, " ")
	return strings.TrimSpace(plain)
}
