package mailtl

import (
	"regexp"
	"strings"
)

var (
	repeatedSpaces = regexp.MustCompile(`  +`)
	trailingDash   = regexp.MustCompile(`\s*-\s*$`)
)

// Reassemble joins translated and opaque parts back into one string and
// cleans up artifacts left by translation: runs of spaces collapse to one,
// a dangling dash at the end is dropped and the result is trimmed.
func Reassemble(parts []string) string {
	return reassemble(parts, false)
}

// reassemble is Reassemble with the dash cleanup turned off when the text
// ends in an opaque segment, whose trailing dash belongs to it.
func reassemble(parts []string, opaqueTail bool) string {
	text := strings.Join(parts, "")
	text = repeatedSpaces.ReplaceAllString(text, " ")
	if !opaqueTail {
		text = trailingDash.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}
