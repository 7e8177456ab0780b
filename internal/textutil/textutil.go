// Package textutil holds small text helpers for terminal output.
package textutil

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Truncate shortens s to at most max grapheme clusters, ending with "..."
// when cut. Thai vowel and tone marks combine with their base consonant,
// so cutting by bytes or runes would split characters.
func Truncate(s string, max int) string {
	if max <= 3 || uniseg.GraphemeClusterCount(s) <= max {
		return s
	}

	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for i := 0; i < max-3 && g.Next(); i++ {
		b.WriteString(g.Str())
	}
	b.WriteString("...")
	return b.String()
}

// OneLine collapses all whitespace runs in s to single spaces.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
