package provider

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy removes all markup. Translations are written into text
// nodes, so any tags a provider invents would end up escaped and visible.
var strictPolicy = bluemonday.StrictPolicy()

// sanitizeTranslation strips markup from provider output and undoes the
// entity escaping bluemonday applies, leaving plain text.
func sanitizeTranslation(text string) string {
	if !strings.ContainsAny(text, "<>&") {
		return text
	}
	return html.UnescapeString(strictPolicy.Sanitize(text))
}
