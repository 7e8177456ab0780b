package mailtl

import (
	"regexp"
	"strings"
)

// nonSpace matches a run of characters up to the next whitespace, counting
// Unicode separators such as NO-BREAK SPACE as whitespace.
const nonSpace = `[^\s\p{Z}\x{85}]+`

var (
	// opaquePattern matches, in priority order, a bracketed or bare
	// placeholder token, then a URL or www reference.
	opaquePattern = regexp.MustCompile(
		`\[?#` + wordChars + `(?:_` + wordChars + `)*#\]?` +
			`|https?://` + nonSpace +
			`|www\.` + nonSpace,
	)

	connectivePattern = regexp.MustCompile(`^[\s\p{Z},;:\-]+$`)
)

// SegmentText splits text into an ordered list of segments. Placeholder
// tokens and URLs are opaque; the text between them is translatable unless
// it is only whitespace and ",;:-" sitting between two opaque segments.
//
// Join(SegmentText(s)) == s for every s.
func SegmentText(text string) []Segment {
	var segments []Segment

	last := 0
	for _, loc := range opaquePattern.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segments = append(segments, Segment{Text: text[last:loc[0]], Translate: true})
		}
		segments = append(segments, Segment{Text: text[loc[0]:loc[1]]})
		last = loc[1]
	}
	if last < len(text) {
		segments = append(segments, Segment{Text: text[last:], Translate: true})
	}

	for i := 1; i < len(segments)-1; i++ {
		if !segments[i].Translate || segments[i-1].Translate || segments[i+1].Translate {
			continue
		}
		if connectivePattern.MatchString(segments[i].Text) {
			segments[i].Translate = false
		}
	}

	return segments
}

// Join concatenates the raw text of segments in order.
func Join(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// HasTranslatable reports whether any segment should be sent for translation.
func HasTranslatable(segments []Segment) bool {
	for _, s := range segments {
		if s.needsTranslation() {
			return true
		}
	}
	return false
}

func (s Segment) needsTranslation() bool {
	return s.Translate && strings.TrimSpace(s.Text) != ""
}
