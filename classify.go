package mailtl

import (
	"regexp"
	"strings"
)

// wordChars matches one or more Unicode word characters. Marks are included
// so Thai names with vowel and tone marks stay whole.
const wordChars = `[\p{L}\p{M}\p{N}_]+`

var (
	latinLetter = regexp.MustCompile(`[a-zA-Z]`)

	// pureToken matches a whole string that is a single bare placeholder.
	pureToken = regexp.MustCompile(`^#` + wordChars + `(?:_` + wordChars + `)*#$`)
)

// Thai Unicode block.
const (
	thaiFirst = '\u0E00'
	thaiLast  = '\u0E7F'
)

// IsCandidate reports whether text looks like untranslated English: it has
// at least one Latin letter and no Thai characters.
func IsCandidate(text string) bool {
	return latinLetter.MatchString(text) && !ContainsThai(text)
}

// ContainsThai reports whether text has any rune in the Thai block.
func ContainsThai(text string) bool {
	for _, r := range text {
		if r >= thaiFirst && r <= thaiLast {
			return true
		}
	}
	return false
}

// IsPureToken reports whether the trimmed text is exactly one placeholder
// token such as "#USER_NAME#". Such nodes are template variables, not prose.
func IsPureToken(text string) bool {
	return pureToken.MatchString(strings.TrimSpace(text))
}
