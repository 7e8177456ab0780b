package mailtl

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// LanguageNames maps base language codes to human-readable names for provider prompts.
var LanguageNames = map[string]string{
	"th": "Thai",
	"en": "English",
	"lo": "Lao",
	"my": "Burmese",
	"km": "Khmer",
	"vi": "Vietnamese",
	"ms": "Malay",
	"id": "Indonesian",
	"zh": "Chinese",
	"ja": "Japanese",
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(langCode string) string {
	if name, ok := LanguageNames[BaseLang(langCode)]; ok {
		return name
	}
	return langCode
}

// NormalizeLocale validates a language code and returns it in BCP 47 form
// (e.g., "th_TH" → "th-TH"). "auto" is accepted as is.
func NormalizeLocale(langCode string) (string, error) {
	if langCode == DefaultSourceLang {
		return langCode, nil
	}
	tag, err := language.Parse(strings.ReplaceAll(langCode, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", langCode, err)
	}
	return tag.String(), nil
}

// BaseLang extracts the base language code (e.g., "th" from "th_TH").
func BaseLang(langCode string) string {
	tag, err := language.Parse(strings.ReplaceAll(langCode, "_", "-"))
	if err != nil {
		return strings.ToLower(strings.Split(strings.ReplaceAll(langCode, "-", "_"), "_")[0])
	}
	base, _ := tag.Base()
	return base.String()
}

// ToHTMLLang converts a locale code to HTML lang attribute format (e.g., "th_TH" → "th-TH").
func ToHTMLLang(langCode string) string {
	return strings.ReplaceAll(langCode, "_", "-")
}
