package mailtl

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
)

// trailingPunctuation lists the marks held aside before a segment is sent
// to the provider. Only one trailing mark is protected: "..." loses just its
// last dot to the round trip and the provider sees "..".
const trailingPunctuation = ".!?;:,"

// Result is the outcome of translating one segment. It never carries an
// empty Text for non-empty input: when Err is set, Text is the original
// segment so the caller can use it unconditionally.
type Result struct {
	Text       string
	Translated bool // A translation was obtained (from the provider or the cache)
	Cached     bool // The translation came from the cache
	Err        error
}

// Failed reports whether the provider could not translate the segment.
func (r Result) Failed() bool {
	return r.Err != nil
}

// SegmentTranslator translates single segments, shielding the provider from
// surrounding whitespace and a trailing punctuation mark.
type SegmentTranslator struct {
	provider      Provider
	cache         TranslationCache
	sourceLang    string
	targetLang    string
	context       string
	excludedTerms []string
	glossary      map[string]string
	logger        *slog.Logger
}

// NewSegmentTranslator creates a SegmentTranslator using the same options as NewTranslator.
func NewSegmentTranslator(targetLang string, provider Provider, opts ...TranslatorOption) *SegmentTranslator {
	return NewTranslator(targetLang, provider, opts...).segments
}

// Translate translates one translatable segment. Whitespace-only segments
// and segments made only of punctuation come back unchanged without a
// provider call. Provider failures are logged and reported through
// Result.Err; the segment text is returned as-is.
func (s *SegmentTranslator) Translate(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Text: text}
	}

	clean, punct := splitTrailingPunct(text)
	if clean == "" {
		return Result{Text: text}
	}

	translated, cached, err := s.lookup(ctx, clean)
	if err != nil {
		s.logger.Warn("translation failed, keeping original text",
			"text", text,
			"error", err,
		)
		return Result{
			Text: text,
			Err:  &TranslationError{Message: "cannot translate", Text: clean, Cause: err},
		}
	}

	return Result{
		Text:       padLike(text, translated+punct),
		Translated: true,
		Cached:     cached,
	}
}

// lookup returns the translation of clean, consulting the cache first.
func (s *SegmentTranslator) lookup(ctx context.Context, clean string) (string, bool, error) {
	key := CacheKey(HashText(clean), s.targetLang)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached, true, nil
		}
	}

	if s.provider == nil {
		return "", false, ErrNoProvider
	}

	results, err := s.provider.Translate(ctx, TranslateRequest{
		Texts:         []string{clean},
		SourceLang:    s.sourceLang,
		TargetLang:    s.targetLang,
		ExcludedTerms: s.excludedTerms,
		Context:       s.context,
		Glossary:      s.glossary,
	})
	if err != nil {
		return "", false, err
	}
	if len(results) != 1 {
		return "", false, &CountMismatchError{Expected: 1, Got: len(results)}
	}

	translated := strings.TrimSpace(results[0])
	if translated == "" {
		return "", false, ErrEmptyTranslation
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, translated); err != nil {
			s.logger.Debug("cache write failed",
				"error", &CacheError{Message: "set " + key, Cause: err},
			)
		}
	}

	return translated, false, nil
}

// splitTrailingPunct trims text and holds aside one trailing punctuation mark.
func splitTrailingPunct(text string) (clean, punct string) {
	clean = strings.TrimRightFunc(text, unicode.IsSpace)
	if n := len(clean); n > 0 && strings.IndexByte(trailingPunctuation, clean[n-1]) >= 0 {
		punct = clean[n-1:]
		clean = clean[:n-1]
	}
	return strings.TrimSpace(clean), punct
}

// padLike surrounds translated with a single space on each side where
// original had one.
func padLike(original, translated string) string {
	if strings.HasPrefix(original, " ") {
		translated = " " + translated
	}
	if strings.HasSuffix(original, " ") {
		translated += " "
	}
	return translated
}
