package mailtl

import (
	"errors"
	"fmt"
)

// ErrNoProvider is returned when a translation is attempted without a provider.
var ErrNoProvider = errors.New("no translation provider configured")

// ErrEmptyTranslation is returned when a provider answers with blank text
// for non-blank input.
var ErrEmptyTranslation = errors.New("provider returned an empty translation")

// TranslationError records a segment that could not be translated.
// The segment is kept untranslated; the error is only reported.
type TranslationError struct {
	Message string
	Text    string // The segment that was sent for translation
	Cause   error
}

func (e *TranslationError) Error() string {
	msg := e.Message
	if e.Text != "" {
		msg = fmt.Sprintf("%s %q", e.Message, e.Text)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates a translation provider failure (API error, rate limit, quota, etc.).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ProcessorError indicates a content processing failure (parse error, etc.).
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string // The type of content that failed to process
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.ContentType, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.ContentType, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}

// FileError is a read or write failure scoped to a single template file.
type FileError struct {
	Path  string
	Op    string // "read" or "write"
	Cause error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Cause)
}

func (e *FileError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates the provider returned a different number of translations than expected.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}
