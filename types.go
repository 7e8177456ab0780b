package mailtl

const (
	// DefaultSourceLang lets the provider detect the source language.
	DefaultSourceLang = "auto"
	// DefaultTargetLang is Thai.
	DefaultTargetLang = "th"
)

// TextNode represents a text leaf extracted from a document.
type TextNode struct {
	ID       string            // Position-based identifier ("node-0", "node-1", ...)
	Text     string            // Text content with surrounding whitespace trimmed
	Raw      string            // Text content exactly as found in the document
	Context  string            // Short description of the enclosing element
	Metadata map[string]string // Additional info (parent tag, ...)
}

// Segment is one piece of a text node. Concatenating the Text of all
// segments produced for a string reproduces that string exactly.
type Segment struct {
	Text      string
	Translate bool // false for placeholders, URLs and connectives
}

// SkipReason explains why a text node was left alone before translation.
type SkipReason string

const (
	SkipNone           SkipReason = ""
	SkipEmpty          SkipReason = "empty"
	SkipNotCandidate   SkipReason = "not-english"
	SkipPureToken      SkipReason = "pure-token"
	SkipNoTranslatable SkipReason = "no-translatable-segment"
)

// NodeResult is the outcome of running one text node through the pipeline.
type NodeResult struct {
	Original   string     // Trimmed input text
	Text       string     // Final text; equals Original unless Changed
	Segments   []Segment  // Nil when the node was skipped before segmentation
	Skip       SkipReason // Why the node was skipped, if it was
	Translated int        // Segments translated (including cache hits)
	Cached     int        // Segments served from the cache
	Failed     int        // Segments whose translation failed
	Changed    bool       // At least one segment translated and Text differs from Original
}

// ProcessedContent is the result of a translation operation.
type ProcessedContent struct {
	Content         string // Translated content, or the input verbatim when nothing changed
	Changed         bool   // Whether any text node was replaced
	TotalNodes      int    // Text nodes found in the document
	TranslatedCount int    // Segments translated (including cache hits)
	CachedCount     int    // Segments served from the cache
	FailedCount     int    // Segments left untranslated because the provider failed
	Diff            *Diff  // Per-node changes
}

// IgnoredTags contains HTML tags whose content is never prose.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}
