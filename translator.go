package mailtl

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Translator is the main translation engine.
type Translator struct {
	targetLang    string
	sourceLang    string
	provider      Provider
	cache         TranslationCache
	excludedTerms []string
	context       string
	glossary      map[string]string
	processors    map[string]ContentProcessor
	concurrency   int
	setHTMLLang   bool
	logger        *slog.Logger
	segments      *SegmentTranslator
}

// Provider is the interface for translation backends.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) ([]string, error)
}

// TranslateRequest contains the parameters for a translation request.
type TranslateRequest struct {
	Texts         []string
	SourceLang    string // "auto" lets the provider detect it
	TargetLang    string
	ExcludedTerms []string
	Context       string
	Glossary      map[string]string
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}

// ContentProcessor extracts text nodes from a document and writes
// replacements back into it.
type ContentProcessor interface {
	Extract(content string) (any, []TextNode, error)
	// Apply replaces the text of the nodes whose IDs appear in replacements
	// and serializes the document.
	Apply(parsed any, nodes []TextNode, replacements map[string]string) (string, error)
	ContentType() string
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithSourceLang sets the source language.
func WithSourceLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.sourceLang = lang
	}
}

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithExcludedTerms sets terms that should not be translated.
func WithExcludedTerms(terms []string) TranslatorOption {
	return func(t *Translator) {
		t.excludedTerms = terms
	}
}

// WithContext sets the global translation context passed to the provider.
func WithContext(ctx string) TranslatorOption {
	return func(t *Translator) {
		t.context = ctx
	}
}

// WithGlossary sets preferred translations for specific phrases.
func WithGlossary(glossary map[string]string) TranslatorOption {
	return func(t *Translator) {
		t.glossary = glossary
	}
}

// WithProcessor registers a content processor.
func WithProcessor(processor ContentProcessor) TranslatorOption {
	return func(t *Translator) {
		t.processors[processor.ContentType()] = processor
	}
}

// WithConcurrency sets how many text nodes of one document may be
// translated at the same time. Values below 2 mean sequential.
func WithConcurrency(n int) TranslatorOption {
	return func(t *Translator) {
		t.concurrency = n
	}
}

// WithHTMLLang makes ProcessHTML set the lang attribute of <html> on
// documents it changed.
func WithHTMLLang(enabled bool) TranslatorOption {
	return func(t *Translator) {
		t.setHTMLLang = enabled
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) TranslatorOption {
	return func(t *Translator) {
		t.logger = logger
	}
}

// NewTranslator creates a new Translator with the given target language and provider.
func NewTranslator(targetLang string, provider Provider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		targetLang:  targetLang,
		sourceLang:  DefaultSourceLang,
		provider:    provider,
		processors:  make(map[string]ContentProcessor),
		concurrency: 1,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	t.segments = &SegmentTranslator{
		provider:      t.provider,
		cache:         t.cache,
		sourceLang:    t.sourceLang,
		targetLang:    t.targetLang,
		context:       t.context,
		excludedTerms: t.excludedTerms,
		glossary:      t.glossary,
		logger:        t.logger,
	}

	return t
}

// Analyze classifies and segments one text node without translating it.
func (t *Translator) Analyze(text string) NodeResult {
	original := strings.TrimSpace(text)
	res := NodeResult{Original: original, Text: original}

	switch {
	case original == "":
		res.Skip = SkipEmpty
		return res
	case !IsCandidate(original):
		res.Skip = SkipNotCandidate
		return res
	case IsPureToken(original):
		res.Skip = SkipPureToken
		return res
	}

	res.Segments = SegmentText(original)
	if !HasTranslatable(res.Segments) {
		res.Skip = SkipNoTranslatable
	}
	return res
}

// TranslateText runs one text node through the pipeline: classify, segment,
// translate the translatable segments and reassemble. The node is reported
// as changed only when at least one segment was translated.
func (t *Translator) TranslateText(ctx context.Context, text string) NodeResult {
	res := t.Analyze(text)
	if res.Skip != SkipNone {
		return res
	}

	parts := make([]string, len(res.Segments))
	for i, seg := range res.Segments {
		if !seg.needsTranslation() {
			parts[i] = seg.Text
			continue
		}

		r := t.segments.Translate(ctx, seg.Text)
		parts[i] = r.Text
		switch {
		case r.Failed():
			res.Failed++
		case r.Translated:
			res.Translated++
			if r.Cached {
				res.Cached++
			}
		}
	}

	if res.Translated == 0 {
		return res
	}

	last := res.Segments[len(res.Segments)-1]
	res.Text = reassemble(parts, !last.Translate)
	res.Changed = res.Text != res.Original
	return res
}

// Process translates content of the specified type.
func (t *Translator) Process(ctx context.Context, content string, contentType string) (*ProcessedContent, error) {
	processor, ok := t.processors[contentType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: contentType,
		}
	}

	parsed, nodes, err := processor.Extract(content)
	if err != nil {
		return nil, err
	}

	out := &ProcessedContent{
		Content:    content,
		TotalNodes: len(nodes),
		Diff:       &Diff{},
	}
	if len(nodes) == 0 {
		return out, nil
	}

	results := t.translateNodes(ctx, nodes)

	replacements := make(map[string]string)
	for i, node := range nodes {
		res := results[i]
		out.TranslatedCount += res.Translated
		out.CachedCount += res.Cached
		out.FailedCount += res.Failed
		out.Diff.record(node, res)

		if !res.Changed {
			continue
		}
		replacements[node.ID] = res.Text
		t.logger.Info("translated text node",
			"node", node.ID,
			"original", res.Original,
			"translated", res.Text,
		)
	}

	if len(replacements) == 0 {
		return out, nil
	}

	result, err := processor.Apply(parsed, nodes, replacements)
	if err != nil {
		return nil, err
	}

	if contentType == "html" && t.setHTMLLang {
		result = t.setHTMLAttributes(result)
	}

	out.Content = result
	out.Changed = true
	return out, nil
}

// ProcessHTML is a convenience method for processing HTML content.
func (t *Translator) ProcessHTML(ctx context.Context, html string) (*ProcessedContent, error) {
	return t.Process(ctx, html, "html")
}

// AnalyzeHTML extracts the text nodes of an HTML document and analyzes each
// one. No provider calls are made.
func (t *Translator) AnalyzeHTML(html string) ([]TextNode, []NodeResult, error) {
	processor, ok := t.processors["html"]
	if !ok {
		return nil, nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: "html",
		}
	}

	_, nodes, err := processor.Extract(html)
	if err != nil {
		return nil, nil, err
	}

	results := make([]NodeResult, len(nodes))
	for i, node := range nodes {
		results[i] = t.Analyze(node.Text)
	}
	return nodes, results, nil
}

// setHTMLAttributes sets the lang attribute on the <html> tag. Content
// without an <html> tag is a partial template and is returned as is.
func (t *Translator) setHTMLAttributes(content string) string {
	if !hasHTMLTag(content) {
		return content
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}
	doc.Find("html").SetAttr("lang", ToHTMLLang(t.targetLang))

	result, err := doc.Html()
	if err != nil {
		return content
	}

	return result
}

func hasHTMLTag(content string) bool {
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "html" {
				return true
			}
		}
	}
}

// TargetLang returns the target language.
func (t *Translator) TargetLang() string {
	return t.targetLang
}

// SourceLang returns the source language.
func (t *Translator) SourceLang() string {
	return t.sourceLang
}
