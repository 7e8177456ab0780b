package processor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/mailtl"
	"golang.org/x/net/html"
)

// noTranslateAttr marks an element whose subtree is left alone.
const noTranslateAttr = "data-no-translate"

// HTMLProcessor extracts the text nodes of an HTML body and writes
// replacements back.
type HTMLProcessor struct {
	ignoredTags map[string]bool
}

// NewHTMLProcessor creates a new HTML processor with default ignored tags.
func NewHTMLProcessor() *HTMLProcessor {
	return &HTMLProcessor{
		ignoredTags: mailtl.IgnoredTags,
	}
}

// NewHTMLProcessorWithIgnoredTags creates a new HTML processor with custom ignored tags.
func NewHTMLProcessorWithIgnoredTags(tags []string) *HTMLProcessor {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		ignored[strings.ToLower(strings.TrimSpace(tag))] = true
	}
	return &HTMLProcessor{
		ignoredTags: ignored,
	}
}

// parsedHTML holds the parsed document and the text nodes by ID.
type parsedHTML struct {
	doc   *goquery.Document
	nodes map[string]*html.Node
}

// Extract returns every non-blank text node under <body>, in document
// order. Comments, ignored tags and elements carrying data-no-translate are
// skipped. A partial template without <html>, <head> or <body> is handled
// as a fragment and written back byte for byte apart from its text; a
// document that has <html> or <head> but no <body> yields no nodes.
func (p *HTMLProcessor) Extract(content string) (any, []mailtl.TextNode, error) {
	switch classifyDocument(content) {
	case kindFragment:
		return p.extractFragment(content)
	case kindNoBody:
		return noBody(content), nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, nil, &mailtl.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	var nodes []mailtl.TextNode
	nodeMap := make(map[string]*html.Node)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.CommentNode:
			return
		case html.ElementNode:
			if p.skipElement(n) {
				return
			}
		case html.TextNode:
			trimmed := strings.TrimSpace(n.Data)
			if trimmed == "" {
				return
			}

			id := fmt.Sprintf("node-%d", len(nodes))
			node := mailtl.TextNode{
				ID:       id,
				Text:     trimmed,
				Raw:      n.Data,
				Context:  describeParent(n),
				Metadata: map[string]string{},
			}
			if n.Parent != nil {
				node.Metadata["parent_tag"] = n.Parent.Data
			}

			nodes = append(nodes, node)
			nodeMap[id] = n
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range doc.Find("body").Nodes {
		walk(n)
	}

	return &parsedHTML{doc: doc, nodes: nodeMap}, nodes, nil
}

// noBody is the parsed form of a document without a <body>. It is written
// back unchanged.
type noBody string

// Apply replaces the text of the nodes named in replacements, keeping each
// node's original leading and trailing whitespace, and serializes the document.
func (p *HTMLProcessor) Apply(parsed any, nodes []mailtl.TextNode, replacements map[string]string) (string, error) {
	switch v := parsed.(type) {
	case *parsedFragment:
		return p.applyFragment(v, nodes, replacements)
	case noBody:
		return string(v), nil
	}

	ph, ok := parsed.(*parsedHTML)
	if !ok {
		return "", &mailtl.ProcessorError{
			Message:     "invalid parsed content type",
			ContentType: "html",
		}
	}

	for _, node := range nodes {
		text, ok := replacements[node.ID]
		if !ok {
			continue
		}
		n, ok := ph.nodes[node.ID]
		if !ok {
			return "", &mailtl.ProcessorError{
				Message:     fmt.Sprintf("unknown text node %s", node.ID),
				ContentType: "html",
			}
		}
		n.Data = preserveWhitespace(n.Data, text)
	}

	out, err := ph.doc.Html()
	if err != nil {
		return "", &mailtl.ProcessorError{
			Message:     "failed to serialize HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	return out, nil
}

// ContentType returns "html".
func (p *HTMLProcessor) ContentType() string {
	return "html"
}

func (p *HTMLProcessor) skipElement(n *html.Node) bool {
	if p.ignoredTags[strings.ToLower(n.Data)] {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == noTranslateAttr {
			return true
		}
	}
	return false
}

// describeParent renders the enclosing element, e.g. `in <td class="footer">`.
func describeParent(n *html.Node) string {
	parent := n.Parent
	if parent == nil || parent.Type != html.ElementNode {
		return ""
	}
	return describeTag(parent.Data, parent.Attr)
}

func describeTag(name string, attrs []html.Attribute) string {
	var classAttr, idAttr string
	for _, attr := range attrs {
		switch attr.Key {
		case "class":
			classAttr = attr.Val
		case "id":
			idAttr = attr.Val
		}
	}

	switch {
	case classAttr != "":
		return fmt.Sprintf("in <%s class=%q>", name, classAttr)
	case idAttr != "":
		return fmt.Sprintf("in <%s id=%q>", name, idAttr)
	default:
		return fmt.Sprintf("in <%s>", name)
	}
}

// preserveWhitespace keeps the original leading/trailing whitespace around translated.
func preserveWhitespace(original, translated string) string {
	leading := original[:len(original)-len(strings.TrimLeftFunc(original, unicode.IsSpace))]
	trailing := original[len(strings.TrimRightFunc(original, unicode.IsSpace)):]
	if len(leading) == len(original) {
		return original
	}
	return leading + translated + trailing
}

// Verify HTMLProcessor implements ContentProcessor
var _ ContentProcessor = (*HTMLProcessor)(nil)
