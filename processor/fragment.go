package processor

import (
	"fmt"
	"io"
	"strings"

	"github.com/ZaguanLabs/mailtl"
	"golang.org/x/net/html"
)

// documentKind tells how a template is laid out.
type documentKind int

const (
	kindFragment documentKind = iota // no <html>, <head> or <body> tag
	kindDocument                     // has a <body> tag
	kindNoBody                       // has <html> or <head> but no <body>
)

func classifyDocument(content string) documentKind {
	kind := kindFragment
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return kind
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "body":
				return kindDocument
			case "html", "head":
				kind = kindNoBody
			}
		}
	}
}

// voidElements never have children, so they are not pushed on the open
// element stack.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// openElement is an entry of the fragment's open element stack.
type openElement struct {
	name    string
	context string
	skip    bool // ignored tag or data-no-translate, inherited by children
}

// parsedFragment keeps a partial template as its raw tokens. Only text
// tokens named in replacements are rewritten; every other byte is written
// back as read.
type parsedFragment struct {
	tokens []string
	texts  map[string]int // node ID -> index in tokens
	data   map[string]string
}

// extractFragment tokenizes a template that is not a full document. The
// HTML tree builder would wrap it in <html><body> and drop table parts
// found outside a <table>, so the tokens are kept instead.
func (p *HTMLProcessor) extractFragment(content string) (any, []mailtl.TextNode, error) {
	frag := &parsedFragment{
		texts: make(map[string]int),
		data:  make(map[string]string),
	}
	var nodes []mailtl.TextNode
	var stack []openElement

	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return nil, nil, &mailtl.ProcessorError{
					Message:     "failed to tokenize HTML",
					Cause:       err,
					ContentType: "html",
				}
			}
			break
		}

		raw := string(z.Raw())
		frag.tokens = append(frag.tokens, raw)

		switch tt {
		case html.StartTagToken:
			tok := z.Token()
			if voidElements[tok.Data] {
				continue
			}
			skip := p.skipTag(tok)
			if len(stack) > 0 && stack[len(stack)-1].skip {
				skip = true
			}
			stack = append(stack, openElement{
				name:    tok.Data,
				context: describeTag(tok.Data, tok.Attr),
				skip:    skip,
			})

		case html.EndTagToken:
			name, _ := z.TagName()
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].name == string(name) {
					stack = stack[:i]
					break
				}
			}

		case html.TextToken:
			var parent openElement
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			if parent.skip {
				continue
			}

			data := html.UnescapeString(raw)
			trimmed := strings.TrimSpace(data)
			if trimmed == "" {
				continue
			}

			id := fmt.Sprintf("node-%d", len(nodes))
			node := mailtl.TextNode{
				ID:       id,
				Text:     trimmed,
				Raw:      data,
				Context:  parent.context,
				Metadata: map[string]string{},
			}
			if parent.name != "" {
				node.Metadata["parent_tag"] = parent.name
			}

			nodes = append(nodes, node)
			frag.texts[id] = len(frag.tokens) - 1
			frag.data[id] = data
		}
	}

	return frag, nodes, nil
}

func (p *HTMLProcessor) applyFragment(frag *parsedFragment, nodes []mailtl.TextNode, replacements map[string]string) (string, error) {
	tokens := append([]string(nil), frag.tokens...)

	for _, node := range nodes {
		text, ok := replacements[node.ID]
		if !ok {
			continue
		}
		idx, ok := frag.texts[node.ID]
		if !ok {
			return "", &mailtl.ProcessorError{
				Message:     fmt.Sprintf("unknown text node %s", node.ID),
				ContentType: "html",
			}
		}
		tokens[idx] = escapeText(preserveWhitespace(frag.data[node.ID], text))
	}

	return strings.Join(tokens, ""), nil
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escapeText escapes the characters that would otherwise start markup or an
// entity in a text node.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func (p *HTMLProcessor) skipTag(tok html.Token) bool {
	if p.ignoredTags[tok.Data] {
		return true
	}
	for _, attr := range tok.Attr {
		if attr.Key == noTranslateAttr {
			return true
		}
	}
	return false
}
