// Package html provides an event-stream HTML tokenizer built on
// golang.org/x/net/html. It drives a caller-supplied sink with URL, image,
// meta, title, and content events while maintaining a tag stack, so each
// worker variant can accumulate exactly the fields it indexes.
package html

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/ossearch/ossearch"
)

// Compile-time interface verification.
var _ ossearch.Tokenizer = (*Tokenizer)(nil)

// disallowedTags are tags whose character data is never indexable content.
// The anchor tag is included because its text is link text, delivered
// through the URL event's surroundings rather than the content stream.
var disallowedTags = map[string]bool{
	// Title is extracted separately and used for ranking.
	"title": true,

	// Links.
	"a": true,

	// Form tags.
	"input": true, "textarea": true, "button": true, "select": true,
	"optgroup": true, "option": true, "fieldset": true, "output": true,
	"keygen": true, "datalist": true,

	// Frame tags.
	"frame": true, "frameset": true, "noframes": true, "iframe": true,

	// Image tags.
	"img": true, "map": true, "area": true, "canvas": true,
	"figcaption": true, "figure": true,

	// Playable media tags.
	"audio": true, "source": true, "track": true, "video": true,

	// Style and semantic tags.
	"style": true, "link": true,

	// Meta info.
	"meta": true, "base": true,

	// Programming tags.
	"script": true, "noscript": true, "applet": true, "embed": true,
	"object": true, "param": true,
}

// voidTags never contain character data and are not pushed onto the tag
// stack, so text following them is attributed to their parent.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Tokenizer streams HTML byte buffers into ossearch.TokenSink events.
// The zero value is ready to use; a Tokenizer carries no per-parse state
// and may be shared, though each worker owns its own by convention.
type Tokenizer struct{}

// NewTokenizer creates a new Tokenizer.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Tokenize parses data and emits events to sink. Undecodable bytes abort
// the document with EINVALID; malformed markup is recovered best-effort and
// never produces an error.
func (t *Tokenizer) Tokenize(data []byte, sink ossearch.TokenSink) error {
	if !utf8.Valid(data) {
		return ossearch.Errorf(ossearch.EINVALID, "page data is not valid UTF-8")
	}

	z := html.NewTokenizer(bytes.NewReader(data))
	var stack []string

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return fmt.Errorf("tokenize: %w", err)
			}
			return nil

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			emitTagEvents(tok, sink)
			if tok.Type == html.StartTagToken && !voidTags[tok.Data] {
				stack = append(stack, tok.Data)
			}

		case html.EndTagToken:
			tok := z.Token()
			stack = popTag(stack, tok.Data)

		case html.TextToken:
			if len(stack) == 0 {
				continue
			}
			text := string(z.Text())
			innermost := stack[len(stack)-1]
			if innermost == "title" {
				sink.FoundTitle(text)
			}
			if !disallowedTags[innermost] {
				sink.FoundContent(text)
			}
		}
	}
}

// emitTagEvents fires the attribute-derived events for one tag.
func emitTagEvents(tok html.Token, sink ossearch.TokenSink) {
	switch tok.Data {
	case "a":
		if href, ok := attr(tok, "href"); ok {
			sink.FoundURL(href)
		}
	case "img":
		if src, ok := attr(tok, "src"); ok {
			sink.FoundImage(src)
		}
	case "meta":
		name, hasName := attr(tok, "name")
		content, hasContent := attr(tok, "content")
		if hasName && hasContent {
			sink.FoundMetaPair(name, content)
		}
	}
}

// popTag removes the innermost occurrence of tag from the stack,
// discarding anything opened above it. Unmatched end tags are ignored.
func popTag(stack []string, tag string) []string {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == tag {
			return stack[:i]
		}
	}
	return stack
}

func attr(tok html.Token, key string) (string, bool) {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
