package ossearch

// TokenSink receives the events emitted while tokenizing one HTML document.
// Each worker variant supplies its own sink; the tokenizer never retains a
// sink across documents.
type TokenSink interface {
	// FoundURL is called with the raw href of every <a> element.
	FoundURL(raw string)

	// FoundImage is called with the raw src of every <img> element.
	FoundImage(src string)

	// FoundMetaPair is called for every <meta> element carrying both a
	// name and a content attribute.
	FoundMetaPair(name, content string)

	// FoundTitle is called with character data whose innermost open tag is
	// <title>.
	FoundTitle(text string)

	// FoundContent is called with character data that is indexable: the
	// innermost open tag is not in the disallowed set.
	FoundContent(text string)
}

// Tokenizer streams an HTML byte buffer into TokenSink events while
// maintaining a tag stack. Malformed HTML is recovered from best-effort;
// undecodable bytes are fatal to the document, not to the caller.
type Tokenizer interface {
	Tokenize(data []byte, sink TokenSink) error
}
