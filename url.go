package ossearch

import (
	"net/url"
	"regexp"
	"strings"
)

// quoteSafe is the reserved set preserved during percent-encoding, matching
// the encoding applied to URLs before resolution.
const quoteSafe = "%/:=&?~#+!$,;'@()*[]"

// schemeRE matches http and https schemes. The prefix match (rather than an
// anchored alternation) is deliberate: it reproduces the resolution
// behavior of the reference crawler.
var schemeRE = regexp.MustCompile(`^(http|https)`)

// validateRE is the URL shape check. The character class is kept verbatim
// from the reference implementation for bit-compatibility even though an
// alternation was likely intended; the looser semantics only widen what the
// scheme dispatch in Canonicalize already constrains.
var validateRE = regexp.MustCompile(`^[http|https]+://[^.]+\.[A-Za-z]+`)

// allowedExtensions is the closed set of crawlable path extensions. The
// "actionpl" entry is a known artifact of the reference list ("action"
// directly concatenated with "pl") and is preserved verbatim.
var allowedExtensions = []string{
	"asp", "aspx", "axd", "asx", "asmx", "ashx", "cfm", "yaws",
	"html", "htm", "xhtml", "jhtml", "jsp", "jspx", "wss", "do",
	"actionpl", "php", "php4", "php3", "phtml", "py", "rb", "rhtml",
	"xml", "rss", "cgi",
}

// Canonicalize resolves a raw href against the page it was found on and
// returns the canonical absolute form: percent-encoded, fragment stripped,
// trailing slashes trimmed. It returns "" for javascript: links and
// unresolvable input.
func Canonicalize(raw, currentPage string) string {
	if raw == "" || strings.HasPrefix(raw, "javascript:") {
		return ""
	}

	raw = quote(raw)
	currentPage = quote(currentPage)

	splitRaw, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	splitPage, err := url.Parse(currentPage)
	if err != nil {
		return ""
	}

	var result string
	switch {
	case schemeRE.MatchString(splitRaw.Scheme):
		result = raw
	case strings.HasPrefix(raw, "//"):
		result = splitPage.Scheme + ":" + raw
	case strings.HasPrefix(raw, "/"):
		result = splitPage.Scheme + "://" + splitPage.Host + raw
	default:
		result = currentPage + "/" + raw
	}

	if i := strings.Index(result, "#"); i != -1 {
		result = result[:i]
	}
	for strings.HasSuffix(result, "/") {
		result = result[:len(result)-1]
	}
	return result
}

// ValidateURL reports whether a URL has an http/https scheme and a host
// containing a dot followed by alphabetic characters.
func ValidateURL(rawURL string) bool {
	return validateRE.MatchString(rawURL)
}

// AllowedExtension reports whether a URL path is crawlable. Paths whose last
// segment carries no extension are always allowed; otherwise the extension
// must be in the allowed set. The check is case-sensitive: extensions are
// lowercase by convention.
func AllowedExtension(path string) bool {
	segment := path
	if i := strings.LastIndex(path, "/"); i != -1 {
		segment = path[i+1:]
	}
	if !strings.Contains(segment, ".") {
		return true
	}
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(segment, "."+ext) {
			return true
		}
	}
	return false
}

// quote percent-encodes s, preserving unreserved characters and the
// reserved set in quoteSafe.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || strings.IndexByte(quoteSafe, c) != -1 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

func isUnreserved(c byte) bool {
	return 'a' <= c && c <= 'z' ||
		'A' <= c && c <= 'Z' ||
		'0' <= c && c <= '9' ||
		c == '_' || c == '.' || c == '-'
}
