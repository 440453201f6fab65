package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

// allowedTags is the allowlist of HTML elements retained by SanitizeHTML.
// Only a[href] keeps an attribute; event handlers and style attributes are
// stripped unconditionally.
var allowedTags = map[string]bool{
	"b": true, "i": true, "em": true, "strong": true,
	"a": true, "br": true, "p": true, "ul": true, "ol": true, "li": true,
}

// rawContentTags have text content that must be dropped along with the tag
// rather than unwrapped (script bodies are code, not prose).
var rawContentTags = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true,
	"embed": true, "noscript": true, "textarea": true, "title": true,
}

// SanitizeHTML filters s through a tag allowlist, keeping only
// b, i, em, strong, a[href], br, p, ul, ol, li. All other tags are removed;
// script/style bodies are removed entirely while other disallowed elements
// keep their text content. Attributes other than a safe href are dropped.
func SanitizeHTML(s string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(s))

	var b strings.Builder
	skipDepth := 0 // >0 while inside a raw-content element

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or malformed input; either way we emit what we have.
			return b.String()

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			b.WriteString(html.EscapeString(string(tokenizer.Text())))

		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			name := token.Data
			if rawContentTags[name] {
				if tt == html.StartTagToken {
					skipDepth++
				}
				continue
			}
			if skipDepth > 0 || !allowedTags[name] {
				continue
			}
			writeTag(&b, token, tt == html.SelfClosingTagToken)

		case html.EndTagToken:
			token := tokenizer.Token()
			name := token.Data
			if rawContentTags[name] {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if skipDepth > 0 || !allowedTags[name] {
				continue
			}
			b.WriteString("</")
			b.WriteString(name)
			b.WriteString(">")

		case html.CommentToken, html.DoctypeToken:
			// Dropped unconditionally.
		}
	}
}

// writeTag emits an allowed start tag, keeping only a safe href on anchors.
func writeTag(b *strings.Builder, token html.Token, selfClosing bool) {
	b.WriteString("<")
	b.WriteString(token.Data)

	if token.Data == "a" {
		for _, attr := range token.Attr {
			if attr.Key == "href" && isSafeHref(attr.Val) {
				b.WriteString(` href="`)
				b.WriteString(html.EscapeString(attr.Val))
				b.WriteString(`"`)
				break
			}
		}
	}

	if selfClosing {
		b.WriteString("/>")
		return
	}
	b.WriteString(">")
}

// isSafeHref rejects hrefs carrying a scheme that can execute code or leak
// data. Scheme-less (relative, fragment) hrefs are kept.
func isSafeHref(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	for _, scheme := range []string{"javascript:", "data:", "vbscript:", "file:"} {
		if strings.HasPrefix(lower, scheme) {
			return false
		}
	}
	return true
}
