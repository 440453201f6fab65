// Package sanitize guards untrusted strings before they are embedded in
// SPARQL query text, rendered as UI output, or followed as links. It also
// provides session-scoped credential storage keyed by endpoint id.
//
// All escape and validation functions are pure string functions with no I/O.
package sanitize

import "strings"

// sparqlStringReplacer escapes characters that could break out of a SPARQL
// string literal and inject triple patterns or filters. Backslash first.
var sparqlStringReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// EscapeSparqlString escapes s for safe embedding inside a SPARQL string
// literal. Reading the literal back yields the original input.
func EscapeSparqlString(s string) string {
	return sparqlStringReplacer.Replace(s)
}

// regexMetacharacters are the characters with special meaning in SPARQL
// REGEX patterns (XPath/XQuery regular expressions).
const regexMetacharacters = `.*?[](){}|^$+\`

// EscapeSparqlRegex escapes regex metacharacters so user text matches
// literally inside a REGEX(...) filter. This is distinct from string
// escaping: the goal is literal-text matching, not accidentally enabling
// user-authored patterns in non-regex search modes. Callers embedding the
// result in a string literal still apply EscapeSparqlString afterwards.
func EscapeSparqlRegex(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 128 && strings.ContainsRune(regexMetacharacters, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DefaultMaxSearchLen is the truncation limit applied by SanitizeSearchInput
// when the caller passes a non-positive maxLen.
const DefaultMaxSearchLen = 500

// SanitizeSearchInput trims s, truncates it to maxLen runes (500 when
// maxLen <= 0), and strips angle brackets as a defense against markup
// injection in contexts that might render search text unescaped.
func SanitizeSearchInput(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxSearchLen
	}
	s = strings.TrimSpace(s)
	if runes := []rune(s); len(runes) > maxLen {
		s = string(runes[:maxLen])
	}
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	return s
}
