package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unescapeSparqlLiteral reads back the value of a SPARQL string literal
// body, the way a conforming parser would.
func unescapeSparqlLiteral(t *testing.T, s string) string {
	t.Helper()
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		require.Less(t, i+1, len(s), "dangling backslash in literal")
		i++
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			t.Fatalf("unexpected escape sequence \\%c", s[i])
		}
	}
	return b.String()
}

func TestEscapeSparqlString_RoundTrip(t *testing.T) {
	inputs := []string{
		`plain text`,
		`back\slash`,
		`double"quote`,
		`single'quote`,
		"new\nline",
		"carriage\rreturn",
		"tab\tseparated",
		`all "of' them\ at` + "\n\r\t" + `once`,
		`"} . ?s ?p ?o . FILTER(true) #`, // literal break-out attempt
		``,
	}

	for _, input := range inputs {
		escaped := EscapeSparqlString(input)
		assert.Equal(t, input, unescapeSparqlLiteral(t, escaped), "input %q", input)
	}
}

func TestEscapeSparqlString_NoBreakout(t *testing.T) {
	escaped := EscapeSparqlString(`x". ?s ?p ?o . FILTER("`)
	// No unescaped double quote may survive.
	for i := 0; i < len(escaped); i++ {
		if escaped[i] == '"' {
			require.Greater(t, i, 0)
			assert.Equal(t, byte('\\'), escaped[i-1], "unescaped quote at %d in %q", i, escaped)
		}
	}
}

func TestEscapeSparqlRegex(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`a.b`, `a\.b`},
		{`a*b+c?`, `a\*b\+c\?`},
		{`[set](group){rep}`, `\[set\]\(group\)\{rep\}`},
		{`alt|anchor^end$`, `alt\|anchor\^end\$`},
		{`back\slash`, `back\\slash`},
		{`no specials here`, `no specials here`},
		{``, ``},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeSparqlRegex(tt.in), "input %q", tt.in)
	}
}

func TestEscapeSparqlRegex_DistinctFromStringEscaping(t *testing.T) {
	// Regex escaping leaves quotes alone; string escaping leaves dots alone.
	assert.Equal(t, `"`, EscapeSparqlRegex(`"`))
	assert.Equal(t, `.`, EscapeSparqlString(`.`))
}

func TestSanitizeSearchInput(t *testing.T) {
	assert.Equal(t, "hello", SanitizeSearchInput("  hello  ", 0))
	assert.Equal(t, "scriptalert(1)/script", SanitizeSearchInput("<script>alert(1)</script>", 0))
	assert.Equal(t, "ab", SanitizeSearchInput("abcdef", 2))

	// Default limit of 500 runes.
	long := strings.Repeat("x", 600)
	assert.Len(t, SanitizeSearchInput(long, 0), DefaultMaxSearchLen)

	// Truncation counts runes, not bytes.
	assert.Equal(t, "éé", SanitizeSearchInput("ééé", 2))
}
