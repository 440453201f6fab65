package testutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EmptySelectJSON is a well-formed SELECT result with no rows.
const EmptySelectJSON = `{"head":{"vars":["s"]},"results":{"bindings":[]}}`

// AskJSON builds a SPARQL-JSON ASK result body.
func AskJSON(value bool) string {
	return fmt.Sprintf(`{"head":{},"boolean":%t}`, value)
}

// CountJSON builds a SELECT result with a single row binding the variable to
// an xsd:integer literal, the shape COUNT(*) queries produce.
func CountJSON(variable string, count int) string {
	return fmt.Sprintf(
		`{"head":{"vars":[%q]},"results":{"bindings":[{%q:{"type":"literal","value":"%d","datatype":"http://www.w3.org/2001/XMLSchema#integer"}}]}}`,
		variable, variable, count)
}

// SelectJSON builds a SELECT result body from rows of variable name to term.
// Terms are maps with "type"/"value" and optional "xml:lang"/"datatype" keys.
func SelectJSON(vars []string, rows []map[string]map[string]string) string {
	doc := map[string]any{
		"head":    map[string]any{"vars": vars},
		"results": map[string]any{"bindings": rows},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// URITerm builds a uri term for SelectJSON rows.
func URITerm(value string) map[string]string {
	return map[string]string{"type": "uri", "value": value}
}

// LiteralTerm builds a plain literal term for SelectJSON rows.
func LiteralTerm(value string) map[string]string {
	return map[string]string{"type": "literal", "value": value}
}

// LangLiteralTerm builds a language-tagged literal term for SelectJSON rows.
func LangLiteralTerm(value, lang string) map[string]string {
	return map[string]string{"type": "literal", "value": value, "xml:lang": lang}
}

// IntegerTerm builds an xsd:integer literal term for SelectJSON rows.
func IntegerTerm(n int) map[string]string {
	return map[string]string{
		"type":     "literal",
		"value":    fmt.Sprintf("%d", n),
		"datatype": "http://www.w3.org/2001/XMLSchema#integer",
	}
}

// GraphListJSON builds a SELECT result binding ?g to each graph URI in turn.
func GraphListJSON(graphs ...string) string {
	rows := make([]map[string]map[string]string, 0, len(graphs))
	for _, g := range graphs {
		rows = append(rows, map[string]map[string]string{"g": URITerm(g)})
	}
	return SelectJSON([]string{"g"}, rows)
}

// LanguageCountsJSON builds the result shape of a language aggregation
// query: one row per language with ?lang and ?count bindings.
func LanguageCountsJSON(counts map[string]int) string {
	rows := make([]map[string]map[string]string, 0, len(counts))
	for lang, n := range counts {
		rows = append(rows, map[string]map[string]string{
			"lang":  LiteralTerm(lang),
			"count": IntegerTerm(n),
		})
	}
	return SelectJSON([]string{"lang", "count"}, rows)
}

// AskXML builds a SPARQL-XML ASK result body.
func AskXML(value bool) string {
	return fmt.Sprintf(
		`<?xml version="1.0"?><sparql xmlns="http://www.w3.org/2005/sparql-results#"><head/><boolean>%t</boolean></sparql>`,
		value)
}

// SelectXML builds a minimal SPARQL-XML SELECT body with uri bindings for
// one variable.
func SelectXML(variable string, values ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><sparql xmlns="http://www.w3.org/2005/sparql-results#">`)
	fmt.Fprintf(&b, `<head><variable name=%q/></head><results>`, variable)
	for _, v := range values {
		fmt.Fprintf(&b, `<result><binding name=%q><uri>%s</uri></binding></result>`, variable, v)
	}
	b.WriteString(`</results></sparql>`)
	return b.String()
}
