package detect

import (
	"fmt"
	"strings"
)

// Probe queries. Each is deliberately small and read-only; stores that
// cannot answer one of them efficiently get a cheaper fallback or a sentinel
// result, never an aborted analysis.

const countGraphsQuery = `SELECT (COUNT(DISTINCT ?g) AS ?count)
WHERE { GRAPH ?g { ?s ?p ?o } }`

const askGraphsQuery = `ASK { GRAPH ?g { ?s ?p ?o } }`

const skosGraphsQuery = `PREFIX skos: <http://www.w3.org/2004/02/skos/core#>
SELECT DISTINCT ?g
WHERE { GRAPH ?g { ?concept a skos:Concept } }`

const duplicatesQuery = `ASK {
  GRAPH ?g1 { ?s ?p ?o }
  GRAPH ?g2 { ?s ?p ?o }
  FILTER(?g1 != ?g2)
}`

// languageBody counts label language tags. Empty tags are excluded in the
// query itself so untagged literals never show up as a pseudo-language.
const languageBody = `?s skos:prefLabel|skos:altLabel|rdfs:label ?label .
  BIND(LANG(?label) AS ?lang)
  FILTER(?lang != "")`

const languagePrologue = `PREFIX skos: <http://www.w3.org/2004/02/skos/core#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
`

// languagesQuery aggregates label languages with no graph scoping.
func languagesQuery() string {
	return fmt.Sprintf(`%sSELECT ?lang (COUNT(?label) AS ?count)
WHERE {
  %s
}
GROUP BY ?lang`, languagePrologue, languageBody)
}

// languagesInGraphQuery scopes the aggregation to one named graph.
func languagesInGraphQuery(graph string) string {
	return fmt.Sprintf(`%sSELECT ?lang (COUNT(?label) AS ?count)
WHERE {
  GRAPH <%s> {
    %s
  }
}
GROUP BY ?lang`, languagePrologue, graph, languageBody)
}

// languagesInGraphsQuery scopes the aggregation to an explicit set of graphs
// via a VALUES clause, one chunk of a batched detection run.
func languagesInGraphsQuery(graphs []string) string {
	var values strings.Builder
	for i, g := range graphs {
		if i > 0 {
			values.WriteByte(' ')
		}
		fmt.Fprintf(&values, "<%s>", g)
	}
	return fmt.Sprintf(`%sSELECT ?lang (COUNT(?label) AS ?count)
WHERE {
  VALUES ?g { %s }
  GRAPH ?g {
    %s
  }
}
GROUP BY ?lang`, languagePrologue, values.String(), languageBody)
}
