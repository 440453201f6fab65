package prefix

// staticTable maps well-known namespaces to their conventional prefixes.
// Entries here never trigger cache reads or external lookups and take
// priority even over a stale cache entry.
var staticTable = map[string]string{
	"http://www.w3.org/1999/02/22-rdf-syntax-ns#": "rdf",
	"http://www.w3.org/2000/01/rdf-schema#":       "rdfs",
	"http://www.w3.org/2002/07/owl#":              "owl",
	"http://www.w3.org/2001/XMLSchema#":           "xsd",
	"http://www.w3.org/2004/02/skos/core#":        "skos",
	"http://www.w3.org/2008/05/skos-xl#":          "skosxl",
	"http://purl.org/dc/terms/":                   "dct",
	"http://purl.org/dc/elements/1.1/":            "dc",
	"http://xmlns.com/foaf/0.1/":                  "foaf",
	"http://schema.org/":                          "schema",
	"https://schema.org/":                         "schema",
	"http://www.w3.org/ns/shacl#":                 "sh",
	"http://www.w3.org/ns/prov#":                  "prov",
	"http://www.w3.org/ns/dcat#":                  "dcat",
	"http://rdfs.org/ns/void#":                    "void",
	"http://publications.europa.eu/ontology/euvoc#": "euvoc",
	"http://data.europa.eu/eli/ontology#":           "eli",
}

// KnownPrefix returns the conventional prefix for a namespace from the
// static table.
func KnownPrefix(namespace string) (string, bool) {
	p, ok := staticTable[namespace]
	return p, ok
}
