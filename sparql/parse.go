package sparql

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// ParseResult parses a response body as SPARQL results. SPARQL-JSON is
// tried first and always takes priority; SPARQL-XML is a fallback for
// endpoints that declare JSON but ship XML. Real-world endpoints are not
// format-compliant, so this dual path must not regress.
func ParseResult(data []byte) (*Result, error) {
	result, jsonErr := parseJSON(data)
	if jsonErr == nil {
		return result, nil
	}

	result, xmlErr := parseXML(data)
	if xmlErr == nil {
		return result, nil
	}

	return nil, fmt.Errorf("not SPARQL-JSON (%v) and not SPARQL-XML (%v)", jsonErr, xmlErr)
}

// parseJSON parses the SPARQL 1.1 Query Results JSON Format.
func parseJSON(data []byte) (*Result, error) {
	var result Result
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&result); err != nil {
		return nil, err
	}

	// A syntactically valid JSON document still has to be shaped like a
	// SPARQL result: either an ASK boolean or a results object.
	if result.Boolean == nil && result.Results == nil {
		return nil, fmt.Errorf("JSON document is not SPARQL-result shaped")
	}

	if result.Results != nil {
		for _, binding := range result.Results.Bindings {
			for name, term := range binding {
				if err := term.Validate(); err != nil {
					return nil, fmt.Errorf("binding %q: %w", name, err)
				}
			}
		}
	}

	return &result, nil
}

// xmlDocument mirrors the SPARQL Query Results XML Format: <boolean> for
// ASK, <results>/<result>/<binding> with child <uri>|<literal>|<bnode> for
// SELECT, with xml:lang/datatype attributes on <literal>.
type xmlDocument struct {
	XMLName xml.Name `xml:"sparql"`
	Head    struct {
		Variables []struct {
			Name string `xml:"name,attr"`
		} `xml:"variable"`
	} `xml:"head"`
	Boolean *string `xml:"boolean"`
	Results *struct {
		Results []xmlRow `xml:"result"`
	} `xml:"results"`
}

type xmlRow struct {
	Bindings []xmlBinding `xml:"binding"`
}

type xmlBinding struct {
	Name    string      `xml:"name,attr"`
	URI     *string     `xml:"uri"`
	BNode   *string     `xml:"bnode"`
	Literal *xmlLiteral `xml:"literal"`
}

type xmlLiteral struct {
	Value    string `xml:",chardata"`
	Lang     string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
	Datatype string `xml:"datatype,attr"`
}

// parseXML parses the SPARQL Query Results XML Format.
func parseXML(data []byte) (*Result, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if doc.Boolean == nil && doc.Results == nil {
		return nil, fmt.Errorf("XML document is not SPARQL-result shaped")
	}

	result := &Result{}
	for _, v := range doc.Head.Variables {
		result.Head.Vars = append(result.Head.Vars, v.Name)
	}

	if doc.Boolean != nil {
		value, err := strconv.ParseBool(strings.TrimSpace(*doc.Boolean))
		if err != nil {
			return nil, fmt.Errorf("invalid <boolean> value %q", *doc.Boolean)
		}
		result.Boolean = &value
		return result, nil
	}

	rs := &ResultSet{Bindings: make([]Binding, 0, len(doc.Results.Results))}
	for _, row := range doc.Results.Results {
		binding := make(Binding, len(row.Bindings))
		for _, b := range row.Bindings {
			term, err := xmlBindingTerm(b)
			if err != nil {
				return nil, err
			}
			binding[b.Name] = term
		}
		rs.Bindings = append(rs.Bindings, binding)
	}
	result.Results = rs
	return result, nil
}

// xmlBindingTerm converts one <binding> child element to a Term.
func xmlBindingTerm(b xmlBinding) (Term, error) {
	switch {
	case b.URI != nil:
		return Term{Type: TermURI, Value: *b.URI}, nil
	case b.BNode != nil:
		return Term{Type: TermBNode, Value: *b.BNode}, nil
	case b.Literal != nil:
		term := Term{
			Type:     TermLiteral,
			Value:    b.Literal.Value,
			Lang:     b.Literal.Lang,
			Datatype: b.Literal.Datatype,
		}
		if err := term.Validate(); err != nil {
			return Term{}, fmt.Errorf("binding %q: %w", b.Name, err)
		}
		return term, nil
	default:
		return Term{}, fmt.Errorf("binding %q has no term element", b.Name)
	}
}
