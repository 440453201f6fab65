// Package sparql executes queries against remote SPARQL HTTP endpoints.
//
// The Client speaks the SPARQL 1.1 Protocol over HTTP POST, negotiates
// authentication from the endpoint's auth configuration, retries transient
// failures, and parses responses as SPARQL-JSON with a SPARQL-XML fallback
// for endpoints that lie about their content type. All failures surface as
// classified errors from the errors package; callers never see raw
// transport exceptions.
package sparql

import (
	"fmt"
	"sync/atomic"
	"time"
)

// AuthKind selects how requests to an endpoint are authenticated.
type AuthKind string

const (
	// AuthNone sends no Authorization header at all.
	AuthNone AuthKind = "none"
	// AuthBasic sends Authorization: Basic base64(user:pass).
	AuthBasic AuthKind = "basic"
	// AuthBearer sends Authorization: Bearer <token>.
	AuthBearer AuthKind = "bearer"
	// AuthAPIKey sends the key in a configurable header (default X-API-Key).
	AuthAPIKey AuthKind = "apiKey"
)

// DefaultAPIKeyHeader is used for AuthAPIKey when no header name is set.
const DefaultAPIKeyHeader = "X-API-Key"

// AuthConfig carries the auth kind and call-time credentials for an
// endpoint. Credentials are resolved at call time (typically from the
// session credential store) and must never be written to durable storage.
type AuthConfig struct {
	Kind       AuthKind
	Username   string
	Password   string
	Token      string
	APIKey     string
	HeaderName string // AuthAPIKey only; empty means DefaultAPIKeyHeader
}

// EndpointStatus tracks the most recent interaction outcome with an
// endpoint. Transitions are last-write-wins; the UI reconciles eventually.
type EndpointStatus int32

const (
	// StatusIdle means no query has been issued yet.
	StatusIdle EndpointStatus = iota
	// StatusConnecting means a query is in flight.
	StatusConnecting
	// StatusConnected means the most recent query succeeded.
	StatusConnected
	// StatusError means the most recent query failed.
	StatusError
)

// String returns the lowercase name of the status.
func (s EndpointStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Endpoint identifies one SPARQL endpoint together with its auth
// configuration and optional language priorities. Status is only mutated by
// code paths that issue queries against the endpoint.
type Endpoint struct {
	ID        string
	URL       string
	Auth      AuthConfig
	Languages []string // per-endpoint language priority list, optional

	status atomic.Int32
}

// Status returns the endpoint's current status.
func (e *Endpoint) Status() EndpointStatus {
	return EndpointStatus(e.status.Load())
}

// SetStatus records a status transition (last-write-wins).
func (e *Endpoint) SetStatus(s EndpointStatus) {
	e.status.Store(int32(s))
}

// QueryOptions controls retry and timeout behavior for a single Execute
// call. Options are immutable per call; zero-value fields get defaults.
type QueryOptions struct {
	// Retries is the number of additional attempts after the first, so
	// Retries=2 means at most 3 total HTTP attempts.
	Retries int
	// RetryDelay is the wait before the first retry; subsequent retries
	// back off exponentially from it.
	RetryDelay time.Duration
	// Timeout bounds each individual HTTP attempt.
	Timeout time.Duration
}

// DefaultQueryOptions returns the options applied when a caller passes nil.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		Retries:    2,
		RetryDelay: time.Second,
		Timeout:    30 * time.Second,
	}
}

// TermType is the RDF term kind of one binding value.
type TermType string

const (
	// TermURI is an IRI reference.
	TermURI TermType = "uri"
	// TermLiteral is an RDF literal, optionally language-tagged or typed.
	TermLiteral TermType = "literal"
	// TermBNode is a blank node label.
	TermBNode TermType = "bnode"
)

// Term is one RDF term in a result binding. Lang and Datatype are mutually
// exclusive and only present on literals.
type Term struct {
	Type     TermType `json:"type"`
	Value    string   `json:"value"`
	Lang     string   `json:"xml:lang,omitempty"`
	Datatype string   `json:"datatype,omitempty"`
}

// Validate enforces the binding invariants: the type is one of the three
// RDF term kinds, and lang/datatype appear only on literals and never
// together.
func (t Term) Validate() error {
	switch t.Type {
	case TermURI, TermLiteral, TermBNode:
	default:
		return fmt.Errorf("unknown term type %q", t.Type)
	}
	if t.Type != TermLiteral && (t.Lang != "" || t.Datatype != "") {
		return fmt.Errorf("lang/datatype on non-literal term %q", t.Type)
	}
	if t.Lang != "" && t.Datatype != "" {
		return fmt.Errorf("term carries both lang %q and datatype %q", t.Lang, t.Datatype)
	}
	return nil
}

// Binding maps variable names to RDF terms for one result row.
type Binding map[string]Term

// Head lists the variables of a SELECT result.
type Head struct {
	Vars []string `json:"vars"`
}

// ResultSet holds the rows of a SELECT result.
type ResultSet struct {
	Bindings []Binding `json:"bindings"`
}

// Result is a parsed SPARQL result: either a SELECT result (Head/Results)
// or an ASK result (Boolean).
type Result struct {
	Head    Head       `json:"head"`
	Results *ResultSet `json:"results,omitempty"`
	Boolean *bool      `json:"boolean,omitempty"`
}

// IsAsk reports whether the result is an ASK (boolean) result.
func (r *Result) IsAsk() bool {
	return r.Boolean != nil
}

// Bindings returns the result rows, or nil for ASK results.
func (r *Result) Bindings() []Binding {
	if r.Results == nil {
		return nil
	}
	return r.Results.Bindings
}

// ConnectionTest is the outcome of Client.TestConnection.
type ConnectionTest struct {
	Success      bool
	ResponseTime time.Duration
	Error        error // *errors.ClassifiedError when Success is false
}
