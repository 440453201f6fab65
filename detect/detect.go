// Package detect probes SPARQL endpoints for capabilities: named-graph
// support, SKOS-bearing graphs, duplicate triples across graphs, and
// available label languages.
//
// Probes are fail-safe. Each one swallows classified errors and degrades to
// a sentinel "unknown" value (nil pointer, false, empty list) so that one
// failed probe never aborts the rest of an analysis run.
package detect

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/cognizone/skoslens/sanitize"
	"github.com/cognizone/skoslens/sparql"
)

// DefaultMaxGraphs is the threshold above which DetectSkosGraphs withholds
// the graph URI list. A huge list is useless for per-graph scoping.
const DefaultMaxGraphs = 10

// Executor runs one SPARQL query. *sparql.Client satisfies it; tests use
// in-process fakes.
type Executor interface {
	Execute(ctx context.Context, ep *sparql.Endpoint, query string, opts *sparql.QueryOptions) (*sparql.Result, error)
}

// GraphSupport is the outcome of the named-graph probe. Supported is nil
// when every stage of the probe failed, false when probes succeeded but
// found no graphs. Exact is false when the count came from the ASK fallback
// rather than an actual COUNT.
type GraphSupport struct {
	Supported *bool
	Count     *int
	Exact     bool
}

// SkosGraphs is the outcome of the SKOS graph probe. Count is nil when the
// probe failed. URIs is nil either on failure or when the count exceeded the
// configured threshold.
type SkosGraphs struct {
	Count *int
	URIs  []string
}

// LanguageCount is one label language with its occurrence count.
type LanguageCount struct {
	Lang  string `json:"lang"`
	Count int    `json:"count"`
}

// Analysis is a capability snapshot of one endpoint, built fresh per
// detection run. Nil pointer fields mean "could not be determined", which is
// distinct from zero or false.
type Analysis struct {
	SupportsNamedGraphs *bool           `json:"supportsNamedGraphs"`
	GraphCount          *int            `json:"graphCount"`
	GraphCountExact     bool            `json:"graphCountExact"`
	SkosGraphCount      *int            `json:"skosGraphCount"`
	SkosGraphURIs       []string        `json:"skosGraphUris"`
	HasDuplicates       bool            `json:"hasDuplicates"`
	Languages           []LanguageCount `json:"languages"`
}

// Detector runs capability probes against endpoints through an Executor.
type Detector struct {
	exec      Executor
	logger    *slog.Logger
	maxGraphs int
	batchSize int
	workers   int
	queryOpts sparql.QueryOptions
}

// Option configures a Detector.
type Option func(*Detector) error

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		d.logger = logger
		return nil
	}
}

// WithMaxGraphs overrides the SKOS graph URI list threshold.
func WithMaxGraphs(n int) Option {
	return func(d *Detector) error {
		if n <= 0 {
			return fmt.Errorf("maxGraphs must be positive, got %d", n)
		}
		d.maxGraphs = n
		return nil
	}
}

// WithBatchSize overrides the language detection chunk size.
func WithBatchSize(n int) Option {
	return func(d *Detector) error {
		if n <= 0 {
			return fmt.Errorf("batchSize must be positive, got %d", n)
		}
		d.batchSize = n
		return nil
	}
}

// WithWorkers bounds the concurrency of batched language detection.
func WithWorkers(n int) Option {
	return func(d *Detector) error {
		if n <= 0 {
			return fmt.Errorf("workers must be positive, got %d", n)
		}
		d.workers = n
		return nil
	}
}

// WithQueryOptions overrides the per-probe retry and timeout settings.
func WithQueryOptions(opts sparql.QueryOptions) Option {
	return func(d *Detector) error {
		d.queryOpts = opts
		return nil
	}
}

// New creates a Detector backed by the given executor.
func New(exec Executor, options ...Option) (*Detector, error) {
	if exec == nil {
		return nil, fmt.Errorf("executor cannot be nil")
	}
	d := &Detector{
		exec:      exec,
		logger:    slog.Default(),
		maxGraphs: DefaultMaxGraphs,
		batchSize: 10,
		workers:   3,
		queryOpts: sparql.DefaultQueryOptions(),
	}
	for _, opt := range options {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Analyze runs the full probe battery against an endpoint. Languages are
// scoped to the detected SKOS graphs when their URI list is available,
// otherwise detected store-wide.
func (d *Detector) Analyze(ctx context.Context, ep *sparql.Endpoint) *Analysis {
	graphs := d.DetectGraphs(ctx, ep)

	analysis := &Analysis{
		SupportsNamedGraphs: graphs.Supported,
		GraphCount:          graphs.Count,
		GraphCountExact:     graphs.Exact,
	}

	if graphs.Supported != nil && *graphs.Supported {
		skos := d.DetectSkosGraphs(ctx, ep, d.maxGraphs)
		analysis.SkosGraphCount = skos.Count
		analysis.SkosGraphURIs = skos.URIs
		analysis.HasDuplicates = d.DetectDuplicates(ctx, ep)
	}

	langOpts := LanguageOptions{}
	if len(analysis.SkosGraphURIs) > 0 {
		langOpts.GraphURIs = analysis.SkosGraphURIs
	}
	analysis.Languages = d.DetectLanguages(ctx, ep, langOpts)
	SortLanguages(analysis.Languages, ep.Languages)

	return analysis
}

// DetectGraphs probes named-graph support in two stages: an exact COUNT of
// distinct graphs, then an ASK existence check when the count query fails.
// Supported is nil only when both stages fail.
func (d *Detector) DetectGraphs(ctx context.Context, ep *sparql.Endpoint) GraphSupport {
	result, err := d.exec.Execute(ctx, ep, countGraphsQuery, &d.queryOpts)
	if err == nil {
		if count, ok := singleCount(result, "count"); ok {
			supported := count > 0
			return GraphSupport{Supported: &supported, Count: &count, Exact: true}
		}
		d.logger.Debug("graph count result unusable, falling back to ASK", "endpoint", ep.ID)
	} else {
		d.logger.Debug("graph count probe failed, falling back to ASK", "endpoint", ep.ID, "error", err)
	}

	result, err = d.exec.Execute(ctx, ep, askGraphsQuery, &d.queryOpts)
	if err != nil || !result.IsAsk() {
		d.logger.Debug("graph ASK probe failed", "endpoint", ep.ID, "error", err)
		return GraphSupport{}
	}

	supported := *result.Boolean
	return GraphSupport{Supported: &supported, Exact: false}
}

// DetectSkosGraphs enumerates graphs containing at least one skos:Concept.
// When more than maxGraphs match, the count is still reported but the URI
// list is withheld. maxGraphs <= 0 uses the detector's configured threshold.
func (d *Detector) DetectSkosGraphs(ctx context.Context, ep *sparql.Endpoint, maxGraphs int) SkosGraphs {
	if maxGraphs <= 0 {
		maxGraphs = d.maxGraphs
	}

	result, err := d.exec.Execute(ctx, ep, skosGraphsQuery, &d.queryOpts)
	if err != nil {
		d.logger.Debug("skos graph probe failed", "endpoint", ep.ID, "error", err)
		return SkosGraphs{}
	}

	uris := make([]string, 0, len(result.Bindings()))
	for _, row := range result.Bindings() {
		term, ok := row["g"]
		if !ok || term.Type != sparql.TermURI {
			continue
		}
		uri, ok := sanitize.ValidateURI(term.Value)
		if !ok {
			d.logger.Debug("skipping graph with unsafe URI", "endpoint", ep.ID, "uri", term.Value)
			continue
		}
		uris = append(uris, uri)
	}

	count := len(uris)
	if count > maxGraphs {
		return SkosGraphs{Count: &count}
	}
	return SkosGraphs{Count: &count, URIs: uris}
}

// DetectDuplicates checks whether any triple appears in more than one graph.
// Any failure resolves to false; assuming no duplicates is the safe default.
func (d *Detector) DetectDuplicates(ctx context.Context, ep *sparql.Endpoint) bool {
	result, err := d.exec.Execute(ctx, ep, duplicatesQuery, &d.queryOpts)
	if err != nil || !result.IsAsk() {
		d.logger.Debug("duplicate probe failed", "endpoint", ep.ID, "error", err)
		return false
	}
	return *result.Boolean
}

// singleCount extracts an integer from the first row's binding of the named
// variable, the shape aggregate COUNT queries return.
func singleCount(result *sparql.Result, variable string) (int, bool) {
	rows := result.Bindings()
	if len(rows) == 0 {
		return 0, false
	}
	term, ok := rows[0][variable]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(term.Value)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
