package prefix

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognizone/skoslens/pkg/kvstore"
)

// countingLookup records every external call it serves.
type countingLookup struct {
	mu      sync.Mutex
	answers map[string]string
	fail    bool
	calls   []string
}

func (c *countingLookup) ReversePrefix(_ context.Context, namespace string) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, namespace)
	c.mu.Unlock()
	if c.fail {
		return "", fmt.Errorf("lookup unavailable")
	}
	return c.answers[namespace], nil
}

func (c *countingLookup) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func newResolver(t *testing.T, options ...Option) (*Resolver, *countingLookup) {
	t.Helper()
	mem, err := kvstore.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })

	lookup := &countingLookup{answers: map[string]string{}}
	r, err := NewResolver(mem, append([]Option{WithLookup(lookup)}, options...)...)
	require.NoError(t, err)
	return r, lookup
}

func TestResolveURI_StaticTableNoExternalCalls(t *testing.T) {
	r, lookup := newResolver(t)

	got := r.ResolveURI(context.Background(), "http://www.w3.org/2004/02/skos/core#prefLabel")
	assert.Equal(t, Entry{Prefix: "skos", LocalName: "prefLabel"}, got)
	assert.Equal(t, 0, lookup.callCount())
}

func TestResolveURI_StaticTableCoverage(t *testing.T) {
	cases := map[string]Entry{
		"http://www.w3.org/1999/02/22-rdf-syntax-ns#type": {Prefix: "rdf", LocalName: "type"},
		"http://www.w3.org/2000/01/rdf-schema#label":      {Prefix: "rdfs", LocalName: "label"},
		"http://purl.org/dc/terms/created":                {Prefix: "dct", LocalName: "created"},
		"http://schema.org/name":                          {Prefix: "schema", LocalName: "name"},
		"https://schema.org/name":                         {Prefix: "schema", LocalName: "name"},
		"http://www.w3.org/2008/05/skos-xl#literalForm":   {Prefix: "skosxl", LocalName: "literalForm"},
	}
	r, lookup := newResolver(t)
	for uri, want := range cases {
		assert.Equal(t, want, r.ResolveURI(context.Background(), uri), uri)
	}
	assert.Equal(t, 0, lookup.callCount())
}

func TestResolveURI_ExternalLookupThenCached(t *testing.T) {
	r, lookup := newResolver(t)
	lookup.answers["http://example.org/vocab#"] = "exv"

	got := r.ResolveURI(context.Background(), "http://example.org/vocab#term")
	assert.Equal(t, Entry{Prefix: "exv", LocalName: "term"}, got)
	assert.Equal(t, 1, lookup.callCount())

	// Second resolution in the same namespace hits the cache.
	got = r.ResolveURI(context.Background(), "http://example.org/vocab#other")
	assert.Equal(t, Entry{Prefix: "exv", LocalName: "other"}, got)
	assert.Equal(t, 1, lookup.callCount())
}

func TestResolveURI_NegativeResultCached(t *testing.T) {
	r, lookup := newResolver(t)
	lookup.fail = true

	got := r.ResolveURI(context.Background(), "http://example.org/unknown#a")
	assert.Equal(t, Entry{Prefix: "", LocalName: "a"}, got)

	got = r.ResolveURI(context.Background(), "http://example.org/unknown#b")
	assert.Equal(t, Entry{Prefix: "", LocalName: "b"}, got)

	// The failing namespace was looked up exactly once.
	assert.Equal(t, 1, lookup.callCount())
}

func TestResolveURI_LookupFailureDegradesNotErrors(t *testing.T) {
	r, lookup := newResolver(t)
	lookup.fail = true

	got := r.ResolveURI(context.Background(), "http://example.org/x/y")
	assert.Equal(t, Entry{Prefix: "", LocalName: "y"}, got)
}

func TestResolveURI_InvalidInput(t *testing.T) {
	r, lookup := newResolver(t)

	assert.Equal(t, Entry{LocalName: "javascript:alert(1)"}, r.ResolveURI(context.Background(), "javascript:alert(1)"))
	assert.Equal(t, Entry{}, r.ResolveURI(context.Background(), ""))
	assert.Equal(t, 0, lookup.callCount())
}

func TestResolveURIs_GroupsByNamespace(t *testing.T) {
	r, lookup := newResolver(t)
	lookup.answers["http://example.org/vocab#"] = "exv"

	uris := []string{
		"http://example.org/vocab#a",
		"http://example.org/vocab#b",
		"http://example.org/vocab#c",
		"http://www.w3.org/2004/02/skos/core#broader",
	}
	got := r.ResolveURIs(context.Background(), uris)

	assert.Equal(t, Entry{Prefix: "exv", LocalName: "a"}, got["http://example.org/vocab#a"])
	assert.Equal(t, Entry{Prefix: "exv", LocalName: "b"}, got["http://example.org/vocab#b"])
	assert.Equal(t, Entry{Prefix: "exv", LocalName: "c"}, got["http://example.org/vocab#c"])
	assert.Equal(t, Entry{Prefix: "skos", LocalName: "broader"}, got["http://www.w3.org/2004/02/skos/core#broader"])

	// Three URIs share one namespace: exactly one external call.
	assert.Equal(t, 1, lookup.callCount())
}

func TestResolveURIs_AllStaticMeansZeroExternalCalls(t *testing.T) {
	r, lookup := newResolver(t)

	got := r.ResolveURIs(context.Background(), []string{
		"http://www.w3.org/2004/02/skos/core#prefLabel",
		"http://www.w3.org/1999/02/22-rdf-syntax-ns#type",
		"http://purl.org/dc/terms/modified",
	})
	assert.Len(t, got, 3)
	assert.Equal(t, 0, lookup.callCount())
}

func TestSplitURI(t *testing.T) {
	ns, local, ok := SplitURI("http://www.w3.org/2004/02/skos/core#prefLabel")
	require.True(t, ok)
	assert.Equal(t, "http://www.w3.org/2004/02/skos/core#", ns)
	assert.Equal(t, "prefLabel", local)

	ns, local, ok = SplitURI("http://purl.org/dc/terms/created")
	require.True(t, ok)
	assert.Equal(t, "http://purl.org/dc/terms/", ns)
	assert.Equal(t, "created", local)

	// Hash wins over slash.
	ns, local, ok = SplitURI("http://example.org/a/b#c")
	require.True(t, ok)
	assert.Equal(t, "http://example.org/a/b#", ns)
	assert.Equal(t, "c", local)

	_, _, ok = SplitURI("urn:nosplit")
	assert.False(t, ok)
}

func TestFormatQualifiedName(t *testing.T) {
	assert.Equal(t, "skos:prefLabel", FormatQualifiedName(Entry{Prefix: "skos", LocalName: "prefLabel"}))
	assert.Equal(t, "prefLabel", FormatQualifiedName(Entry{LocalName: "prefLabel"}))
}

func TestStaticTablePriorityOverStaleCache(t *testing.T) {
	mem, err := kvstore.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })

	// A stale cache entry for a well-known namespace must be ignored.
	_, err = mem.Set(cacheKeyPrefix+"http://www.w3.org/2004/02/skos/core#", "stale")
	require.NoError(t, err)

	r, err := NewResolver(mem)
	require.NoError(t, err)

	got := r.ResolveURI(context.Background(), "http://www.w3.org/2004/02/skos/core#narrower")
	assert.Equal(t, Entry{Prefix: "skos", LocalName: "narrower"}, got)
}
