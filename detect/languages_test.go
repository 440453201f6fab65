package detect

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognizone/skoslens/sparql"
	"github.com/cognizone/skoslens/testutil"
)

func TestDetectLanguages_Default(t *testing.T) {
	exec := (&fakeExecutor{}).on("GROUP BY ?lang", testutil.LanguageCountsJSON(map[string]int{
		"en": 120, "fr": 80, "nl": 80,
	}))
	d := newDetector(t, exec)

	got := d.DetectLanguages(context.Background(), &sparql.Endpoint{ID: "ep"}, LanguageOptions{})

	// Count descending, language ascending on ties.
	assert.Equal(t, []LanguageCount{
		{Lang: "en", Count: 120},
		{Lang: "fr", Count: 80},
		{Lang: "nl", Count: 80},
	}, got)

	require.Len(t, exec.queries, 1)
	assert.NotContains(t, exec.queries[0], "GRAPH")
}

func TestDetectLanguages_SingleGraphScoped(t *testing.T) {
	exec := (&fakeExecutor{}).on("GROUP BY ?lang", testutil.LanguageCountsJSON(map[string]int{"en": 5}))
	d := newDetector(t, exec)

	got := d.DetectLanguages(context.Background(), &sparql.Endpoint{ID: "ep"}, LanguageOptions{
		Graph: "http://example.org/g1",
	})

	assert.Equal(t, []LanguageCount{{Lang: "en", Count: 5}}, got)
	require.Len(t, exec.queries, 1)
	assert.Contains(t, exec.queries[0], "GRAPH <http://example.org/g1>")
}

// chunkExecutor answers batched language queries differently depending on
// which graph URIs appear in the VALUES clause.
type chunkExecutor struct {
	fakeExecutor
	byGraph map[string]string // graph URI substring -> body
	failOn  string
}

func (c *chunkExecutor) Execute(ctx context.Context, ep *sparql.Endpoint, query string, opts *sparql.QueryOptions) (*sparql.Result, error) {
	c.mu.Lock()
	c.queries = append(c.queries, query)
	c.mu.Unlock()

	if c.failOn != "" && strings.Contains(query, c.failOn) {
		return nil, serverErr
	}
	for graph, body := range c.byGraph {
		if strings.Contains(query, graph) {
			return sparql.ParseResult([]byte(body))
		}
	}
	return sparql.ParseResult([]byte(testutil.EmptySelectJSON))
}

func TestDetectLanguages_BatchedMergesBySumming(t *testing.T) {
	exec := &chunkExecutor{byGraph: map[string]string{
		"http://example.org/g1": testutil.LanguageCountsJSON(map[string]int{"en": 100, "fr": 50}),
		"http://example.org/g3": testutil.LanguageCountsJSON(map[string]int{"en": 75, "de": 25}),
	}}
	d := newDetector(t, exec, WithBatchSize(2), WithWorkers(2))

	got := d.DetectLanguages(context.Background(), &sparql.Endpoint{ID: "ep"}, LanguageOptions{
		GraphURIs: []string{
			"http://example.org/g1", "http://example.org/g2",
			"http://example.org/g3", "http://example.org/g4",
		},
	})

	assert.Equal(t, []LanguageCount{
		{Lang: "en", Count: 175},
		{Lang: "fr", Count: 50},
		{Lang: "de", Count: 25},
	}, got)

	// Two chunks of two graphs each, both carried in VALUES clauses.
	require.Len(t, exec.queries, 2)
	for _, q := range exec.queries {
		assert.Contains(t, q, "VALUES ?g")
	}
}

func TestDetectLanguages_FailingChunkDoesNotAbortSiblings(t *testing.T) {
	exec := &chunkExecutor{
		byGraph: map[string]string{
			"http://example.org/g2": testutil.LanguageCountsJSON(map[string]int{"fr": 9}),
		},
		failOn: "http://example.org/g1",
	}
	d := newDetector(t, exec, WithBatchSize(1), WithWorkers(2))

	got := d.DetectLanguages(context.Background(), &sparql.Endpoint{ID: "ep"}, LanguageOptions{
		GraphURIs: []string{"http://example.org/g1", "http://example.org/g2"},
	})

	assert.Equal(t, []LanguageCount{{Lang: "fr", Count: 9}}, got)
}

func TestDetectLanguages_AllChunksFailReturnsNil(t *testing.T) {
	exec := &chunkExecutor{failOn: "http://example.org/"}
	d := newDetector(t, exec, WithBatchSize(1))

	got := d.DetectLanguages(context.Background(), &sparql.Endpoint{ID: "ep"}, LanguageOptions{
		GraphURIs: []string{"http://example.org/g1", "http://example.org/g2"},
	})
	assert.Nil(t, got)
}

func TestDetectLanguages_EmptyTagExcluded(t *testing.T) {
	body := testutil.SelectJSON([]string{"lang", "count"}, []map[string]map[string]string{
		{"lang": testutil.LiteralTerm("en"), "count": testutil.IntegerTerm(3)},
		{"lang": testutil.LiteralTerm(""), "count": testutil.IntegerTerm(99)},
	})
	exec := (&fakeExecutor{}).on("GROUP BY ?lang", body)
	d := newDetector(t, exec)

	got := d.DetectLanguages(context.Background(), &sparql.Endpoint{ID: "ep"}, LanguageOptions{})
	assert.Equal(t, []LanguageCount{{Lang: "en", Count: 3}}, got)
}

func TestSortLanguages_PriorityFirst(t *testing.T) {
	counts := []LanguageCount{
		{Lang: "en", Count: 100},
		{Lang: "fr", Count: 60},
		{Lang: "de", Count: 40},
		{Lang: "nl", Count: 20},
	}

	SortLanguages(counts, []string{"nl", "de"})

	assert.Equal(t, []LanguageCount{
		{Lang: "nl", Count: 20},
		{Lang: "de", Count: 40},
		{Lang: "en", Count: 100},
		{Lang: "fr", Count: 60},
	}, counts)
}

func TestSortLanguages_NoPriorityIsNoop(t *testing.T) {
	counts := []LanguageCount{{Lang: "en", Count: 2}, {Lang: "fr", Count: 1}}
	SortLanguages(counts, nil)
	assert.Equal(t, []LanguageCount{{Lang: "en", Count: 2}, {Lang: "fr", Count: 1}}, counts)
}

func TestChunkStrings(t *testing.T) {
	chunks := chunkStrings([]string{"a", "b", "c", "d", "e"}, 2)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, chunks)

	assert.Empty(t, chunkStrings(nil, 2))
}
