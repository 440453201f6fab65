package detect

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cognizone/skoslens/pkg/worker"
	"github.com/cognizone/skoslens/sparql"
)

// LanguageOptions selects how language detection scopes its queries.
// GraphURIs takes priority over Graph; with neither set the whole store is
// aggregated in one query.
type LanguageOptions struct {
	// Graph scopes the aggregation to one named graph.
	Graph string
	// GraphURIs triggers batched detection: the list is partitioned into
	// chunks and one VALUES-scoped query is issued per chunk.
	GraphURIs []string
	// BatchSize overrides the detector's chunk size, when positive.
	BatchSize int
}

// DetectLanguages aggregates label language counts for an endpoint. Batched
// mode dispatches chunks through a bounded worker pool and merges per-chunk
// language maps by summing; a failing chunk contributes nothing but never
// aborts its siblings. Results are sorted by count descending, then language
// ascending. A fully failed detection returns nil.
func (d *Detector) DetectLanguages(ctx context.Context, ep *sparql.Endpoint, opts LanguageOptions) []LanguageCount {
	if len(opts.GraphURIs) > 0 {
		return d.detectLanguagesBatched(ctx, ep, opts)
	}

	query := languagesQuery()
	if opts.Graph != "" {
		query = languagesInGraphQuery(opts.Graph)
	}

	result, err := d.exec.Execute(ctx, ep, query, &d.queryOpts)
	if err != nil {
		d.logger.Debug("language probe failed", "endpoint", ep.ID, "error", err)
		return nil
	}
	return sortedCounts(languageCounts(result))
}

func (d *Detector) detectLanguagesBatched(ctx context.Context, ep *sparql.Endpoint, opts LanguageOptions) []LanguageCount {
	batchSize := d.batchSize
	if opts.BatchSize > 0 {
		batchSize = opts.BatchSize
	}
	chunks := chunkStrings(opts.GraphURIs, batchSize)

	var (
		mu     sync.Mutex
		merged = make(map[string]int)
	)

	pool := worker.NewPool(d.workers, len(chunks), func(ctx context.Context, chunk []string) error {
		result, err := d.exec.Execute(ctx, ep, languagesInGraphsQuery(chunk), &d.queryOpts)
		if err != nil {
			d.logger.Debug("language chunk failed",
				"endpoint", ep.ID,
				"graphs", len(chunk),
				"error", err)
			return err
		}
		counts := languageCounts(result)
		mu.Lock()
		for lang, n := range counts {
			merged[lang] += n
		}
		mu.Unlock()
		return nil
	})

	if err := pool.Start(ctx); err != nil {
		d.logger.Debug("language pool start failed", "endpoint", ep.ID, "error", err)
		return nil
	}
	for _, chunk := range chunks {
		// The queue is sized to hold every chunk, so Submit cannot drop.
		if err := pool.Submit(chunk); err != nil {
			d.logger.Debug("language chunk submit failed", "endpoint", ep.ID, "error", err)
		}
	}
	if err := pool.Stop(10 * time.Minute); err != nil {
		d.logger.Debug("language pool stop timed out", "endpoint", ep.ID, "error", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(merged) == 0 {
		return nil
	}
	return sortedCounts(merged)
}

// languageCounts extracts a language to count map from an aggregation
// result. Rows with empty language tags or non-numeric counts are skipped.
func languageCounts(result *sparql.Result) map[string]int {
	counts := make(map[string]int)
	for _, row := range result.Bindings() {
		lang := row["lang"].Value
		if lang == "" {
			continue
		}
		n, err := strconv.Atoi(row["count"].Value)
		if err != nil || n <= 0 {
			continue
		}
		counts[lang] += n
	}
	return counts
}

func sortedCounts(counts map[string]int) []LanguageCount {
	out := make([]LanguageCount, 0, len(counts))
	for lang, n := range counts {
		out = append(out, LanguageCount{Lang: lang, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Lang < out[j].Lang
	})
	return out
}

// SortLanguages reorders counts in place so languages on the priority list
// come first, in list order, with the rest keeping their count ordering.
func SortLanguages(counts []LanguageCount, priority []string) {
	if len(priority) == 0 || len(counts) == 0 {
		return
	}
	rank := make(map[string]int, len(priority))
	for i, lang := range priority {
		if _, seen := rank[lang]; !seen {
			rank[lang] = i
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		ri, iok := rank[counts[i].Lang]
		rj, jok := rank[counts[j].Lang]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		default:
			return false
		}
	})
}

func chunkStrings(items []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	chunks := make([][]string, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
