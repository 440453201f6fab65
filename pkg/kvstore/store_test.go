package kvstore

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openStores builds one store per persistence scope so the contract tests
// run against both implementations.
func openStores(t *testing.T) map[string]Store {
	t.Helper()

	mem, err := NewMemory()
	require.NoError(t, err)

	sqlite, err := OpenSQLite(":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = mem.Close()
		_ = sqlite.Close()
	})

	return map[string]Store{
		"memory": mem,
		"sqlite": sqlite,
	}
}

func TestStore_SetGetDelete(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			created, err := store.Set("ns1", "skos")
			require.NoError(t, err)
			assert.True(t, created)

			// Overwrite is allowed; entries are never evicted.
			created, err = store.Set("ns1", "skosxl")
			require.NoError(t, err)
			assert.False(t, created)

			value, ok := store.Get("ns1")
			assert.True(t, ok)
			assert.Equal(t, "skosxl", value)

			_, ok = store.Get("missing")
			assert.False(t, ok)

			deleted, err := store.Delete("ns1")
			require.NoError(t, err)
			assert.True(t, deleted)

			deleted, err = store.Delete("ns1")
			require.NoError(t, err)
			assert.False(t, deleted)
		})
	}
}

func TestStore_EmptyKeyRejected(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Set("", "value")
			assert.ErrorIs(t, err, ErrEmptyKey)

			_, err = store.Delete("")
			assert.ErrorIs(t, err, ErrEmptyKey)
		})
	}
}

func TestStore_SizeKeysClear(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Set("a", "1")
			require.NoError(t, err)
			_, err = store.Set("b", "2")
			require.NoError(t, err)

			assert.Equal(t, 2, store.Size())
			assert.ElementsMatch(t, []string{"a", "b"}, store.Keys())

			require.NoError(t, store.Clear())
			assert.Equal(t, 0, store.Size())
			assert.Empty(t, store.Keys())
		})
	}
}

func TestStore_Statistics(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Set("k", "v")
			require.NoError(t, err)

			store.Get("k")       // hit
			store.Get("missing") // miss

			stats := store.Stats()
			require.NotNil(t, stats)
			assert.Equal(t, int64(1), stats.Hits())
			assert.Equal(t, int64(1), stats.Misses())
			assert.Equal(t, int64(1), stats.Sets())
			assert.InDelta(t, 0.5, stats.HitRatio(), 0.001)

			summary := stats.Summary()
			assert.Equal(t, int64(1), summary.Hits)
			assert.Equal(t, int64(1), summary.CurrentSize)
		})
	}
}

func TestStore_PrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	store, err := NewMemory(WithMetrics(reg, "prefix_cache"))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Set("k", "v")
	require.NoError(t, err)
	store.Get("k")
	store.Get("missing")

	hits := testutil.ToFloat64(store.metrics.hits)
	misses := testutil.ToFloat64(store.metrics.misses)
	size := testutil.ToFloat64(store.metrics.size)

	assert.Equal(t, 1.0, hits)
	assert.Equal(t, 1.0, misses)
	assert.Equal(t, 1.0, size)
}

func TestSQLite_DurableAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenSQLite(dir)
	require.NoError(t, err)
	_, err = store.Set("http://purl.org/dc/terms/", "dct")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(dir)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok := reopened.Get("http://purl.org/dc/terms/")
	assert.True(t, ok)
	assert.Equal(t, "dct", value)
	assert.Equal(t, 1, reopened.Size())
}

func TestStatistics_Reset(t *testing.T) {
	stats := NewStatistics()
	stats.Hit()
	stats.Set()
	stats.UpdateSize(5)

	stats.Reset()
	assert.Equal(t, int64(0), stats.Hits())
	assert.Equal(t, int64(0), stats.Sets())
	assert.Equal(t, int64(0), stats.CurrentSize())
}
