package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querymon/querymon/document"
	"github.com/querymon/querymon/query"
)

func staticSource(queries map[string]query.Query) Source {
	return func(id string) (query.Query, map[string]string, bool) {
		q, ok := queries[id]
		return q, nil, ok
	}
}

func TestPutAndGet(t *testing.T) {
	c := New()

	e, err := c.Put("q1", query.NewTerm("body", "alpha"), map[string]string{"owner": "alerts"})
	require.NoError(t, err)
	assert.Equal(t, "q1", e.ID())
	assert.Equal(t, "alerts", e.Metadata()["owner"])

	got, ok := c.Get("q1")
	require.True(t, ok)
	assert.Same(t, e, got)
	assert.Equal(t, 1, c.Len())
}

func TestPutReplaces(t *testing.T) {
	c := New()

	_, err := c.Put("q1", query.NewTerm("body", "alpha"), nil)
	require.NoError(t, err)
	e2, err := c.Put("q1", query.NewTerm("body", "beta"), nil)
	require.NoError(t, err)

	got, ok := c.Get("q1")
	require.True(t, ok)
	assert.Same(t, e2, got)
	assert.Equal(t, 1, c.Len())

	doc := document.New("d1").AddTerm("body", "beta")
	assert.True(t, got.Matches(doc))
}

func TestPutInvalidQuery(t *testing.T) {
	c := New()

	_, err := c.Put("q1", nil, nil)
	assert.ErrorIs(t, err, query.ErrNilQuery)
	assert.Equal(t, 0, c.Len())
}

func TestGetOrCompile(t *testing.T) {
	c := New()
	src := staticSource(map[string]query.Query{
		"q1": query.NewTerm("body", "alpha"),
	})

	e, err := c.GetOrCompile("q1", src)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	again, err := c.GetOrCompile("q1", src)
	require.NoError(t, err)
	assert.Same(t, e, again, "second access hits the cache")
}

func TestGetOrCompileMissing(t *testing.T) {
	c := New()

	_, err := c.GetOrCompile("gone", staticSource(nil))
	assert.ErrorIs(t, err, ErrMissingQuery)
	assert.Equal(t, 0, c.Len())
}

func TestGetOrCompileConcurrent(t *testing.T) {
	c := New()
	src := staticSource(map[string]query.Query{
		"q1": query.NewTerm("body", "alpha"),
	})

	const n = 16
	entries := make([]*Entry, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := c.GetOrCompile("q1", src)
			assert.NoError(t, err)
			entries[i] = e
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.Len())
	for _, e := range entries {
		assert.Same(t, entries[0], e, "all callers share one entry")
	}
}

func TestEvict(t *testing.T) {
	c := New()
	_, err := c.Put("q1", query.NewTerm("body", "alpha"), nil)
	require.NoError(t, err)
	_, err = c.Put("q2", query.NewTerm("body", "beta"), nil)
	require.NoError(t, err)

	c.Evict("q1", "unknown")
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("q1")
	assert.False(t, ok)
}

func TestEvictedEntryStaysUsableWhilePinned(t *testing.T) {
	c := New()
	e, err := c.Put("q1", query.NewTerm("body", "alpha"), nil)
	require.NoError(t, err)

	e.Pin()
	c.Evict("q1")
	assert.True(t, e.Pinned())

	doc := document.New("d1").AddTerm("body", "alpha")
	assert.True(t, e.Matches(doc), "holder keeps its reference after eviction")
	e.Unpin()
	assert.False(t, e.Pinned())
}

func TestEvictExcept(t *testing.T) {
	c := New()
	for _, id := range []string{"q1", "q2", "q3"} {
		_, err := c.Put(id, query.NewTerm("body", "alpha"), nil)
		require.NoError(t, err)
	}

	n := c.EvictExcept(map[string]struct{}{"q2": {}})
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("q2")
	assert.True(t, ok)
}

func TestLastAccess(t *testing.T) {
	c := New()
	e, err := c.Put("q1", query.NewTerm("body", "alpha"), nil)
	require.NoError(t, err)

	assert.True(t, e.LastAccess().IsZero())
	e.Matches(document.New("d1"))
	assert.False(t, e.LastAccess().IsZero())
}
