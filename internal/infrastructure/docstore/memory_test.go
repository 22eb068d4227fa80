package docstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("get missing", func(t *testing.T) {
		_, err := store.Get(ctx, "col", "nope")
		assert.Equal(t, ErrNotFound, err)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "col", "a", Document{"name": "Alice"}))
		doc, err := store.Get(ctx, "col", "a")
		require.NoError(t, err)
		assert.Equal(t, "Alice", doc["name"])
	})

	t.Run("returned documents are copies", func(t *testing.T) {
		doc, err := store.Get(ctx, "col", "a")
		require.NoError(t, err)
		doc["name"] = "Mallory"

		again, err := store.Get(ctx, "col", "a")
		require.NoError(t, err)
		assert.Equal(t, "Alice", again["name"])
	})

	t.Run("update merges fields", func(t *testing.T) {
		require.NoError(t, store.Update(ctx, "col", "a", Document{"email": "a@b.co"}))
		doc, err := store.Get(ctx, "col", "a")
		require.NoError(t, err)
		assert.Equal(t, "Alice", doc["name"])
		assert.Equal(t, "a@b.co", doc["email"])
	})

	t.Run("update missing", func(t *testing.T) {
		err := store.Update(ctx, "col", "nope", Document{"x": 1})
		assert.Equal(t, ErrNotFound, err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "col", "a"))
		_, err := store.Get(ctx, "col", "a")
		assert.Equal(t, ErrNotFound, err)
	})
}

func seedPeople(t *testing.T, store *MemoryStore) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		team := "blue"
		if i%2 == 0 {
			team = "red"
		}
		require.NoError(t, store.Set(ctx, "people", fmt.Sprintf("p%d", i), Document{
			"id":   fmt.Sprintf("p%d", i),
			"age":  float64(20 + i),
			"team": team,
		}))
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedPeople(t, store)

	t.Run("equality filter", func(t *testing.T) {
		docs, err := store.List(ctx, "people", Query{
			Filters: []Filter{{Field: "team", Value: "red"}},
		})
		require.NoError(t, err)
		assert.Len(t, docs, 3)
	})

	t.Run("order by descending", func(t *testing.T) {
		docs, err := store.List(ctx, "people", Query{OrderBy: "age", Descending: true})
		require.NoError(t, err)
		require.Len(t, docs, 5)
		assert.Equal(t, float64(24), docs[0]["age"])
		assert.Equal(t, float64(20), docs[4]["age"])
	})

	t.Run("limit and offset", func(t *testing.T) {
		docs, err := store.List(ctx, "people", Query{OrderBy: "age", Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, float64(22), docs[0]["age"])
	})

	t.Run("offset past end", func(t *testing.T) {
		docs, err := store.List(ctx, "people", Query{Offset: 99})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("count with filters", func(t *testing.T) {
		n, err := store.Count(ctx, "people", []Filter{{Field: "team", Value: "blue"}})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		total, err := store.Count(ctx, "people", nil)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
	})
}

func TestMemoryStoreBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("applies mixed writes", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Set(ctx, "col", "keep", Document{"v": 1}))
		require.NoError(t, store.Set(ctx, "col", "gone", Document{"v": 2}))

		err := store.RunBatch(ctx, []Write{
			{Op: OpSet, Collection: "col", ID: "new", Doc: Document{"v": 3}},
			{Op: OpUpdate, Collection: "col", ID: "keep", Doc: Document{"v": 10}},
			{Op: OpDelete, Collection: "col", ID: "gone"},
		})
		require.NoError(t, err)

		doc, err := store.Get(ctx, "col", "keep")
		require.NoError(t, err)
		assert.Equal(t, 10, doc["v"])
		_, err = store.Get(ctx, "col", "gone")
		assert.Equal(t, ErrNotFound, err)
	})

	t.Run("rejects oversized batches", func(t *testing.T) {
		store := NewMemoryStore()
		writes := make([]Write, MaxBatchWrites+1)
		for i := range writes {
			writes[i] = Write{Op: OpSet, Collection: "col", ID: fmt.Sprintf("d%d", i), Doc: Document{}}
		}
		err := store.RunBatch(ctx, writes)
		require.Error(t, err)

		n, err := store.Count(ctx, "col", nil)
		require.NoError(t, err)
		assert.Zero(t, n, "no write from a rejected batch may land")
	})

	t.Run("update of missing document fails the whole batch", func(t *testing.T) {
		store := NewMemoryStore()
		err := store.RunBatch(ctx, []Write{
			{Op: OpSet, Collection: "col", ID: "a", Doc: Document{"v": 1}},
			{Op: OpUpdate, Collection: "col", ID: "missing", Doc: Document{"v": 2}},
		})
		require.Error(t, err)

		_, err = store.Get(ctx, "col", "a")
		assert.Equal(t, ErrNotFound, err, "batch must be all-or-nothing")
	})
}

func TestMemoryStoreDeleteCollection(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedPeople(t, store)

	n, err := store.DeleteCollection(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	total, err := store.Count(ctx, "people", nil)
	require.NoError(t, err)
	assert.Zero(t, total)

	n, err = store.DeleteCollection(ctx, "people")
	require.NoError(t, err)
	assert.Zero(t, n)
}
