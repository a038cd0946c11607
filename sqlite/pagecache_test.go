package sqlite_test

import (
	"context"
	"testing"

	"github.com/ossearch/ossearch"
	"github.com/ossearch/ossearch/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) *sqlite.PageCache {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return sqlite.NewPageCache(db)
}

func TestPageCache_PutNext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := newCache(t)

	require.NoError(t, cache.Put(ctx, "example.com/a", []byte("aaa")))
	require.NoError(t, cache.Put(ctx, "example.com/b", []byte("bbb")))

	first, err := cache.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "example.com/a", first.ID)
	assert.Equal(t, []byte("aaa"), first.Data)

	second, err := cache.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "example.com/b", second.ID)

	// A drained page is gone.
	n, err := cache.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPageCache_NextEmpty(t *testing.T) {
	t.Parallel()

	cache := newCache(t)

	_, err := cache.Next(context.Background())
	require.Error(t, err)
	assert.Equal(t, ossearch.ENOTFOUND, ossearch.ErrorCode(err))
}

func TestPageCache_PutReplaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := newCache(t)

	require.NoError(t, cache.Put(ctx, "example.com/a", []byte("old")))
	require.NoError(t, cache.Put(ctx, "example.com/a", []byte("new")))

	n, err := cache.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	page, err := cache.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), page.Data)
}

func TestPageCache_PutRequiresID(t *testing.T) {
	t.Parallel()

	cache := newCache(t)

	err := cache.Put(context.Background(), "", []byte("x"))
	require.Error(t, err)
	assert.Equal(t, ossearch.EINVALID, ossearch.ErrorCode(err))
}
