package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRememberReadsThrough(t *testing.T) {
	_, client := newRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"So What", "Blue in Green"}, nil
	}

	first, err := Remember(ctx, store, KeySongs, load)
	require.NoError(t, err)
	second, err := Remember(ctx, store, KeySongs, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestInvalidateDropsPrefixOnly(t *testing.T) {
	mr, client := newRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, KeyAlbums, []int{1}))
	require.NoError(t, store.Set(ctx, KeyArtists, []int{2}))
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, store.Invalidate(ctx, CatalogPrefix))

	var out []int
	hit, err := store.Get(ctx, KeyAlbums, &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.True(t, mr.Exists("unrelated"))
}

func TestRememberSkipsWriteAfterConcurrentInvalidate(t *testing.T) {
	mr, client := newRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	calls := 0
	load := func() ([]string, error) {
		calls++
		if calls == 1 {
			// a mutation commits while the listing is being read
			require.NoError(t, store.Invalidate(ctx, CatalogPrefix))
			return []string{"stale"}, nil
		}
		return []string{"fresh"}, nil
	}

	first, err := Remember(ctx, store, KeySongs, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, first)
	assert.False(t, mr.Exists(KeySongs))

	second, err := Remember(ctx, store, KeySongs, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, second)
	assert.True(t, mr.Exists(KeySongs))
	assert.Equal(t, 2, calls)
}

func TestSetAtChecksGeneration(t *testing.T) {
	_, client := newRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	gen, err := store.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	require.NoError(t, store.Invalidate(ctx, CatalogPrefix))
	stored, err := store.SetAt(ctx, KeyAlbums, []int{1}, gen)
	require.NoError(t, err)
	assert.False(t, stored)

	gen, err = store.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
	stored, err = store.SetAt(ctx, KeyAlbums, []int{1}, gen)
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestSetAppliesTTL(t *testing.T) {
	mr, client := newRedis(t)
	store := NewRedisStore(client, 30*time.Second)

	require.NoError(t, store.Set(context.Background(), KeySongs, "x"))
	assert.Equal(t, 30*time.Second, mr.TTL(KeySongs))
}

func TestCheckRedis(t *testing.T) {
	_, client := newRedis(t)
	assert.NoError(t, CheckRedis(context.Background(), client))
}

func TestNoopNeverHits(t *testing.T) {
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := Remember(context.Background(), Noop{}, KeySongs, func() (int, error) {
			calls++
			return calls, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}
