package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	entry := Entry{StatusCode: 200, ContentType: "application/xml", Body: []byte("<a/>")}
	require.NoError(t, store.Set(ctx, "k", entry, time.Hour))

	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry, got)

	replaced := Entry{StatusCode: 200, ContentType: "application/json", Body: []byte("{}")}
	require.NoError(t, store.Set(ctx, "k", replaced, time.Hour))
	got, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, replaced, got)
}

func TestSQLiteExpiry(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	require.NoError(t, store.Set(ctx, "k", Entry{StatusCode: 200, Body: []byte("x")}, time.Minute))

	now = now.Add(30 * time.Second)
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	require.NoError(t, store.Set(ctx, "k", Entry{StatusCode: 200, Body: []byte("x")}, 0))

	now = now.AddDate(10, 0, 0)
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLitePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "k", Entry{StatusCode: 200, Body: []byte("x")}, time.Hour))
	require.NoError(t, store.Close())

	store, err = OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), "memcached", "", "")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestNewRedisRequiresURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "")
	assert.Error(t, err)
}
