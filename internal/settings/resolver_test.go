package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkolesni-prog/recall/internal/store"
)

// brokenStore fails every call.
type brokenStore struct{ store.MemoryStorage }

var errBroken = errors.New("storage offline")

func (*brokenStore) Get(context.Context, string) (string, error) { return "", errBroken }
func (*brokenStore) Set(context.Context, string, string) error  { return errBroken }

func TestServerURLDefaults(t *testing.T) {
	ctx := context.Background()

	mem := store.NewMemoryStorage()
	r := NewResolver(mem, mem)
	assert.Equal(t, DefaultServerURL, r.ServerURL(ctx), "unset")

	require.NoError(t, mem.Set(ctx, ServerURLKey, ""))
	assert.Equal(t, DefaultServerURL, r.ServerURL(ctx), "empty")

	broken := NewResolver(&brokenStore{}, &brokenStore{})
	assert.Equal(t, DefaultServerURL, broken.ServerURL(ctx), "read failure")
}

func TestSetServerURL(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStorage()
	r := NewResolver(mem, mem)

	require.NoError(t, mem.Set(ctx, ServerURLKey, "http://h:8000/"))

	stored, err := r.SetServerURL(ctx, "http://h:8000/")
	require.NoError(t, err)
	assert.Equal(t, "http://h:8000", stored)
	assert.Equal(t, "http://h:8000", r.ServerURL(ctx))

	_, err = r.SetServerURL(ctx, "bad")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "bad", verr.Value)
	assert.Equal(t, "http://h:8000", r.ServerURL(ctx), "rejected value does not touch the store")

	stored, err = r.SetServerURL(ctx, "  https://recall.example/  ")
	require.NoError(t, err)
	assert.Equal(t, "https://recall.example", stored)
}

func TestSetServerURLStoreFailure(t *testing.T) {
	r := NewResolver(&brokenStore{}, &brokenStore{})
	_, err := r.SetServerURL(context.Background(), "http://h:8000")
	assert.ErrorIs(t, err, errBroken)
}

func TestEnsureDefaults(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStorage()
	r := NewResolver(mem, mem)

	require.NoError(t, r.EnsureDefaults(ctx))
	got, err := mem.Get(ctx, ServerURLKey)
	require.NoError(t, err)
	assert.Equal(t, DefaultServerURL, got)

	_, err = r.SetServerURL(ctx, "http://h:9000")
	require.NoError(t, err)
	require.NoError(t, r.EnsureDefaults(ctx))
	assert.Equal(t, "http://h:9000", r.ServerURL(ctx), "existing value kept")

	assert.ErrorIs(t, NewResolver(&brokenStore{}, &brokenStore{}).EnsureDefaults(ctx), errBroken)
}

func TestCachedTags(t *testing.T) {
	ctx := context.Background()
	syncStore := store.NewMemoryStorage()
	localStore := store.NewMemoryStorage()
	r := NewResolver(syncStore, localStore)

	assert.Equal(t, "", r.CachedTags(ctx, "https://a.com"))

	require.NoError(t, r.SetCachedTags(ctx, "https://a.com", "a, b ,,c"))
	assert.Equal(t, "a, b ,,c", r.CachedTags(ctx, "https://a.com"))
	assert.Equal(t, "", r.CachedTags(ctx, "https://a.com#section"), "no URL normalization")
	assert.Equal(t, "", r.CachedTags(ctx, "https://a.com?x=1"))

	assert.Equal(t, 1, localStore.Len())
	assert.Equal(t, 0, syncStore.Len(), "tags stay in the local store")

	broken := NewResolver(&brokenStore{}, &brokenStore{})
	assert.Equal(t, "", broken.CachedTags(ctx, "https://a.com"))
	assert.ErrorIs(t, broken.SetCachedTags(ctx, "https://a.com", "x"), errBroken)
}

func TestOverride(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStorage()
	r := NewResolver(mem, mem)
	require.NoError(t, mem.Set(ctx, ServerURLKey, "https://stored.example"))

	var invalid *ValidationError
	assert.True(t, errors.As(r.Override("localhost"), &invalid))
	assert.Equal(t, "https://stored.example", r.ServerURL(ctx))

	require.NoError(t, r.Override("http://10.0.0.5:8000/"))
	assert.Equal(t, "http://10.0.0.5:8000", r.ServerURL(ctx))

	stored, err := mem.Get(ctx, ServerURLKey)
	require.NoError(t, err)
	assert.Equal(t, "https://stored.example", stored, "override is not persisted")
}
