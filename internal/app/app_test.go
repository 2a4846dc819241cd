package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkolesni-prog/recall/internal/config"
	"github.com/dkolesni-prog/recall/internal/settings"
	"github.com/dkolesni-prog/recall/internal/store"
	"github.com/dkolesni-prog/recall/internal/workflow"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	dir := t.TempDir()
	cfg.FileStoragePath = filepath.Join(dir, "settings.jsonl")
	cfg.SQLitePath = filepath.Join(dir, "tags.db")
	return cfg
}

func TestBuildSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a, err := Build(ctx, cfg, nil, workflow.Options{})
	require.NoError(t, err)
	assert.Len(t, a.stores, 1, "file scopes share one store")
	assert.Equal(t, settings.DefaultServerURL, a.Settings.ServerURL(ctx))

	_, err = a.Settings.SetServerURL(ctx, "https://recall.example")
	require.NoError(t, err)
	require.NoError(t, a.Close(ctx))

	again, err := Build(ctx, cfg, nil, workflow.Options{})
	require.NoError(t, err)
	defer again.Close(ctx)
	assert.Equal(t, "https://recall.example", again.Settings.ServerURL(ctx), "defaults never overwrite")
}

func TestBuildRedisAndSQLite(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.SyncStore = store.KindRedis
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.LocalStore = store.KindSQLite

	a, err := Build(ctx, cfg, nil, workflow.Options{})
	require.NoError(t, err)
	defer a.Close(ctx)

	assert.Len(t, a.stores, 2)
	assert.True(t, mr.Exists("recall:"+settings.ServerURLKey))

	require.NoError(t, a.Settings.SetCachedTags(ctx, "https://a.com", "go"))
	assert.Equal(t, "go", a.Settings.CachedTags(ctx, "https://a.com"))
	assert.False(t, mr.Exists("recall:"+settings.TagKey("https://a.com")), "tags stay local")
}

func TestBuildUnknownStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.SyncStore = "etcd"

	_, err := Build(context.Background(), cfg, nil, workflow.Options{})
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.SyncStore = store.KindMemory
	cfg.LocalStore = store.KindMemory

	a, err := Build(ctx, cfg, nil, workflow.Options{})
	require.NoError(t, err)
	defer a.Close(ctx)

	rec := httptest.NewRecorder()
	a.Handler("1.2.3").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version/", nil))
	assert.Equal(t, "1.2.3", rec.Body.String())

	rec = httptest.NewRecorder()
	a.Handler("1.2.3").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
