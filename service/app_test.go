package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/app/config"
	"yatube/app/services"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.NewConfig(dir)
	cfg.Storage = config.StorageConfig{Type: "memory"}
	cfg.Images = config.ImagesConfig{Type: "memory"}
	return cfg
}

func TestNewAppBackends(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "memory", mutate: func(c *config.Config) {}},
		{name: "badger on disk", mutate: func(c *config.Config) {
			c.Storage = config.StorageConfig{Type: "badger", Path: filepath.Join(c.BaseDir, "badger")}
		}},
		{name: "sqlite in memory", mutate: func(c *config.Config) {
			c.Storage = config.StorageConfig{Type: "sqlite", Path: ":memory:"}
		}},
		{name: "filesystem images", mutate: func(c *config.Config) {
			c.Images = config.ImagesConfig{Type: "filesystem", Root: filepath.Join(c.BaseDir, "media")}
		}},
		{name: "ristretto cache", mutate: func(c *config.Config) {
			c.Cache = config.CacheConfig{Type: "ristretto", TTL: config.Duration{Duration: time.Second}}
		}},
		{name: "no cache", mutate: func(c *config.Config) {
			c.Cache.Type = "none"
		}},
		{name: "stderr logging", mutate: func(c *config.Config) {
			c.LogDir = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := memoryConfig(t)
			tt.mutate(cfg)

			a, err := NewApp(context.Background(), cfg)
			require.NoError(t, err)
			defer a.Close()

			ctx := context.Background()
			_, err = a.Admin.CreateAuthor(ctx, "leo", "", "pw")
			require.NoError(t, err)
			_, err = a.Posts.CreatePost(ctx, "leo", services.PostInput{Text: "hello"})
			require.NoError(t, err)

			page, err := a.Feed.ListAll(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, 1, page.Total)
		})
	}
}

func TestNewAppRejectsUnknownTypes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{name: "storage", mutate: func(c *config.Config) { c.Storage.Type = "mongo" }, want: "unknown storage type"},
		{name: "images", mutate: func(c *config.Config) { c.Images.Type = "ftp" }, want: "unknown image store type"},
		{name: "cache", mutate: func(c *config.Config) { c.Cache.Type = "redis" }, want: "unknown cache type"},
		{name: "badger without path", mutate: func(c *config.Config) { c.Storage = config.StorageConfig{Type: "badger"} }, want: "requires a path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := memoryConfig(t)
			tt.mutate(cfg)
			_, err := NewApp(context.Background(), cfg)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, err := NewApp(ctx, memoryConfig(t))
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Admin.CreateGroup(ctx, "cats", "Cats", "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.Backup(&buf))

	dst, err := NewApp(ctx, memoryConfig(t))
	require.NoError(t, err)
	defer dst.Close()
	require.NoError(t, dst.Restore(&buf))

	groups, err := dst.Admin.ListGroups()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "cats", groups[0].Slug)
}

func TestBackupNeedsBadger(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Storage = config.StorageConfig{Type: "sqlite", Path: ":memory:"}
	a, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.ErrorContains(t, a.Backup(io.Discard), "needs badger storage")
	assert.ErrorContains(t, a.Restore(bytes.NewReader(nil)), "needs badger storage")
}

func TestServeListener(t *testing.T) {
	a, err := NewApp(context.Background(), memoryConfig(t))
	require.NoError(t, err)
	defer a.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := fmt.Sprintf("http://%s", ln.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.ServeListener(ctx, ln)
	}()

	resp, err := http.Get(base + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = http.Get(base + "/missing/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
