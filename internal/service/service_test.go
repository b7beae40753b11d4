package service

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ug-admin-search/internal/config"
)

func TestNewEmbedded(t *testing.T) {
	cfg := config.DefaultConfig()

	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	e := s.Holder.Engine()
	require.NotNil(t, e)
	assert.Equal(t, uint64(1), s.Holder.Generation())
	assert.NotNil(t, s.Cache)

	results := e.Search("Kampla", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, "Kampala", results[0].Unit.Name)
}

func TestNewDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "districts.csv"), []byte("id,name\nD1,Gulu\n"), 0o644))

	cfg := config.DefaultConfig()
	cfg.Data.Source = config.SourceDir
	cfg.Data.Dir = dir
	cfg.Cache.Enabled = false

	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	assert.Nil(t, s.Cache)
	assert.Equal(t, 1, s.Holder.Engine().Stats().Total)
}

func TestNewFailsWithoutData(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Data.Source = config.SourceDir
	cfg.Data.Dir = filepath.Join(t.TempDir(), "missing")

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)

	cfg.Data.Source = "ftp"
	_, _, err = OpenProvider(cfg)
	assert.Error(t, err)
}

func TestRunServesUntilCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	cfg := config.DefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = port
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	url := "http://" + cfg.Server.Addr() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
