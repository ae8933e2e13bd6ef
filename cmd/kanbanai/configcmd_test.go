package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/kanbanai/internal/config"
)

func TestWriteConfig(t *testing.T) {
	defer func(old config.Config) { cfg = old }(cfg)

	path := filepath.Join(t.TempDir(), "kanbanai", "config.toml")
	t.Setenv("KANBANAI_CONFIG", path)
	t.Setenv("KANBANAI_HTTP_ADDR", "")
	var err error
	cfg, err = config.Load(path)
	require.NoError(t, err)
	cfg.HTTP.Addr = ":9999"

	var out bytes.Buffer
	require.NoError(t, writeConfig(&out, path, false))
	require.Contains(t, out.String(), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), ":9999")

	require.ErrorContains(t, writeConfig(&out, path, false), "already exists")

	cfg.HTTP.Addr = ":7777"
	require.NoError(t, writeConfig(&out, path, true))
	got, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7777", got.HTTP.Addr)
}
