package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadToken(t *testing.T) {
	t.Run("first line trimmed", func(t *testing.T) {
		path := writeFile(t, "token", "  1234~abcd  \nignored\n")

		token, err := ReadToken(path)

		require.NoError(t, err)
		assert.Equal(t, "1234~abcd", token)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := ReadToken(writeFile(t, "token", ""))
		require.ErrorIs(t, err, ErrEmptyToken)
	})

	t.Run("blank first line", func(t *testing.T) {
		_, err := ReadToken(writeFile(t, "token", "   \ntoken\n"))
		require.ErrorIs(t, err, ErrEmptyToken)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadToken(filepath.Join(t.TempDir(), "absent"))
		require.Error(t, err)
	})
}

func TestNew(t *testing.T) {
	t.Run("file values with defaults for the rest", func(t *testing.T) {
		path := writeFile(t, "config.yaml", `
logger:
  level: debug
issuance:
  concurrency: 8
`)

		cfg, err := New(path)

		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Logger.Level)
		assert.Equal(t, 8, cfg.Issuance.Concurrency)
		assert.Equal(t, "https://unr.canvaslms.com", cfg.Canvas.BaseURL)
		assert.Equal(t, 30*time.Second, cfg.Canvas.Timeout)
		assert.Equal(t, 100, cfg.Canvas.PerPage)
		assert.Equal(t, 8089, cfg.Sandbox.Port)
	})

	t.Run("environment only", func(t *testing.T) {
		t.Setenv("ISSUANCE_CONCURRENCY", "2")
		t.Setenv("CANVAS_BASE_URL", "http://127.0.0.1:9999")

		cfg, err := New("")

		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Issuance.Concurrency)
		assert.Equal(t, "http://127.0.0.1:9999", cfg.Canvas.BaseURL)
		assert.Equal(t, "info", cfg.Logger.Level)
	})

	t.Run("bundled example parses", func(t *testing.T) {
		cfg, err := New(filepath.Join("..", "..", "configs", "config.yaml"))

		require.NoError(t, err)
		assert.Equal(t, "sandbox-token", cfg.Sandbox.Token)
		assert.Equal(t, 4, cfg.Issuance.Concurrency)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
}

func TestUsage(t *testing.T) {
	usage := Usage()

	assert.Contains(t, usage, "ISSUANCE_CONCURRENCY")
	assert.Contains(t, usage, "CANVAS_BASE_URL")
}
