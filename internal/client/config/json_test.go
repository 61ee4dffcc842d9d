package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"server_base_url": "http://api.example:9000",
		"session_db_path": "/var/lib/notes.db",
		"request_timeout": "4s",
		"ephemeral":       true,
		"log_level":       "info",
	})
	partial := writeTempJSON(t, dir, "partial.json", map[string]any{
		"server_base_url": "http://partial",
	})

	t.Run("loads every field", func(t *testing.T) {
		cfg := &Config{}
		parseJson(cfg, []string{"-config", full})

		assert.Equal(t, "http://api.example:9000", cfg.ServerBaseURL)
		assert.Equal(t, "/var/lib/notes.db", cfg.SessionDBPath)
		assert.Equal(t, 4*time.Second, cfg.RequestTimeout)
		assert.True(t, cfg.Ephemeral)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("absent fields keep defaults", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, []string{"-c", partial})

		assert.Equal(t, "http://partial", cfg.ServerBaseURL)
		assert.Equal(t, "notes_session.db", cfg.SessionDBPath)
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	})

	t.Run("no config flag leaves config untouched", func(t *testing.T) {
		cfg := &Config{ServerBaseURL: "defaults"}
		parseJson(cfg, []string{"-a", "x"})

		assert.Equal(t, "defaults", cfg.ServerBaseURL)
	})

	t.Run("comments and trailing commas", func(t *testing.T) {
		commented := filepath.Join(dir, "commented.jsonc")
		require.NoError(t, os.WriteFile(commented, []byte(`{
  // staging API
  "server_base_url": "http://staging:8000",
  /* keep requests short */
  "request_timeout": "2s",
}`), 0o600))

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, []string{"-c", commented})

		assert.Equal(t, "http://staging:8000", cfg.ServerBaseURL)
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", bad}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", filepath.Join(dir, "nope.json")}) })
	})
}
