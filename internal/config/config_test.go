package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "data", c.Storage.DataDir)
	assert.Equal(t, "info", c.Logging.Level)
	assert.False(t, c.Storage.InMemory)
}

func TestLoad_FileValuesWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noject.yml")
	body := []byte("server:\n  addr: \":9090\"\nstorage:\n  data_dir: /var/lib/noject\n  sync_writes: true\nlogging:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, "/var/lib/noject", c.Storage.DataDir)
	assert.True(t, c.Storage.SyncWrites)
	assert.Equal(t, "debug", c.Logging.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noject.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o644))

	t.Setenv("NOJECT_ADDR", ":7070")
	t.Setenv("NOJECT_IN_MEMORY", "true")
	t.Setenv("NOJECT_LOG_LEVEL", "warn")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", c.Server.Addr)
	assert.True(t, c.Storage.InMemory)
	assert.Equal(t, "warn", c.Logging.Level)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noject.yml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
