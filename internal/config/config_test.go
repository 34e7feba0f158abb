package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/docstore/internal/schema"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "docstore.yaml", `
database: postgres://localhost/docs
log:
  level: debug
  format: json
tables:
  - name: protocols
    indexes: [active, kind]
  - name: counters
    primary_key: n
    primary_key_type: INTEGER
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/docs", cfg.Database)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	require.Len(t, cfg.Tables, 2)
	assert.Equal(t, schema.Definition{TableName: "protocols", Indexes: []string{"active", "kind"}}, cfg.Tables[0])

	counters, ok := cfg.Table("counters")
	require.True(t, ok)
	assert.Equal(t, "n", counters.PrimaryKey)
	assert.Equal(t, schema.KeyInteger, counters.PrimaryKeyType)

	_, ok = cfg.Table("missing")
	assert.False(t, ok)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "docstore.json", `{"tables": [{"name": "items", "json_schema": "{\"type\": \"object\"}"}]}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "docstore.db", cfg.Database)
	assert.Equal(t, "WARN", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	require.Len(t, cfg.Tables, 1)
	assert.Equal(t, `{"type": "object"}`, cfg.Tables[0].JSONSchema)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeFile(t, "docstore.yaml", "database: first.db\n")
	t.Setenv("DOCSTORE_DATABASE", "second.db")
	t.Setenv("DOCSTORE_LOG_LEVEL", "ERROR")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "second.db", cfg.Database)
	assert.Equal(t, "ERROR", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
