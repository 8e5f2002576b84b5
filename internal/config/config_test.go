package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepeatableFlags(t *testing.T) {
	cfg, err := Parse([]string{
		"-database", "postgres://primary",
		"-database_replica", "postgres://replica1",
		"-database_replica", "postgres://replica2",
		"-database_sandbox", "postgres://sandbox1",
		"-port", "9090",
		"-workers", "3",
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres://primary", cfg.Database)
	assert.Equal(t, []string{"postgres://replica1", "postgres://replica2"}, cfg.DatabaseReplicas)
	assert.Equal(t, []string{"postgres://sandbox1"}, cfg.DatabaseSandbox)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 3, cfg.Workers)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 1, cfg.Workers)
	assert.Empty(t, cfg.DatabaseReplicas)
}

func TestParseRejectsUnparseableNumericFlag(t *testing.T) {
	_, err := Parse([]string{"-port", "not-a-number"})
	assert.Error(t, err)
}

func TestLoadMatrixEmptyPathYieldsPublicEverywhere(t *testing.T) {
	m, err := LoadMatrix("")
	require.NoError(t, err)
	assert.Equal(t, "public", string(m.Lookup("anything")))
}

func TestLoadMatrixRejectsInvalidScopeValue(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "auth.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"feature.create": "superuser"}`), 0o644))

	_, err := LoadMatrix(p)
	assert.Error(t, err)
}

func TestLoadSchemaEmptyPathMeansNoValidation(t *testing.T) {
	v, err := LoadSchema("")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestLoadSchemaParsesValidDocument(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"type": "object"}`), 0o644))

	v, err := LoadSchema(p)
	require.NoError(t, err)
	assert.NotNil(t, v)
}
