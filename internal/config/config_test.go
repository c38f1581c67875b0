package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderMock, cfg.Provider)
	assert.Equal(t, BackendFile, cfg.Snapshot.Backend)
	assert.Equal(t, filepath.Join(".questgen", "snapshot.json"), cfg.SnapshotPath())
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "questgen.yaml")
	require.NoError(t, os.WriteFile(file, []byte("provider: gemini\nsnapshot:\n  backend: sqlite\n"), 0o644))
	t.Setenv("QUESTGEN_PROVIDER", "openai")

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider, "env wins over file")
	assert.Equal(t, BackendSQLite, cfg.Snapshot.Backend, "file wins over defaults")
}

func TestUnknownProviderRejected(t *testing.T) {
	t.Setenv("QUESTGEN_PROVIDER", "oracle")
	_, err := Load("")
	assert.ErrorContains(t, err, "unknown provider")
}

func TestMissingExplicitFileRejected(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
