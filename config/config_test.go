package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	prev, had := os.LookupEnv(key)
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() {
		if had {
			os.Setenv(key, prev)
		}
	})
}

func TestLoadFallsBackToHomeDirectory(t *testing.T) {
	t.Setenv("RSC_ENV", "testenv")
	unsetEnv(t, "RSC_INSTALL_DIR")
	unsetEnv(t, "RSC_SCRIPTS_DIR")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "testenv", cfg.EnvName)
	assert.Contains(t, cfg.InstallDir, "testenv")
}

func TestLoadHonorsExplicitScriptsDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RSC_SCRIPTS_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.ScriptsDir)
}

func TestParseRCFile(t *testing.T) {
	contents := "# a comment\nexport RSC_DEBUG=false\nalias rs-fib='rsc run fib'\n\nexport RSC_SCRIPTS_DIR=/tmp/scripts\n"
	aliases, envVars := ParseRCFile(contents)
	require.Len(t, aliases, 1)
	assert.Equal(t, "alias rs-fib='rsc run fib'", aliases[0])
	assert.Equal(t, "false", envVars["RSC_DEBUG"])
	assert.Equal(t, "/tmp/scripts", envVars["RSC_SCRIPTS_DIR"])
}

func TestSaveAndLoadRCFileRoundTrips(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("RSC_ENV", "roundtrip")

	contents := "export RSC_DEBUG=true\n"
	require.NoError(t, SaveRCFile(contents))

	loaded, err := LoadRCFile()
	require.NoError(t, err)
	assert.Equal(t, contents, loaded)

	path, err := RCPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".rsc", "roundtrip", "rscrc"), path)
}
