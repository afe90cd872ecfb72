package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "origin", cfg.Git.Remote)
	assert.Contains(t, cfg.Git.ProtectedBranches, "main")
	assert.Contains(t, cfg.Git.ProtectedBranches, "staging")
	assert.Greater(t, cfg.Git.NetworkTimeout, cfg.Git.LocalTimeout)
	assert.Equal(t, "auto", cfg.Hosting.Provider)
}

func TestLoadOverridesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("git.remote", "upstream")
	viper.Set("git.local_timeout", "3s")
	viper.Set("git.protected_branches", []string{"trunk"})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "upstream", cfg.Git.Remote)
	assert.Equal(t, 3*time.Second, cfg.Git.LocalTimeout)
	assert.Equal(t, []string{"trunk"}, cfg.Git.ProtectedBranches)
	// Untouched fields keep their defaults.
	assert.Equal(t, 2*time.Minute, cfg.Git.NetworkTimeout)
}

func TestWriteRoundTrip(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), ".treefort", "config.yaml")
	require.NoError(t, Write(Default(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "protected_branches")

	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Git.Remote, cfg.Git.Remote)
	assert.Equal(t, Default().Git.ProtectedBranches, cfg.Git.ProtectedBranches)
}

func TestIsProtectedBranch(t *testing.T) {
	g := Default().Git
	assert.True(t, g.IsProtectedBranch("main"))
	assert.True(t, g.IsProtectedBranch("production"))
	assert.False(t, g.IsProtectedBranch("feature/login"))
}
