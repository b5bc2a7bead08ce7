package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

// clearEnv isolates a test from variables set in the developer's shell.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"GITHUB_TOKEN", "GH_TOKEN", "CGMANIFEST_ORG", "CGMANIFEST_CONCURRENCY", "CGMANIFEST_BRANCH"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "token-from-env")

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "token-from-env", cfg.Token)
	assert.Equal(t, DefaultOrg, cfg.Org)
	assert.Equal(t, DefaultOrg, cfg.Owner())
	assert.Equal(t, DefaultSchemaURL, cfg.SchemaURL)
	assert.Equal(t, DefaultBranch, cfg.Branch)
	assert.Equal(t, DefaultTitle, cfg.Title)
	assert.Equal(t, DefaultManifest, cfg.Manifest)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.True(t, cfg.FailFast)
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, "local.env")
	require.NoError(t, os.WriteFile(envFile, []byte("GITHUB_TOKEN=file-token\nCGMANIFEST_ORG=file-org\nCGMANIFEST_BRANCH=file-branch\nUNRELATED=1\n"), 0o600))
	t.Setenv("CGMANIFEST_ORG", "env-org")

	cfg, err := Load(newFlags(t, "--env-file", envFile, "--branch", "flag-branch", "--continue-on-error"))
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Token)
	assert.Equal(t, "env-org", cfg.Org)
	assert.Equal(t, "flag-branch", cfg.Branch)
	assert.False(t, cfg.FailFast)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(t *testing.T)
		args  []string
	}{
		{
			name:  "missing token",
			setup: func(t *testing.T) {},
		},
		{
			name: "explicit env file missing",
			setup: func(t *testing.T) {
				t.Setenv("GITHUB_TOKEN", "x")
			},
			args: []string{"--env-file", "does-not-exist.env"},
		},
		{
			name: "bad concurrency",
			setup: func(t *testing.T) {
				t.Setenv("GITHUB_TOKEN", "x")
			},
			args: []string{"--concurrency", "0"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			tc.setup(t)
			_, err := Load(newFlags(t, tc.args...))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingTokenIsSentinel(t *testing.T) {
	clearEnv(t)
	_, err := Load(nil)
	assert.ErrorIs(t, err, ErrMissingToken)
}
