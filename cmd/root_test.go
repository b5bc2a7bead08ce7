package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Wiring(t *testing.T) {
	for _, name := range []string{"patch", "track"} {
		sub, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
	for _, flag := range []string{"verbose", "org", "owner", "env-file", "concurrency", "continue-on-error", "log-format"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
	assert.NotNil(t, trackCmd.Flags().Lookup("json"))
}

func TestRootCommand_MissingToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_TOKEN", "")
	t.Chdir(t.TempDir())

	rootCmd.SetArgs([]string{"track"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
}
