package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs navctl with args. Command flags are package state, so the
// per-command flags are reset first.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	require.NoError(t, destinationsCmd.Flags().Set("width", "-1"))
	require.NoError(t, destinationsCmd.Flags().Set("role", ""))
	require.NoError(t, mainCmd.Flags().Set("role", ""))
	require.NoError(t, rootCmd.PersistentFlags().Set("config", ""))

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestMainCommand(t *testing.T) {
	out, _, err := execute(t, "main", "--role", "client")
	require.NoError(t, err)
	assert.Equal(t, "billing/overview (feature billing, priority)\n", out)

	out, _, err = execute(t, "main")
	require.NoError(t, err)
	assert.Equal(t, "no main destination\n", out)

	_, _, err = execute(t, "main", "--role", "root")
	assert.Error(t, err)
}

func TestDestinationsCommand(t *testing.T) {
	out, _, err := execute(t, "destinations", "--role", "AGENT")
	require.NoError(t, err)
	assert.Contains(t, out, "requests/queue")
	assert.NotContains(t, out, "billing/overview")

	out, _, err = execute(t, "destinations", "--role", "ADMIN", "--width", "1024")
	require.NoError(t, err)
	assert.Contains(t, out, "surface: side_rail")
	assert.Contains(t, out, "user/roles")
	assert.NotContains(t, out, "user/directory")
}

func TestCatalogWithManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navshell.yaml")
	doc := `navigation:
  priority:
    reports: 0
  features:
    - id: reports
      main: true
      roles: [client]
      destinations:
        - route: reports/summary
          placement: bottom_bar
    - id: billing
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	out, errOut, err := execute(t, "catalog", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "reports")
	assert.Contains(t, errOut, "duplicate feature id")

	out, _, err = execute(t, "main", "--role", "CLIENT", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "reports/summary (feature reports, priority)\n", out)
}
