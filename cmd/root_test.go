package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"run", "discover", "profile", "import", "export", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "lead-scout", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestProfileCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range profileCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["build"])
	assert.True(t, names["purge"])
	assert.True(t, names["flush"])
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}

func TestRequestFlags_Build(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var f requestFlags
	f.register(cmd)

	require.NoError(t, cmd.Flags().Parse([]string{
		"--industry", "logistica",
		"--province", "Milano", "--province", "Bergamo",
		"--window", "3,5",
		"--limit", "12",
		"--no-profile",
		"--drafts",
	}))

	req, err := f.build(cmd)
	require.NoError(t, err)
	assert.Equal(t, "logistica", req.Industry)
	assert.Equal(t, []string{"Milano", "Bergamo"}, req.Geography.Provinces)
	assert.Equal(t, []int{3, 5}, req.InvestmentWindowMonths)
	assert.Equal(t, 12, req.Limit)
	require.NotNil(t, req.EnableProjectProfile)
	assert.False(t, *req.EnableProjectProfile)
	assert.True(t, req.IncludeEmailDrafts)
	assert.Empty(t, req.Preset)
}

func TestRequestFlags_FileWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"industry": "retail",
		"geography": {"country": "Italia", "provinces": ["Torino"]},
		"limit": 40,
		"preset": "ict"
	}`), 0o644))

	cmd := &cobra.Command{Use: "test"}
	var f requestFlags
	f.register(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{"--request", path, "--limit", "5"}))

	req, err := f.build(cmd)
	require.NoError(t, err)
	assert.Equal(t, "retail", req.Industry)
	assert.Equal(t, []string{"Torino"}, req.Geography.Provinces)
	assert.Equal(t, 5, req.Limit)
	assert.Equal(t, "ict", req.Preset)

	f.file = filepath.Join(t.TempDir(), "missing.json")
	_, err = f.build(cmd)
	require.Error(t, err)
}

func TestReadLeads(t *testing.T) {
	dir := t.TempDir()
	arr := filepath.Join(dir, "arr.json")
	obj := filepath.Join(dir, "obj.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(arr, []byte(`[{"company":{"company_name":"Alfa"}}]`), 0o644))
	require.NoError(t, os.WriteFile(obj, []byte(` {"run_id":"abc","leads":[{"company":{"company_name":"Beta"}},{"company":{"company_name":"Gamma"}}]}`), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte(`{leads`), 0o644))

	leads, err := readLeads(arr)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Alfa", leads[0].Company.Name)

	leads, err = readLeads(obj)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "Gamma", leads[1].Company.Name)

	_, err = readLeads(bad)
	require.Error(t, err)
}

func TestWriteJSONOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, writeJSONOut(path, map[string]int{"leads": 3}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"leads":3}`, string(data))
}
