package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-catalog/library"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"CATALOG_SEED_FILE", "CATALOG_EXPORT_DIR", "CATALOG_LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	// Keep a stray .env in the working directory out of the test.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), err
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := runCmd(t, "export", "--format", "csv", "--export-dir", dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "library_books.csv")
	assert.Contains(t, out, "Exported 8 books to "+path)

	snaps, err := library.ImportFile(path)
	require.NoError(t, err)
	assert.Equal(t, library.SampleBooks(), snaps)
}

func TestExportCommandFromSeed(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "seed.json")
	require.NoError(t, library.ExportFile(seed, library.FormatJSON, library.SampleBooks()[:3]))

	dst := filepath.Join(dir, "copy.db")
	_, err := runCmd(t, "export", "--seed", seed, "--format", "sqlite", "--out", dst)
	require.NoError(t, err)

	snaps, err := library.ImportFile(dst)
	require.NoError(t, err)
	assert.Equal(t, library.SampleBooks()[:3], snaps)
}

func TestExportCommandErrors(t *testing.T) {
	_, err := runCmd(t, "export", "--format", "xml")
	assert.Error(t, err)

	_, err = runCmd(t, "export", "--seed", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = runCmd(t, "export", "--log-level", "loud")
	assert.Error(t, err)
}
