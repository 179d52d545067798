// Package testutil provides shared helpers for building archive fixtures
// and capturing logs in tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ZipEntry is one file inside a fixture archive.
type ZipEntry struct {
	Name    string
	Content string
}

// WriteZipArchive writes a zip file with the given entries into dir and
// returns its path.
func WriteZipArchive(t *testing.T, dir, name string, entries ...ZipEntry) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.Content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

// WriteSalesArchive writes a single-entry zip holding one sales CSV.
func WriteSalesArchive(t *testing.T, dir, name, csvContent string) string {
	t.Helper()
	return WriteZipArchive(t, dir, name, ZipEntry{Name: "sales.csv", Content: csvContent})
}
