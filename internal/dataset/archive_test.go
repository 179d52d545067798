package dataset_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/dataset"
	"salespulse/internal/shared/testutil"
)

func TestExtractTabularPayload_MissingArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.zip")

	_, err := dataset.ExtractTabularPayload(path)

	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrArchiveMissing)
	assert.Contains(t, err.Error(), path)
}

func TestExtractTabularPayload_NoCSVEntry(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteZipArchive(t, dir, "no_csv.zip",
		testutil.ZipEntry{Name: "readme.txt", Content: "not tabular"},
		testutil.ZipEntry{Name: "img/logo.png", Content: "binary-ish"},
	)

	_, err := dataset.ExtractTabularPayload(path)

	assert.ErrorIs(t, err, dataset.ErrNoTabularEntry)
}

func TestExtractTabularPayload_EmptyCSVEntry(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteZipArchive(t, dir, "empty.zip",
		testutil.ZipEntry{Name: "sales.csv", Content: ""},
	)

	_, err := dataset.ExtractTabularPayload(path)

	assert.ErrorIs(t, err, dataset.ErrEmptyPayload)
}

func TestExtractTabularPayload_PicksLargestCSV(t *testing.T) {
	dir := t.TempDir()
	small := "date,sales\n2023-01-01,1\n"
	large := "date,sales\n2023-01-01,10\n2023-01-02,20\n2023-01-03,30\n"
	path := testutil.WriteZipArchive(t, dir, "multi.zip",
		testutil.ZipEntry{Name: "sample.csv", Content: small},
		testutil.ZipEntry{Name: "data/FULL.CSV", Content: large},
		testutil.ZipEntry{Name: "notes.txt", Content: "ignore me"},
	)

	payload, err := dataset.ExtractTabularPayload(path)

	require.NoError(t, err)
	assert.Equal(t, "data/FULL.CSV", payload.EntryName)
	assert.Equal(t, []string{"date", "sales"}, payload.Header)
	assert.Len(t, payload.Rows, 3)
}

func TestExtractTabularPayload_RaggedRowsTolerated(t *testing.T) {
	dir := t.TempDir()
	content := "date,store_nbr,sales\n2023-01-01,1,10.5\n2023-01-02,2\n"
	path := testutil.WriteSalesArchive(t, dir, "ragged.zip", content)

	payload, err := dataset.ExtractTabularPayload(path)

	require.NoError(t, err)
	require.Len(t, payload.Rows, 2)
	assert.Len(t, payload.Rows[1], 2)
}
