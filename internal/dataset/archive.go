package dataset

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Fatal load-time failures. Any of these aborts the whole load; there is no
// partial-table fallback. Wrapped errors keep the archive path as context,
// use errors.Is to classify.
var (
	// ErrArchiveMissing indicates the archive path does not exist.
	ErrArchiveMissing = errors.New("archive file does not exist")
	// ErrNoTabularEntry indicates the archive holds no CSV entry at all.
	ErrNoTabularEntry = errors.New("archive contains no csv entry")
	// ErrEmptyPayload indicates the selected CSV entry has zero size.
	ErrEmptyPayload = errors.New("csv entry is empty")
)

// TabularPayload is the raw parsed content of one archive's dominant CSV
// entry: a header row and the data rows, untyped.
type TabularPayload struct {
	EntryName string
	Header    []string
	Rows      [][]string
}

// ExtractTabularPayload opens the zip archive at path, selects the largest
// CSV entry by uncompressed size and parses it in-memory, without extracting
// to disk. Largest-entry selection is a policy choice: when an archive also
// carries metadata or sample CSVs, the dominant one is the dataset.
func ExtractTabularPayload(path string) (*TabularPayload, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrArchiveMissing, path)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer zr.Close()

	var best *zip.File
	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			continue
		}
		if best == nil || f.UncompressedSize64 > best.UncompressedSize64 {
			best = f
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTabularEntry, path)
	}
	if best.UncompressedSize64 == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrEmptyPayload, best.Name, path)
	}

	slog.Debug("selected csv entry",
		slog.String("archive", path),
		slog.String("entry", best.Name),
		slog.Uint64("size", best.UncompressedSize64))

	rc, err := best.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open csv entry %s: %w", best.Name, err)
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv entry %s: %w", best.Name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrEmptyPayload, best.Name, path)
	}

	return &TabularPayload{
		EntryName: best.Name,
		Header:    records[0],
		Rows:      records[1:],
	}, nil
}
