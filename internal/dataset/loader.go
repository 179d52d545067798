package dataset

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing the date column. Anything
// that matches none of them degrades to a missing date, never an error.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"02/01/2006",
}

// Loader builds the unified sales table from the two configured archives.
// Loading is pure given the archive contents; Store adds memoization on top.
type Loader struct {
	part1  string
	part2  string
	logger *slog.Logger
}

// NewLoader creates a loader over the two archive paths. Rows of part1
// always precede rows of part2 in the unified table.
func NewLoader(part1, part2 string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		part1:  part1,
		part2:  part2,
		logger: logger.With(slog.String("component", "dataset_loader")),
	}
}

// Load extracts both archives and produces the unified table: part-1 rows
// first, then part-2 rows, with types normalized and calendar fields derived
// when the source lacks them. Archive-level failures abort the load; row
// values that fail to parse degrade to their documented defaults.
func (l *Loader) Load(ctx context.Context) (*SalesTable, error) {
	start := time.Now()

	p1, err := ExtractTabularPayload(l.part1)
	if err != nil {
		return nil, err
	}
	p2, err := ExtractTabularPayload(l.part2)
	if err != nil {
		return nil, err
	}

	columns := make(map[string]bool)
	rows := make([]SalesRecord, 0, len(p1.Rows)+len(p2.Rows))
	for _, p := range []*TabularPayload{p1, p2} {
		idx := indexColumns(p.Header, columns)
		for _, raw := range p.Rows {
			rows = append(rows, parseSalesRow(raw, idx))
		}
	}

	deriveCalendarFields(rows, columns)

	l.logger.InfoContext(ctx, "unified sales table loaded",
		slog.Int("part1_rows", len(p1.Rows)),
		slog.Int("part2_rows", len(p2.Rows)),
		slog.Int("total_rows", len(rows)),
		slog.Duration("elapsed", time.Since(start)))

	return NewSalesTable(rows, columns), nil
}

// columnIndex maps canonical column names to their position in one payload's
// header. Positions differ between the two archives, so each payload gets
// its own index.
type columnIndex map[string]int

// indexColumns resolves header positions and records column presence into
// the shared set. The stray stored-index column is not indexed, which drops
// it from the unified table.
func indexColumns(header []string, columns map[string]bool) columnIndex {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == strayIndexColumn {
			continue
		}
		key := strings.ToLower(name)
		idx[key] = i
		columns[key] = true
	}
	return idx
}

func parseSalesRow(raw []string, idx columnIndex) SalesRecord {
	field := func(name string) (string, bool) {
		i, ok := idx[name]
		if !ok || i >= len(raw) {
			return "", false
		}
		return strings.TrimSpace(raw[i]), true
	}

	rec := SalesRecord{}
	if v, ok := field(ColDate); ok {
		rec.Date = parseDate(v)
	}
	if v, ok := field(ColStoreNbr); ok {
		rec.StoreNbr = parseNullInt(v)
	}
	if v, ok := field(ColFamily); ok {
		rec.Family = v
	}
	if v, ok := field(ColSales); ok {
		rec.Sales = parseFloatDefault(v, 0.0)
	}
	if v, ok := field(ColOnPromotion); ok {
		rec.OnPromotion = parseIntDefault(v, 0)
	}
	if v, ok := field(ColState); ok {
		rec.State = v
	}
	if v, ok := field(ColCity); ok {
		rec.City = v
	}
	if v, ok := field(ColTransactions); ok {
		rec.Transactions = parseFloatDefault(v, 0.0)
	}
	if v, ok := field(ColYear); ok {
		rec.Year = int(parseIntDefault(v, 0))
	}
	if v, ok := field(ColMonth); ok {
		rec.Month = int(parseIntDefault(v, 0))
	}
	if v, ok := field(ColWeek); ok {
		rec.Week = int(parseIntDefault(v, 0))
	}
	if v, ok := field(ColDayOfWeek); ok {
		rec.DayOfWeek = v
	}
	return rec
}

// deriveCalendarFields fills year, month and week from the date for any of
// the three the source did not supply. Rows with a missing date keep zero
// values. Week numbering follows the ISO calendar.
func deriveCalendarFields(rows []SalesRecord, columns map[string]bool) {
	needYear := !columns[ColYear]
	needMonth := !columns[ColMonth]
	needWeek := !columns[ColWeek]
	if !needYear && !needMonth && !needWeek {
		return
	}

	for i := range rows {
		if rows[i].Date.IsZero() {
			continue
		}
		if needYear {
			rows[i].Year = rows[i].Date.Year()
		}
		if needMonth {
			rows[i].Month = int(rows[i].Date.Month())
		}
		if needWeek {
			_, week := rows[i].Date.ISOWeek()
			rows[i].Week = week
		}
	}

	if needYear {
		columns[ColYear] = true
	}
	if needMonth {
		columns[ColMonth] = true
	}
	if needWeek {
		columns[ColWeek] = true
	}
}

func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseNullInt(value string) NullInt64 {
	value = strings.ReplaceAll(value, ",", "")
	if value == "" {
		return NullInt64{}
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return NullInt64{Int64: n, Valid: true}
	}
	// Tolerate integral floats ("12.0"), a common artifact of re-exports.
	if f, err := strconv.ParseFloat(value, 64); err == nil && f == float64(int64(f)) {
		return NullInt64{Int64: int64(f), Valid: true}
	}
	return NullInt64{}
}

func parseFloatDefault(value string, def float64) float64 {
	value = strings.ReplaceAll(value, ",", "")
	if value == "" {
		return def
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return f
}

func parseIntDefault(value string, def int64) int64 {
	value = strings.ReplaceAll(value, ",", "")
	if value == "" {
		return def
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return int64(f)
	}
	return def
}
