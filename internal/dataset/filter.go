package dataset

import "time"

// DateRange is a caller-supplied inclusive filter window. To covers the
// whole end day: a row stamped anywhere on To's calendar day is in range.
// A zero From or To leaves that side unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether ts falls inside the range. Missing dates are
// never in range.
func (r DateRange) Contains(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	if !r.From.IsZero() && ts.Before(startOfDay(r.From)) {
		return false
	}
	if !r.To.IsZero() && !ts.Before(startOfDay(r.To).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// IsZero reports whether the range is unbounded on both sides.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

func startOfDay(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
}

// FilterSales returns a new table holding the rows within the range. The
// base table is never mutated; column presence carries over.
func FilterSales(t *SalesTable, rng DateRange) *SalesTable {
	if rng.IsZero() {
		rows := make([]SalesRecord, len(t.Rows))
		copy(rows, t.Rows)
		return &SalesTable{Rows: rows, columns: t.columns}
	}
	rows := make([]SalesRecord, 0, len(t.Rows))
	for _, r := range t.Rows {
		if rng.Contains(r.Date) {
			rows = append(rows, r)
		}
	}
	return &SalesTable{Rows: rows, columns: t.columns}
}

// FilterTransactions is FilterSales for the transactions table.
func FilterTransactions(t *TransactionTable, rng DateRange) *TransactionTable {
	if rng.IsZero() {
		rows := make([]TransactionRecord, len(t.Rows))
		copy(rows, t.Rows)
		return &TransactionTable{Rows: rows, columns: t.columns}
	}
	rows := make([]TransactionRecord, 0, len(t.Rows))
	for _, r := range t.Rows {
		if rng.Contains(r.Date) {
			rows = append(rows, r)
		}
	}
	return &TransactionTable{Rows: rows, columns: t.columns}
}
