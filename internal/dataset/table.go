package dataset

import (
	"time"
)

// Canonical column names as they appear in the source CSV headers.
const (
	ColDate         = "date"
	ColStoreNbr     = "store_nbr"
	ColFamily       = "family"
	ColSales        = "sales"
	ColOnPromotion  = "onpromotion"
	ColState        = "state"
	ColCity         = "city"
	ColTransactions = "transactions"
	ColYear         = "year"
	ColMonth        = "month"
	ColWeek         = "week"
	ColDayOfWeek    = "day_of_week"

	// strayIndexColumn is the artifact pandas-style exports leave behind
	// when a frame is saved with its index. It is dropped on load.
	strayIndexColumn = "Unnamed: 0"
)

// NullInt64 is a nullable integer used for store_nbr, where an unparseable
// value degrades to missing rather than zero.
type NullInt64 struct {
	Int64 int64
	Valid bool
}

// SalesRecord is one row of the unified sales table. A zero Date means the
// source value was missing or unparseable.
type SalesRecord struct {
	Date         time.Time `json:"date"`
	StoreNbr     NullInt64 `json:"store_nbr"`
	Family       string    `json:"family"`
	Sales        float64   `json:"sales"`
	OnPromotion  int64     `json:"onpromotion"`
	State        string    `json:"state"`
	City         string    `json:"city"`
	Transactions float64   `json:"transactions"`
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	Week         int       `json:"week"`
	DayOfWeek    string    `json:"day_of_week,omitempty"`
}

// SalesTable is the unified dataset: the row-wise concatenation of both
// source archives, re-indexed contiguously (row i is simply Rows[i]).
// The table is immutable after load; filters return copies.
type SalesTable struct {
	Rows    []SalesRecord
	columns map[string]bool
}

// NewSalesTable builds a table over rows, recording which source columns
// were actually present. Optional-column aggregates check presence before
// computing anything.
func NewSalesTable(rows []SalesRecord, columns map[string]bool) *SalesTable {
	cols := make(map[string]bool, len(columns))
	for name, present := range columns {
		if present {
			cols[name] = true
		}
	}
	return &SalesTable{Rows: rows, columns: cols}
}

// HasColumn reports whether the source data carried the named column.
// Derived calendar columns count as present once the loader fills them.
func (t *SalesTable) HasColumn(name string) bool {
	return t.columns[name]
}

// Columns returns the set of present columns. The returned map is a copy.
func (t *SalesTable) Columns() map[string]bool {
	cols := make(map[string]bool, len(t.columns))
	for name := range t.columns {
		cols[name] = true
	}
	return cols
}

// Len returns the number of rows.
func (t *SalesTable) Len() int {
	return len(t.Rows)
}

// TransactionRecord is one row of the deduplicated transactions table:
// exactly one row per (date, store_nbr) pair from the unified table.
type TransactionRecord struct {
	Date         time.Time `json:"date"`
	StoreNbr     NullInt64 `json:"store_nbr"`
	State        string    `json:"state"`
	City         string    `json:"city"`
	Transactions float64   `json:"transactions"`
	Year         int       `json:"year"`
}

// TransactionTable holds the per-(date,store) transaction counts. All
// transaction-count aggregates must come from here, never from the sales
// table, which repeats the count once per product family.
type TransactionTable struct {
	Rows    []TransactionRecord
	columns map[string]bool
}

// HasColumn reports whether the named column survived the projection.
func (t *TransactionTable) HasColumn(name string) bool {
	return t.columns[name]
}

// Len returns the number of rows.
func (t *TransactionTable) Len() int {
	return len(t.Rows)
}
