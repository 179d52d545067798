package dataset

import "time"

// txKey identifies one (date, store_nbr) group. A missing store number is
// its own key value, so rows without a store collapse together per date.
type txKey struct {
	date       time.Time
	store      int64
	storeValid bool
}

// BuildTransactions derives the transactions table from the unified sales
// table. The transactions count is store-and-date level but the source
// repeats it on every product-family row of that store and date; summing it
// over the sales table multi-counts by the family fan-out. This projection
// keeps the first row of each (date, store_nbr) group, so sums over the
// result are correct.
//
// Only the columns {date, store_nbr, state, city, transactions, year} that
// exist in the input survive; the function never fails.
func BuildTransactions(sales *SalesTable) *TransactionTable {
	projected := []string{ColDate, ColStoreNbr, ColState, ColCity, ColTransactions, ColYear}
	columns := make(map[string]bool, len(projected))
	for _, name := range projected {
		if sales.HasColumn(name) {
			columns[name] = true
		}
	}

	seen := make(map[txKey]struct{})
	rows := make([]TransactionRecord, 0)
	for _, r := range sales.Rows {
		key := txKey{date: r.Date, store: r.StoreNbr.Int64, storeValid: r.StoreNbr.Valid}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		rec := TransactionRecord{
			Date:     r.Date,
			StoreNbr: r.StoreNbr,
			Year:     r.Year,
		}
		if columns[ColState] {
			rec.State = r.State
		}
		if columns[ColCity] {
			rec.City = r.City
		}
		if columns[ColTransactions] {
			rec.Transactions = r.Transactions
		}
		rows = append(rows, rec)
	}

	return &TransactionTable{Rows: rows, columns: columns}
}
