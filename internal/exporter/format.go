package exporter

import (
	"fmt"
	"time"
)

// formatFloat formats a float64 with exactly 2 decimal places so values
// like 13.4 appear as 13.40 in reports.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int64 for report output.
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}

// formatDate formats a date column; a zero date becomes an empty cell.
func formatDate(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format("2006-01-02")
}
