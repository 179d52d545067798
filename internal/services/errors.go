package services

import "errors"

// Sentinel errors returned by the data service. Handlers map these to
// RFC 7807 responses.
var (
	// ErrStoreNotFound means the requested store has no rows in the
	// selected date range.
	ErrStoreNotFound = errors.New("store not found in the selected range")

	// ErrStateNotFound means the requested state has no rows in the
	// selected date range, or the dataset carries no state column.
	ErrStateNotFound = errors.New("state not found in the selected range")
)
