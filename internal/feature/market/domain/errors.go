// Package domain defines domain-level errors for the market feature.
package domain

import "errors"

// Domain errors for market data operations.
// These errors represent business logic failures and should be handled appropriately by upper layers.
var (
	// ErrInvalidRange indicates that a caller-supplied window or date range is
	// inconsistent or out of bounds. It is always surfaced, never silently corrected.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInsufficientData indicates that an aggregate was requested over zero rows.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidSeries indicates that series rows are malformed or out of order.
	// This is typically returned when an upstream payload fails validation.
	ErrInvalidSeries = errors.New("invalid series")
)
