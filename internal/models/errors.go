package models

import "errors"

// Error taxonomy for portfolio operations. The portfolio service is the
// boundary that converts internal failures into one of these kinds;
// persistence errors pass through wrapped and uninterpreted.
var (
	// ErrInvalidInput indicates bad user-supplied fields (recoverable,
	// surfaced to the user for correction).
	ErrInvalidInput = errors.New("invalid input")

	// ErrQuoteUnavailable indicates the market-data fetch failed or
	// returned unusable data.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrNotFound indicates a referenced holding or portfolio is absent.
	ErrNotFound = errors.New("not found")
)
