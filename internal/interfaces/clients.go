// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/foliotrack/folio/internal/models"
)

// QuoteClient provides point-in-time market quotes for ticker symbols.
type QuoteClient interface {
	// GetQuote retrieves a full quote for a symbol. The client uppercases
	// the symbol before issuing. Transport errors, malformed responses,
	// and unknown symbols all surface as models.ErrQuoteUnavailable.
	// No internal retries.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// GetPrice retrieves only the current price for a symbol, with the
	// same failure semantics as GetQuote.
	GetPrice(ctx context.Context, symbol string) (float64, error)
}
