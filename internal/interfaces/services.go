package interfaces

import (
	"context"

	"github.com/foliotrack/folio/internal/models"
)

// PortfolioService orchestrates holding mutations, quote refresh, and
// summary recomputation. Every mutation recomputes and persists the
// summary total within the same logical operation.
type PortfolioService interface {
	// GetPortfolio returns the owner's portfolio read model, creating the
	// summary lazily on first access.
	GetPortfolio(ctx context.Context, ownerID string) (*models.PortfolioView, error)

	// AddHolding validates input, fetches a quote, persists the new
	// holding, and recomputes the summary. A failed quote aborts the
	// operation with no persisted side effect.
	AddHolding(ctx context.Context, ownerID, symbol string, shares, purchasePrice float64) (*models.Holding, error)

	// EditHolding replaces a holding's fields atomically from the
	// caller's perspective, always re-quoting the (possibly unchanged)
	// symbol, then recomputes the summary.
	EditHolding(ctx context.Context, ownerID, id, symbol string, shares, purchasePrice float64) (*models.Holding, error)

	// DeleteHolding removes a holding and recomputes the summary.
	// Deleting a non-existent id is a no-op success.
	DeleteHolding(ctx context.Context, ownerID, id string) error

	// RefreshAll re-fetches quotes for every distinct held symbol,
	// isolating per-symbol failures, then recomputes the summary once.
	RefreshAll(ctx context.Context, ownerID string) (*models.RefreshReport, error)
}
