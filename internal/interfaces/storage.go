package interfaces

import (
	"context"

	"github.com/foliotrack/folio/internal/models"
)

// StorageManager coordinates storage backends and owns the connection.
type StorageManager interface {
	PortfolioStore() PortfolioStore
	Close() error
}

// PortfolioStore persists portfolio summaries and stock holdings.
// Storage failures surface wrapped and uninterpreted; the caller does not
// retry writes.
type PortfolioStore interface {
	// Summaries
	GetSummaryByOwner(ctx context.Context, ownerID string) (*models.PortfolioSummary, error)
	SaveSummary(ctx context.Context, summary *models.PortfolioSummary) error

	// Holdings
	GetHolding(ctx context.Context, id string) (*models.Holding, error)
	InsertHolding(ctx context.Context, holding *models.Holding) error
	UpdateHolding(ctx context.Context, holding *models.Holding) error
	// DeleteHolding removes a holding. A missing id is not an error.
	DeleteHolding(ctx context.Context, id string) error
	// ListHoldings returns all holdings of a portfolio in a stable order.
	ListHoldings(ctx context.Context, portfolioID string) ([]*models.Holding, error)
	// DeleteByPortfolio cascades a summary deletion to its holdings.
	DeleteByPortfolio(ctx context.Context, portfolioID string) (int, error)
}
