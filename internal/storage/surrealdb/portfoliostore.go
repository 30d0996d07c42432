package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/interfaces"
	"github.com/foliotrack/folio/internal/models"
)

// PortfolioStore implements interfaces.PortfolioStore using SurrealDB.
// Summaries live in portfolio_summary, holdings in stock_holding with a
// portfolio_id foreign reference.
type PortfolioStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewPortfolioStore creates a new PortfolioStore.
func NewPortfolioStore(db *surrealdb.DB, logger *common.Logger) *PortfolioStore {
	return &PortfolioStore{db: db, logger: logger}
}

func (s *PortfolioStore) GetSummaryByOwner(ctx context.Context, ownerID string) (*models.PortfolioSummary, error) {
	sql := "SELECT * FROM portfolio_summary WHERE owner_id = $owner_id LIMIT 1"
	vars := map[string]any{"owner_id": ownerID}

	results, err := surrealdb.Query[[]models.PortfolioSummary](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio summary: %w", err)
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return &(*results)[0].Result[0], nil
	}
	return nil, fmt.Errorf("portfolio summary for owner %s: %w", ownerID, models.ErrNotFound)
}

func (s *PortfolioStore) SaveSummary(ctx context.Context, summary *models.PortfolioSummary) error {
	sql := `UPSERT $rid SET
		summary_id = $id, owner_id = $owner_id,
		total_value = $total_value, last_updated = $last_updated`
	vars := map[string]any{
		"rid":          surrealmodels.NewRecordID("portfolio_summary", summary.ID),
		"id":           summary.ID,
		"owner_id":     summary.OwnerID,
		"total_value":  summary.TotalValue,
		"last_updated": summary.LastUpdated,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save portfolio summary: %w", err)
	}
	return nil
}

func (s *PortfolioStore) GetHolding(ctx context.Context, id string) (*models.Holding, error) {
	record, err := surrealdb.Select[models.Holding](ctx, s.db, surrealmodels.NewRecordID("stock_holding", id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("holding %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to select holding: %w", err)
	}
	if record == nil || record.ID == "" {
		return nil, fmt.Errorf("holding %s: %w", id, models.ErrNotFound)
	}
	return record, nil
}

func (s *PortfolioStore) InsertHolding(ctx context.Context, holding *models.Holding) error {
	return s.upsertHolding(ctx, holding, "insert")
}

func (s *PortfolioStore) UpdateHolding(ctx context.Context, holding *models.Holding) error {
	return s.upsertHolding(ctx, holding, "update")
}

func (s *PortfolioStore) upsertHolding(ctx context.Context, holding *models.Holding, op string) error {
	sql := `UPSERT $rid SET
		holding_id = $id, portfolio_id = $portfolio_id, symbol = $symbol,
		shares = $shares, purchase_price = $purchase_price,
		current_price = $current_price, company_name = $company_name,
		updated_at = $updated_at`
	vars := map[string]any{
		"rid":            surrealmodels.NewRecordID("stock_holding", holding.ID),
		"id":             holding.ID,
		"portfolio_id":   holding.PortfolioID,
		"symbol":         holding.Symbol,
		"shares":         holding.Shares,
		"purchase_price": holding.PurchasePrice,
		"current_price":  holding.CurrentPrice,
		"company_name":   holding.CompanyName,
		"updated_at":     holding.UpdatedAt,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to %s holding: %w", op, err)
	}
	return nil
}

// DeleteHolding removes a holding. A missing id is a no-op success so
// deletion stays safe under retry.
func (s *PortfolioStore) DeleteHolding(ctx context.Context, id string) error {
	_, err := surrealdb.Delete[models.Holding](ctx, s.db, surrealmodels.NewRecordID("stock_holding", id))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return nil
}

// ListHoldings returns all holdings of a portfolio ordered by symbol then id,
// a stable order for display.
func (s *PortfolioStore) ListHoldings(ctx context.Context, portfolioID string) ([]*models.Holding, error) {
	sql := "SELECT * FROM stock_holding WHERE portfolio_id = $portfolio_id ORDER BY symbol ASC, holding_id ASC"
	vars := map[string]any{"portfolio_id": portfolioID}

	results, err := surrealdb.Query[[]models.Holding](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.Holding
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}

// DeleteByPortfolio removes every holding of a portfolio (summary cascade).
func (s *PortfolioStore) DeleteByPortfolio(ctx context.Context, portfolioID string) (int, error) {
	sql := "DELETE stock_holding WHERE portfolio_id = $portfolio_id RETURN BEFORE"
	vars := map[string]any{"portfolio_id": portfolioID}

	results, err := surrealdb.Query[[]models.Holding](ctx, s.db, sql, vars)
	if err != nil {
		return 0, fmt.Errorf("failed to delete holdings by portfolio: %w", err)
	}

	count := 0
	if results != nil && len(*results) > 0 {
		count = len((*results)[0].Result)
	}
	return count, nil
}

// Compile-time check
var _ interfaces.PortfolioStore = (*PortfolioStore)(nil)
