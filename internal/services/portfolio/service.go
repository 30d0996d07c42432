// Package portfolio provides portfolio management services
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/interfaces"
	"github.com/foliotrack/folio/internal/models"
	"github.com/foliotrack/folio/internal/valuation"
)

// Service implements PortfolioService. Every holding mutation is followed,
// within the same logical operation, by a summary recomputation over the
// authoritative post-write holding set read back from storage.
type Service struct {
	storage interfaces.StorageManager
	quotes  interfaces.QuoteClient
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
	newID   func() string
}

// NewService creates a new portfolio service
func NewService(storage interfaces.StorageManager, quotes interfaces.QuoteClient, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		quotes:  quotes,
		logger:  logger,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

func validateInput(symbol string, shares, purchasePrice float64) error {
	if strings.TrimSpace(symbol) == "" {
		return fmt.Errorf("%w: symbol is required", models.ErrInvalidInput)
	}
	if shares <= 0 {
		return fmt.Errorf("%w: shares must be positive", models.ErrInvalidInput)
	}
	if purchasePrice <= 0 {
		return fmt.Errorf("%w: purchase price must be positive", models.ErrInvalidInput)
	}
	return nil
}

// ensureSummary returns the owner's summary, creating it lazily on first
// access (value 0, timestamp now).
func (s *Service) ensureSummary(ctx context.Context, ownerID string) (*models.PortfolioSummary, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", models.ErrInvalidInput)
	}

	summary, err := s.storage.PortfolioStore().GetSummaryByOwner(ctx, ownerID)
	if err == nil {
		return summary, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	summary = &models.PortfolioSummary{
		ID:          s.newID(),
		OwnerID:     ownerID,
		TotalValue:  0,
		LastUpdated: s.now(),
	}
	if err := s.storage.PortfolioStore().SaveSummary(ctx, summary); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("owner", ownerID).
		Str("portfolio", summary.ID).
		Msg("Portfolio summary created")

	return summary, nil
}

// recomputeSummary re-reads the portfolio's holdings from storage and
// persists the recomputed total. Reading back after the write keeps the
// summary consistent with what was actually committed.
func (s *Service) recomputeSummary(ctx context.Context, summary *models.PortfolioSummary) error {
	holdings, err := s.storage.PortfolioStore().ListHoldings(ctx, summary.ID)
	if err != nil {
		return err
	}

	summary.TotalValue = valuation.TotalValue(holdings)
	summary.LastUpdated = s.now()

	return s.storage.PortfolioStore().SaveSummary(ctx, summary)
}

// GetPortfolio returns the owner's full read model, creating the summary
// lazily on first access. Derived fields are computed here; the
// presentation layer never computes them itself.
func (s *Service) GetPortfolio(ctx context.Context, ownerID string) (*models.PortfolioView, error) {
	summary, err := s.ensureSummary(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	holdings, err := s.storage.PortfolioStore().ListHoldings(ctx, summary.ID)
	if err != nil {
		return nil, err
	}

	view := &models.PortfolioView{
		Summary:    *summary,
		Holdings:   make([]models.HoldingView, 0, len(holdings)),
		Allocation: valuation.Allocation(holdings),
	}
	for _, h := range holdings {
		view.Holdings = append(view.Holdings, valuation.View(h))
	}
	if best, ok := valuation.BestPerformer(holdings); ok {
		bv := valuation.View(best)
		view.BestPerformer = &bv
	}

	return view, nil
}

// AddHolding validates input, fetches a quote, persists the new holding,
// and recomputes the summary. A failed quote aborts the operation with no
// persisted side effect.
func (s *Service) AddHolding(ctx context.Context, ownerID, symbol string, shares, purchasePrice float64) (*models.Holding, error) {
	if err := validateInput(symbol, shares, purchasePrice); err != nil {
		return nil, err
	}

	summary, err := s.ensureSummary(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	quote, err := s.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	holding := &models.Holding{
		ID:            s.newID(),
		PortfolioID:   summary.ID,
		Symbol:        quote.Symbol,
		Shares:        shares,
		PurchasePrice: purchasePrice,
		CurrentPrice:  quote.CurrentPrice,
		CompanyName:   quote.Name,
		UpdatedAt:     s.now(),
	}

	if err := s.storage.PortfolioStore().InsertHolding(ctx, holding); err != nil {
		return nil, err
	}

	if err := s.recomputeSummary(ctx, summary); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("owner", ownerID).
		Str("symbol", holding.Symbol).
		Float64("shares", holding.Shares).
		Float64("price", holding.CurrentPrice).
		Msg("Holding added")

	return holding, nil
}

// EditHolding replaces the holding's fields atomically from the caller's
// perspective. The symbol is always re-quoted, even when unchanged, so
// every edit carries a fresh price.
func (s *Service) EditHolding(ctx context.Context, ownerID, id, symbol string, shares, purchasePrice float64) (*models.Holding, error) {
	if err := validateInput(symbol, shares, purchasePrice); err != nil {
		return nil, err
	}

	summary, err := s.ensureSummary(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.storage.PortfolioStore().GetHolding(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.PortfolioID != summary.ID {
		return nil, fmt.Errorf("holding %s: %w", id, models.ErrNotFound)
	}

	quote, err := s.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	updated := &models.Holding{
		ID:            existing.ID,
		PortfolioID:   existing.PortfolioID,
		Symbol:        quote.Symbol,
		Shares:        shares,
		PurchasePrice: purchasePrice,
		CurrentPrice:  quote.CurrentPrice,
		CompanyName:   quote.Name,
		UpdatedAt:     s.now(),
	}

	if err := s.storage.PortfolioStore().UpdateHolding(ctx, updated); err != nil {
		return nil, err
	}

	if err := s.recomputeSummary(ctx, summary); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("owner", ownerID).
		Str("holding", id).
		Str("symbol", updated.Symbol).
		Msg("Holding updated")

	return updated, nil
}

// DeleteHolding removes a holding and recomputes the summary over the
// remaining set. Deleting a non-existent id is a no-op success, which
// keeps deletion safe under retry.
func (s *Service) DeleteHolding(ctx context.Context, ownerID, id string) error {
	summary, err := s.ensureSummary(ctx, ownerID)
	if err != nil {
		return err
	}

	existing, err := s.storage.PortfolioStore().GetHolding(ctx, id)
	switch {
	case errors.Is(err, models.ErrNotFound):
		// Not found, nothing to do.
	case err != nil:
		return err
	case existing.PortfolioID != summary.ID:
		// Someone else's holding; treat like not found.
	default:
		if err := s.storage.PortfolioStore().DeleteHolding(ctx, id); err != nil {
			return err
		}
		s.logger.Info().
			Str("owner", ownerID).
			Str("holding", id).
			Str("symbol", existing.Symbol).
			Msg("Holding deleted")
	}

	return s.recomputeSummary(ctx, summary)
}

// RefreshAll fetches a fresh quote for every distinct held symbol
// concurrently, isolating per-symbol failures, then recomputes and
// persists the summary exactly once after all fetches settle.
func (s *Service) RefreshAll(ctx context.Context, ownerID string) (*models.RefreshReport, error) {
	summary, err := s.ensureSummary(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	holdings, err := s.storage.PortfolioStore().ListHoldings(ctx, summary.ID)
	if err != nil {
		return nil, err
	}

	// One fetch per distinct symbol, in holding order.
	var symbols []string
	seen := make(map[string]bool)
	for _, h := range holdings {
		if !seen[h.Symbol] {
			seen[h.Symbol] = true
			symbols = append(symbols, h.Symbol)
		}
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		quotes = make(map[string]*models.Quote, len(symbols))
		errs   = make(map[string]error, len(symbols))
	)

	for _, sym := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			quote, err := s.quotes.GetQuote(ctx, sym)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[sym] = err
				return
			}
			quotes[sym] = quote
		}(sym)
	}
	wg.Wait()

	report := &models.RefreshReport{}
	for _, sym := range symbols {
		report.Add(sym, errs[sym])
	}

	now := s.now()
	for _, h := range holdings {
		quote, ok := quotes[h.Symbol]
		if !ok {
			continue // failed symbol: holding keeps its last observed price
		}
		h.CurrentPrice = quote.CurrentPrice
		h.CompanyName = quote.Name
		h.UpdatedAt = now
		if err := s.storage.PortfolioStore().UpdateHolding(ctx, h); err != nil {
			return report, err
		}
	}

	if err := s.recomputeSummary(ctx, summary); err != nil {
		return report, err
	}

	s.logger.Info().
		Str("owner", ownerID).
		Int("updated", report.Updated).
		Int("failed", report.Failed).
		Msg("Portfolio refresh complete")

	return report, nil
}

// Compile-time check
var _ interfaces.PortfolioService = (*Service)(nil)
