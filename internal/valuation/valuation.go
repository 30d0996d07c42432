// Package valuation computes derived financial metrics over holdings.
// All functions are pure and total: no I/O, no failure modes given
// well-formed numeric inputs.
package valuation

import "github.com/foliotrack/folio/internal/models"

// MarketValue returns the current market value of a holding.
func MarketValue(h *models.Holding) float64 {
	return h.Shares * h.CurrentPrice
}

// ProfitLoss returns the absolute profit or loss of a holding.
func ProfitLoss(h *models.Holding) float64 {
	return (h.CurrentPrice - h.PurchasePrice) * h.Shares
}

// ProfitLossPercent returns the percentage return of a holding.
// Returns 0 when the purchase price is 0 (the percentage is undefined).
func ProfitLossPercent(h *models.Holding) float64 {
	if h.PurchasePrice == 0 {
		return 0
	}
	return (h.CurrentPrice - h.PurchasePrice) / h.PurchasePrice * 100
}

// TotalValue returns the sum of market values over a holding set.
func TotalValue(holdings []*models.Holding) float64 {
	var total float64
	for _, h := range holdings {
		total += MarketValue(h)
	}
	return total
}

// BestPerformer returns the holding with the highest percentage return.
// Ties keep the first holding in input order. Holdings with a zero
// purchase price are excluded from the comparison. The second return is
// false when the input is empty or every holding was excluded.
func BestPerformer(holdings []*models.Holding) (*models.Holding, bool) {
	var best *models.Holding
	var bestPct float64
	for _, h := range holdings {
		if h.PurchasePrice == 0 {
			continue
		}
		pct := ProfitLossPercent(h)
		if best == nil || pct > bestPct {
			best = h
			bestPct = pct
		}
	}
	return best, best != nil
}

// Allocation returns each symbol's share of the total market value,
// keyed by symbol. Multiple holdings of the same symbol are combined.
// Returns nil when the portfolio has no value.
func Allocation(holdings []*models.Holding) map[string]float64 {
	total := TotalValue(holdings)
	if total == 0 {
		return nil
	}
	alloc := make(map[string]float64, len(holdings))
	for _, h := range holdings {
		alloc[h.Symbol] += MarketValue(h) / total
	}
	return alloc
}

// View enriches a holding with its derived fields.
func View(h *models.Holding) models.HoldingView {
	return models.HoldingView{
		Holding:           *h,
		MarketValue:       MarketValue(h),
		ProfitLoss:        ProfitLoss(h),
		ProfitLossPercent: ProfitLossPercent(h),
	}
}
