// Package models defines the Folio data model
package models

import "time"

// Holding is one owned position in a single ticker symbol. The application
// id is stored under holding_id: SurrealDB's own id field is a RecordID,
// which does not decode into a plain string.
type Holding struct {
	ID            string    `json:"id" cbor:"holding_id"`
	PortfolioID   string    `json:"portfolio_id"`
	Symbol        string    `json:"symbol"`
	Shares        float64   `json:"shares"`
	PurchasePrice float64   `json:"purchase_price"`
	CurrentPrice  float64   `json:"current_price"`
	CompanyName   string    `json:"company_name,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PortfolioSummary is the denormalized aggregate for one user's holdings.
// TotalValue must equal the sum of market values over the portfolio's
// holdings at the end of every successful mutation.
type PortfolioSummary struct {
	ID          string    `json:"id" cbor:"summary_id"`
	OwnerID     string    `json:"owner_id"`
	TotalValue  float64   `json:"total_value"`
	LastUpdated time.Time `json:"last_updated"`
}

// HoldingView is a holding enriched with derived financial fields.
// The presentation layer never computes these itself.
type HoldingView struct {
	Holding
	MarketValue       float64 `json:"market_value"`
	ProfitLoss        float64 `json:"profit_loss"`
	ProfitLossPercent float64 `json:"profit_loss_percent"`
}

// PortfolioView is the full read model served to the presentation layer.
type PortfolioView struct {
	Summary       PortfolioSummary   `json:"summary"`
	Holdings      []HoldingView      `json:"holdings"`
	BestPerformer *HoldingView       `json:"best_performer,omitempty"`
	Allocation    map[string]float64 `json:"allocation,omitempty"`
}
