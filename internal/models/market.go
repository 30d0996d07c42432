package models

// Quote is a point-in-time market snapshot for one symbol, merged from the
// Finnhub /quote and /stock/profile2 endpoints.
type Quote struct {
	Symbol        string  `json:"symbol"`
	CurrentPrice  float64 `json:"current_price"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percent_change"`
	HighPrice     float64 `json:"high_price"`
	LowPrice      float64 `json:"low_price"`
	OpenPrice     float64 `json:"open_price"`
	PreviousClose float64 `json:"previous_close"`
	Name          string  `json:"name"`
}

// IsZero reports whether every numeric field is zero. Finnhub returns a
// zero-filled quote body for unknown symbols instead of an error status.
func (q *Quote) IsZero() bool {
	return q.CurrentPrice == 0 &&
		q.Change == 0 &&
		q.PercentChange == 0 &&
		q.HighPrice == 0 &&
		q.LowPrice == 0 &&
		q.OpenPrice == 0 &&
		q.PreviousClose == 0
}

// SymbolResult records the outcome of one symbol's quote refresh.
type SymbolResult struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error,omitempty"`
}

// OK reports whether the refresh succeeded for this symbol.
func (r SymbolResult) OK() bool {
	return r.Error == ""
}

// RefreshReport summarizes one refresh cycle over all held symbols.
// Individual symbol failures are isolated; a failing symbol never aborts
// the rest of the batch.
type RefreshReport struct {
	Results []SymbolResult `json:"results"`
	Updated int            `json:"updated"`
	Failed  int            `json:"failed"`
}

// Add appends a per-symbol outcome and updates the counters.
func (r *RefreshReport) Add(symbol string, err error) {
	res := SymbolResult{Symbol: symbol}
	if err != nil {
		res.Error = err.Error()
		r.Failed++
	} else {
		r.Updated++
	}
	r.Results = append(r.Results, res)
}

// Result returns the outcome for a symbol and whether it was attempted.
func (r *RefreshReport) Result(symbol string) (SymbolResult, bool) {
	for _, res := range r.Results {
		if res.Symbol == symbol {
			return res, true
		}
	}
	return SymbolResult{}, false
}
