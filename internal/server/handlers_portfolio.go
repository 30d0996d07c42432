package server

import (
	"errors"
	"net/http"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/models"
)

// holdingRequest is the add/edit payload.
type holdingRequest struct {
	Symbol        string  `json:"symbol"`
	Shares        float64 `json:"shares"`
	PurchasePrice float64 `json:"purchase_price"`
}

// resolveOwner returns the authenticated owner id or writes a 401.
func resolveOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID := common.ResolveUserID(r.Context())
	if ownerID == "" {
		WriteError(w, http.StatusUnauthorized, "Authentication required")
		return "", false
	}
	return ownerID, true
}

// writeServiceError maps service errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrQuoteUnavailable):
		WriteError(w, http.StatusBadGateway, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// handlePortfolio handles GET /api/portfolio.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ownerID, ok := resolveOwner(w, r)
	if !ok {
		return
	}

	view, err := s.app.PortfolioService.GetPortfolio(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// handleHoldingCreate handles POST /api/portfolio/holdings.
func (s *Server) handleHoldingCreate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	ownerID, ok := resolveOwner(w, r)
	if !ok {
		return
	}

	var req holdingRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	holding, err := s.app.PortfolioService.AddHolding(r.Context(), ownerID, req.Symbol, req.Shares, req.PurchasePrice)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, holding)
}

// handleHoldingByID dispatches PUT/DELETE /api/portfolio/holdings/{id}.
func (s *Server) handleHoldingByID(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/portfolio/holdings/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "holding id is required in path")
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.handleHoldingUpdate(w, r, id)
	case http.MethodDelete:
		s.handleHoldingDelete(w, r, id)
	default:
		w.Header().Set("Allow", "PUT, DELETE")
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleHoldingUpdate(w http.ResponseWriter, r *http.Request, id string) {
	ownerID, ok := resolveOwner(w, r)
	if !ok {
		return
	}

	var req holdingRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	holding, err := s.app.PortfolioService.EditHolding(r.Context(), ownerID, id, req.Symbol, req.Shares, req.PurchasePrice)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, holding)
}

func (s *Server) handleHoldingDelete(w http.ResponseWriter, r *http.Request, id string) {
	ownerID, ok := resolveOwner(w, r)
	if !ok {
		return
	}

	if err := s.app.PortfolioService.DeleteHolding(r.Context(), ownerID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRefresh handles POST /api/portfolio/refresh.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	ownerID, ok := resolveOwner(w, r)
	if !ok {
		return
	}

	report, err := s.app.PortfolioService.RefreshAll(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}
