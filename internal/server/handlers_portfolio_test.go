package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foliotrack/folio/internal/app"
	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/models"
)

// fakePortfolioService records calls and returns canned results.
type fakePortfolioService struct {
	view    *models.PortfolioView
	holding *models.Holding
	report  *models.RefreshReport
	err     error

	lastOwner  string
	lastID     string
	lastSymbol string
	deleted    []string
}

func (f *fakePortfolioService) GetPortfolio(_ context.Context, ownerID string) (*models.PortfolioView, error) {
	f.lastOwner = ownerID
	if f.err != nil {
		return nil, f.err
	}
	return f.view, nil
}

func (f *fakePortfolioService) AddHolding(_ context.Context, ownerID, symbol string, shares, purchasePrice float64) (*models.Holding, error) {
	f.lastOwner = ownerID
	f.lastSymbol = symbol
	if f.err != nil {
		return nil, f.err
	}
	return f.holding, nil
}

func (f *fakePortfolioService) EditHolding(_ context.Context, ownerID, id, symbol string, shares, purchasePrice float64) (*models.Holding, error) {
	f.lastOwner = ownerID
	f.lastID = id
	f.lastSymbol = symbol
	if f.err != nil {
		return nil, f.err
	}
	return f.holding, nil
}

func (f *fakePortfolioService) DeleteHolding(_ context.Context, ownerID, id string) error {
	f.lastOwner = ownerID
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakePortfolioService) RefreshAll(_ context.Context, ownerID string) (*models.RefreshReport, error) {
	f.lastOwner = ownerID
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func newTestServer(svc *fakePortfolioService) *Server {
	a := &app.App{
		Config:           common.NewDefaultConfig(),
		Logger:           common.NewSilentLogger(),
		PortfolioService: svc,
	}
	return NewServer(a)
}

func doRequest(s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("X-Folio-User-ID", "alice")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHandlePortfolio(t *testing.T) {
	svc := &fakePortfolioService{view: &models.PortfolioView{
		Summary: models.PortfolioSummary{ID: "p1", OwnerID: "alice", TotalValue: 2400},
	}}
	s := newTestServer(svc)

	rr := doRequest(s, http.MethodGet, "/api/portfolio", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if svc.lastOwner != "alice" {
		t.Errorf("owner = %q, want alice", svc.lastOwner)
	}

	var view models.PortfolioView
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if view.Summary.TotalValue != 2400 {
		t.Errorf("total = %v, want 2400", view.Summary.TotalValue)
	}
}

func TestHandlePortfolio_Unauthenticated(t *testing.T) {
	s := newTestServer(&fakePortfolioService{})

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestHandleHoldingCreate(t *testing.T) {
	svc := &fakePortfolioService{holding: &models.Holding{ID: "h1", Symbol: "AAPL", CurrentPrice: 150}}
	s := newTestServer(svc)

	body := []byte(`{"symbol":"AAPL","shares":10,"purchase_price":100}`)
	rr := doRequest(s, http.MethodPost, "/api/portfolio/holdings", body)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	if svc.lastSymbol != "AAPL" {
		t.Errorf("symbol = %q, want AAPL", svc.lastSymbol)
	}

	var holding models.Holding
	if err := json.Unmarshal(rr.Body.Bytes(), &holding); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if holding.ID != "h1" || holding.CurrentPrice != 150 {
		t.Errorf("holding = %+v", holding)
	}
}

func TestHandleHoldingCreate_InvalidJSON(t *testing.T) {
	s := newTestServer(&fakePortfolioService{})

	rr := doRequest(s, http.MethodPost, "/api/portfolio/holdings", []byte(`{not json`))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestHandleHoldingUpdate(t *testing.T) {
	svc := &fakePortfolioService{holding: &models.Holding{ID: "h1", Symbol: "AAPL", Shares: 20}}
	s := newTestServer(svc)

	body := []byte(`{"symbol":"AAPL","shares":20,"purchase_price":100}`)
	rr := doRequest(s, http.MethodPut, "/api/portfolio/holdings/h1", body)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if svc.lastID != "h1" {
		t.Errorf("id = %q, want h1", svc.lastID)
	}
}

func TestHandleHoldingDelete(t *testing.T) {
	svc := &fakePortfolioService{}
	s := newTestServer(svc)

	rr := doRequest(s, http.MethodDelete, "/api/portfolio/holdings/h1", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rr.Code, rr.Body.String())
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != "h1" {
		t.Errorf("deleted = %v, want [h1]", svc.deleted)
	}
}

func TestHandleHoldingByID_MissingID(t *testing.T) {
	s := newTestServer(&fakePortfolioService{})

	rr := doRequest(s, http.MethodDelete, "/api/portfolio/holdings/", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestHandleHoldingByID_MethodNotAllowed(t *testing.T) {
	s := newTestServer(&fakePortfolioService{})

	rr := doRequest(s, http.MethodPost, "/api/portfolio/holdings/h1", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
}

func TestHandleRefresh(t *testing.T) {
	report := &models.RefreshReport{}
	report.Add("AAPL", nil)
	report.Add("GOOG", fmt.Errorf("%w: feed down", models.ErrQuoteUnavailable))
	svc := &fakePortfolioService{report: report}
	s := newTestServer(svc)

	rr := doRequest(s, http.MethodPost, "/api/portfolio/refresh", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var got models.RefreshReport
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if got.Updated != 1 || got.Failed != 1 {
		t.Errorf("report = %d updated / %d failed, want 1/1", got.Updated, got.Failed)
	}
}

func TestServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", fmt.Errorf("%w: shares must be positive", models.ErrInvalidInput), http.StatusBadRequest},
		{"not found", fmt.Errorf("holding h9: %w", models.ErrNotFound), http.StatusNotFound},
		{"quote unavailable", fmt.Errorf("%w for AAPL", models.ErrQuoteUnavailable), http.StatusBadGateway},
		{"persistence", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(&fakePortfolioService{err: tc.err})
			body := []byte(`{"symbol":"AAPL","shares":10,"purchase_price":100}`)
			rr := doRequest(s, http.MethodPost, "/api/portfolio/holdings", body)
			if rr.Code != tc.want {
				t.Errorf("status = %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&fakePortfolioService{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status field = %q, want ok", resp["status"])
	}
}

func TestHandleVersion(t *testing.T) {
	s := newTestServer(&fakePortfolioService{})

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if _, ok := resp["version"]; !ok {
		t.Error("missing version field")
	}
}
