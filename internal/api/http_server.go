package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/application"
	"github.com/RodolfoDevApp/eventshop-salability-go/internal/config"
	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

type SalabilityChecker interface {
	Execute(ctx context.Context, sku string, stockID int, qty decimal.Decimal) (application.SalabilityCheck, error)
}

type ProductFilter interface {
	Execute(ctx context.Context, websiteID int, productIDs []int) ([]int, error)
}

type StockReindexer interface {
	ExecuteFull(ctx context.Context) error
}

// ResponseCache stores rendered responses tagged with cache identities.
type ResponseCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, tags []string, ttl time.Duration)
}

// Deps groups what the HTTP layer talks to.
type Deps struct {
	Salability   SalabilityChecker
	Reservations application.ReservationsQuantity
	Products     domain.ProductRepository
	SourceItems  domain.SourceItemIndexer
	Stocks       StockReindexer
	Filter       ProductFilter
	Cache        ResponseCache
}

type Server struct {
	cfg    config.Config
	deps   Deps
	logger *zap.Logger
}

func NewServer(cfg config.Config, deps Deps, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, deps: deps, logger: logger}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/salable/", s.handleIsSalable)
	mux.HandleFunc("/api/reservations/", s.handleReservationsBySku)
	mux.HandleFunc("/api/source-items/reindex", s.handleReindexSourceItems)
	mux.HandleFunc("/api/stocks/reindex", s.handleReindexStocks)
	mux.HandleFunc("/api/search/filter", s.handleSearchFilter)
	mux.HandleFunc("/swagger.json", s.handleSwaggerJson)
}

type healthResponse struct {
	Status string `json:"status"`
}

type reservationsResponse struct {
	Sku      string          `json:"sku"`
	StockID  int             `json:"stockId"`
	Quantity decimal.Decimal `json:"quantity"`
}

type reindexRequest struct {
	SourceItemIDs []int `json:"sourceItemIds"`
}

type filterRequest struct {
	WebsiteID  int   `json:"websiteId"`
	ProductIDs []int `json:"productIds"`
}

type filterResponse struct {
	ProductIDs []int `json:"productIds"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Handler GET /api/salable/{sku}?stockId=&qty=
func (s *Server) handleIsSalable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sku, ok := pathParam(r, "/api/salable/")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sku is required"})
		return
	}
	stockID, err := s.stockIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	qty := decimal.NewFromInt(1)
	if raw := r.URL.Query().Get("qty"); raw != "" {
		qty, err = decimal.NewFromString(raw)
		if err != nil || !qty.IsPositive() {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "qty must be a positive number"})
			return
		}
	}

	ctx := r.Context()
	key := "salable:" + sku + ":" + strconv.Itoa(stockID) + ":" + qty.String()
	if body, ok := s.deps.Cache.Get(key); ok {
		writeRaw(w, http.StatusOK, body)
		return
	}

	check, err := s.deps.Salability.Execute(ctx, sku, stockID, qty)
	if err != nil {
		s.logger.Error("salability check failed", zap.String("sku", sku), zap.Int("stock_id", stockID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	body, err := json.Marshal(check)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	productID, err := s.deps.Products.GetIDBySku(ctx, sku)
	switch {
	case err == nil:
		tag := s.cfg.ProductCacheTag + "_" + strconv.Itoa(productID)
		s.deps.Cache.Set(key, body, []string{tag}, time.Duration(s.cfg.SalableCacheTTLSec)*time.Second)
	case !errors.Is(err, domain.ErrNoSuchEntity):
		s.logger.Warn("salable response not cached", zap.String("sku", sku), zap.Error(err))
	}
	writeRaw(w, http.StatusOK, body)
}

// Handler GET /api/reservations/{sku}?stockId=
func (s *Server) handleReservationsBySku(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sku, ok := pathParam(r, "/api/reservations/")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sku is required"})
		return
	}
	stockID, err := s.stockIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	sum, err := s.deps.Reservations.SumQuantity(r.Context(), sku, stockID)
	if err != nil {
		s.logger.Error("sum reservations failed", zap.String("sku", sku), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, reservationsResponse{Sku: sku, StockID: stockID, Quantity: sum})
}

// Handler POST /api/source-items/reindex
func (s *Server) handleReindexSourceItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req reindexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid body"})
		return
	}
	if len(req.SourceItemIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sourceItemIds is required"})
		return
	}

	if err := s.deps.SourceItems.ExecuteList(r.Context(), req.SourceItemIDs); err != nil {
		s.logger.Error("source item reindex failed", zap.Ints("source_item_ids", req.SourceItemIDs), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Handler POST /api/stocks/reindex
func (s *Server) handleReindexStocks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.deps.Stocks.ExecuteFull(r.Context()); err != nil {
		s.logger.Error("full stock reindex failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Handler POST /api/search/filter
func (s *Server) handleSearchFilter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid body"})
		return
	}

	ids, err := s.deps.Filter.Execute(r.Context(), req.WebsiteID, req.ProductIDs)
	if errors.Is(err, domain.ErrStockNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no stock for website"})
		return
	}
	if err != nil {
		s.logger.Error("salable product filter failed", zap.Int("website_id", req.WebsiteID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if ids == nil {
		ids = []int{}
	}
	writeJSON(w, http.StatusOK, filterResponse{ProductIDs: ids})
}

func (s *Server) handleSwaggerJson(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeRaw(w, http.StatusOK, []byte(openAPISpec))
}

func pathParam(r *http.Request, prefix string) (string, bool) {
	v := strings.TrimPrefix(r.URL.Path, prefix)
	if v == "" || v == r.URL.Path || strings.Contains(v, "/") {
		return "", false
	}
	return v, true
}

// stockIDParam falls back to the default stock when stockId is omitted.
func (s *Server) stockIDParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("stockId")
	if raw == "" {
		return s.cfg.DefaultStockID, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, errors.New("stockId must be a positive integer")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, body)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
