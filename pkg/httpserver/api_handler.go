package httpserver

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/mselser95/eve-trade-arb/internal/arbitrage"
	"github.com/mselser95/eve-trade-arb/internal/storage"
	"go.uber.org/zap"
)

// DefaultOnDemandTimeout bounds GET /api/trades when no timeout is configured.
const DefaultOnDemandTimeout = 20 * time.Second

// TradeComputer computes on-demand opportunities.
type TradeComputer interface {
	Compute(ctx context.Context, c arbitrage.Constraints) ([]*arbitrage.Opportunity, error)
}

// APIHandler serves trade and opportunity requests.
type APIHandler struct {
	engine         TradeComputer
	opportunities  storage.Reader
	triggerRefresh func() bool
	triggerBatch   func() bool
	timeout        time.Duration
	logger         *zap.Logger
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TriggerResponse is returned by the manual trigger endpoints.
type TriggerResponse struct {
	Status string `json:"status"`
}

// NewAPIHandler creates a new API handler. Nil dependencies disable the
// endpoints that need them.
func NewAPIHandler(cfg *Config) *APIHandler {
	timeout := cfg.OnDemandTimeout
	if timeout <= 0 {
		timeout = DefaultOnDemandTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &APIHandler{
		engine:         cfg.Engine,
		opportunities:  cfg.Opportunities,
		triggerRefresh: cfg.TriggerRefresh,
		triggerBatch:   cfg.TriggerBatch,
		timeout:        timeout,
		logger:         logger,
	}
}

// Routes mounts the API endpoints on r.
func (h *APIHandler) Routes(r chi.Router) {
	if h.engine != nil {
		r.Get("/trades", h.HandleTrades)
	}
	if h.opportunities != nil {
		r.Get("/opportunities", h.HandleOpportunities)
		r.Get("/opportunities/{itemID}", h.HandleItemOpportunities)
	}
	if h.triggerRefresh != nil {
		r.Post("/refresh", h.handleTrigger("refresh", h.triggerRefresh))
	}
	if h.triggerBatch != nil {
		r.Post("/batch", h.handleTrigger("batch", h.triggerBatch))
	}
}

// HandleTrades handles GET /api/trades?wallet=&cargo=&min_profit=&limit=.
func (h *APIHandler) HandleTrades(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	constraints, err := arbitrage.ParseConstraints(query.Get)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	start := time.Now()
	opps, err := h.engine.Compute(ctx, constraints)
	if err != nil {
		h.writeComputeError(w, r, err)
		return
	}

	h.logger.Debug("trades-request-served",
		zap.Float64("wallet", constraints.Wallet),
		zap.Float64("cargo", constraints.Cargo),
		zap.Float64("min-profit", constraints.MinProfit),
		zap.Int("limit", constraints.Limit),
		zap.Int("results", len(opps)),
		zap.Duration("duration", time.Since(start)))

	h.writeJSON(w, http.StatusOK, nonNil(opps))
}

func (h *APIHandler) writeComputeError(w http.ResponseWriter, r *http.Request, err error) {
	// Only a departed client gets no response. A cancellation surfacing from
	// a lookup shared with another caller is a source failure for this one.
	if r.Context().Err() != nil {
		h.logger.Debug("trades-request-cancelled", zap.Error(err))
		return
	}

	switch {
	case errors.Is(err, arbitrage.ErrInvalidConstraints):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("trades-request-timeout", zap.Duration("timeout", h.timeout))
		h.writeError(w, "computation exceeded deadline", http.StatusGatewayTimeout)
	default:
		h.logger.Error("trades-request-failed", zap.Error(err))
		h.writeError(w, "quote source unavailable", http.StatusServiceUnavailable)
	}
}

// HandleOpportunities handles GET /api/opportunities?wallet=&cargo=.
// Stored batch results are filtered by what the caller can afford and carry.
func (h *APIHandler) HandleOpportunities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	wallet, err := parseLimit(query.Get("wallet"))
	if err != nil {
		h.writeError(w, "invalid wallet: "+err.Error(), http.StatusBadRequest)
		return
	}

	cargo, err := parseLimit(query.Get("cargo"))
	if err != nil {
		h.writeError(w, "invalid cargo: "+err.Error(), http.StatusBadRequest)
		return
	}

	all, err := h.opportunities.AllOpportunities(r.Context())
	if err != nil {
		h.logger.Error("opportunities-read-failed", zap.Error(err))
		h.writeError(w, "opportunity store unavailable", http.StatusServiceUnavailable)
		return
	}

	fitting := arbitrage.FilterFitting(all, wallet, cargo)
	arbitrage.Rank(fitting)

	h.writeJSON(w, http.StatusOK, fitting)
}

// HandleItemOpportunities handles GET /api/opportunities/{itemID}.
func (h *APIHandler) HandleItemOpportunities(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "itemID")

	itemID, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		h.writeError(w, "invalid item id: "+raw, http.StatusBadRequest)
		return
	}

	opps, err := h.opportunities.ItemOpportunities(r.Context(), int32(itemID))
	if errors.Is(err, storage.ErrNotFound) {
		h.writeError(w, "no opportunities stored for item", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("item-opportunities-read-failed",
			zap.Int64("item-id", itemID),
			zap.Error(err))
		h.writeError(w, "opportunity store unavailable", http.StatusServiceUnavailable)
		return
	}

	h.writeJSON(w, http.StatusOK, nonNil(opps))
}

func (h *APIHandler) handleTrigger(name string, trigger func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "queued"
		if !trigger() {
			status = "already-pending"
		}

		h.logger.Info("manual-trigger-received",
			zap.String("trigger", name),
			zap.String("status", status))

		h.writeJSON(w, http.StatusAccepted, TriggerResponse{Status: status})
	}
}

// parseLimit parses an optional non-negative bound. Empty means unbounded.
func parseLimit(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return math.Inf(1), nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if math.IsNaN(v) || v < 0 {
		return 0, errors.New("must be a non-negative number")
	}

	return v, nil
}

func nonNil(opps []*arbitrage.Opportunity) []*arbitrage.Opportunity {
	if opps == nil {
		return []*arbitrage.Opportunity{}
	}
	return opps
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		h.logger.Error("response-encode-failed", zap.Error(err))
	}
}

// writeError writes an error response.
func (h *APIHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	h.writeJSON(w, statusCode, ErrorResponse{Error: message})
}
