package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/wonny/realdeal/internal/contracts"
	"github.com/wonny/realdeal/internal/pipeline"
	"github.com/wonny/realdeal/pkg/logger"
)

// DealStore is the read side of the deal repository the API serves.
type DealStore interface {
	TopDeals(ctx context.Context, limit int, passedOnly bool) ([]contracts.UnderwritingResult, error)
	LoadListings(ctx context.Context) ([]contracts.Listing, error)
	LatestRunID(ctx context.Context) (string, error)
}

// Scanner triggers a full pipeline run.
type Scanner interface {
	Run(ctx context.Context) (*pipeline.Summary, error)
}

// DealsHandler serves underwritten deals and the scan trigger.
type DealsHandler struct {
	store   DealStore
	scanner Scanner
	logger  *logger.Logger
}

func NewDealsHandler(store DealStore, scanner Scanner, log *logger.Logger) *DealsHandler {
	return &DealsHandler{
		store:   store,
		scanner: scanner,
		logger:  log,
	}
}

// DealsResponse wraps the ranked deals from the latest run.
type DealsResponse struct {
	RunID string                         `json:"run_id"`
	Count int                            `json:"count"`
	Deals []contracts.UnderwritingResult `json:"deals"`
}

// GetDeals returns the top deals from the most recent run.
// GET /api/deals?limit=20&passed=true
func (h *DealsHandler) GetDeals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	passedOnly := false
	if raw := r.URL.Query().Get("passed"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'passed' parameter")
			return
		}
		passedOnly = parsed
	}

	runID, err := h.store.LatestRunID(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve latest run")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve deals")
		return
	}

	deals, err := h.store.TopDeals(ctx, limit, passedOnly)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get top deals")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve deals")
		return
	}

	respondJSON(w, http.StatusOK, DealsResponse{
		RunID: runID,
		Count: len(deals),
		Deals: deals,
	})
}

// GetListings returns every cached raw listing.
// GET /api/listings
func (h *DealsHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.store.LoadListings(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load listings")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve listings")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(listings),
		"listings": listings,
	})
}

// Scan triggers a full fetch-and-underwrite run. The run executes
// synchronously; clients should expect a response time proportional to
// the configured city list.
// POST /api/scan
func (h *DealsHandler) Scan(w http.ResponseWriter, r *http.Request) {
	if h.scanner == nil {
		respondError(w, http.StatusServiceUnavailable, "Scanning is not configured on this server")
		return
	}

	h.logger.Info("Scan triggered via API")

	summary, err := h.scanner.Run(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Scan failed")
		respondError(w, http.StatusInternalServerError, "Scan failed")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
