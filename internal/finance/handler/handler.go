package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"civicfin/internal/finance/models"
	"civicfin/pkg/platform/httputil"
	"civicfin/pkg/requestcontext"
)

// Service defines the finance operations the handler exposes.
type Service interface {
	Finance(ctx context.Context, legislatorID string, cycle *int, mode models.Mode) (*models.FinanceReport, error)
	Candidate(ctx context.Context, legislatorID string) (*models.CandidateReport, error)
}

// Handler wires finance endpoints to the finance service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a finance handler.
func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts finance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/legislators/{legislatorID}/finance", h.HandleFinance)
	r.Get("/v1/legislators/{legislatorID}/candidate", h.HandleCandidate)
}

// HandleFinance handles GET /v1/legislators/{legislatorID}/finance.
func (h *Handler) HandleFinance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, err := ParseFinanceRequest(chi.URLParam(r, "legislatorID"), r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	report, err := h.service.Finance(ctx, req.LegislatorID, req.Cycle, req.Mode)
	if err != nil {
		h.logger.WarnContext(ctx, "finance request failed",
			"request_id", requestID,
			"legislator_id", req.LegislatorID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "finance report served",
		"request_id", requestID,
		"legislator_id", req.LegislatorID,
		"candidate_id", report.Candidate.CandidateID,
		"cycle", report.Cycle,
		"confidence", report.Aggregate.Quality.OverallDataConfidence,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromReport(report))
}

// HandleCandidate handles GET /v1/legislators/{legislatorID}/candidate.
func (h *Handler) HandleCandidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	legislatorID, err := ParseLegislatorID(chi.URLParam(r, "legislatorID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	report, err := h.service.Candidate(ctx, legislatorID)
	if err != nil {
		h.logger.WarnContext(ctx, "candidate resolution failed",
			"request_id", requestcontext.RequestID(ctx),
			"legislator_id", legislatorID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCandidateReport(report))
}
