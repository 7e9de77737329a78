/*
handlers.go - HTTP API handlers for the vesting engine

PURPOSE:
  Exposes schedule computation and grant storage via REST API. Handles HTTP
  request/response and JSON serialization, and delegates to the engine.

ENDPOINTS:
  Schedules:
    POST   /api/schedules              Compute a schedule (detailed response)
    POST   /api/vesting/calendar       Compute a schedule ({date: shares} only)
    GET    /api/rounding-policies      List the seven rounding policies

  Grants:
    GET    /api/grants                 List stored grants (?holder= filter)
    POST   /api/grants                 Store a grant
    GET    /api/grants/{id}            Get grant
    DELETE /api/grants/{id}            Delete grant
    GET    /api/grants/{id}/schedule   Compute a stored grant's schedule
                                       (?policy= overrides the rounding policy)
    GET    /api/grants/{id}/vested     Vested-to-date (?as_of=YYYY-MM-DD)

  Scenarios (scenarios.go):
    GET    /api/scenarios              List demo scenarios
    GET    /api/scenarios/current      Currently loaded scenario
    POST   /api/scenarios/load         Reset the store and load a scenario

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (vesting.ErrInvalidInput), malformed JSON
  - 404: Grant not found
  - 409: Duplicate grant ID
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/vesting-engine/factory"
	"github.com/warp/vesting-engine/obs"
	"github.com/warp/vesting-engine/vesting"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        vesting.GrantStore
	GrantFactory *factory.GrantFactory
	Logger       *zap.Logger
	Metrics      *obs.Metrics

	// Today returns the date vested-to-date defaults to.
	Today func() vesting.Date

	scenarioMu      sync.Mutex
	currentScenario string
}

// holderLister is implemented by stores that can filter by holder.
type holderLister interface {
	ListGrantsByHolder(ctx context.Context, holder string) ([]vesting.Grant, error)
}

// NewHandler creates a new handler. logger and metrics may be nil.
func NewHandler(store vesting.GrantStore, logger *zap.Logger, metrics *obs.Metrics) *Handler {
	if logger == nil {
		logger = obs.NewNopLogger()
	}
	return &Handler{
		Store:        store,
		GrantFactory: factory.NewGrantFactory(),
		Logger:       logger,
		Metrics:      metrics,
		Today:        func() vesting.Date { return vesting.DateOf(time.Now().UTC()) },
	}
}

// SyncGrantCount refreshes the stored-grants gauge.
func (h *Handler) SyncGrantCount(ctx context.Context) error {
	grants, err := h.Store.ListGrants(ctx)
	if err != nil {
		return err
	}
	if h.Metrics != nil {
		h.Metrics.GrantsStored.Set(float64(len(grants)))
	}
	return nil
}

// compute runs the engine and records the outcome.
func (h *Handler) compute(ctx context.Context, req vesting.Request) (*vesting.Schedule, error) {
	started := time.Now()
	schedule, err := vesting.Compute(req)
	h.Metrics.ObserveCompute(req.Policy.String(), started, err)

	if err != nil {
		h.Logger.Info("schedule rejected",
			zap.String("request_id", requestID(ctx)),
			zap.String("policy", req.Policy.String()),
			zap.Error(err),
		)
		return nil, err
	}

	h.Logger.Debug("schedule computed",
		zap.String("request_id", requestID(ctx)),
		zap.String("policy", req.Policy.String()),
		zap.Int64("total_shares", req.TotalShares),
		zap.Int("tranches", schedule.Geometry.TrancheCount),
	)
	return schedule, nil
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// ComputeSchedule computes a schedule from the request body.
// POST /api/schedules
func (h *Handler) ComputeSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, ok := h.scheduleFromBody(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toScheduleDTO(schedule))
}

// ComputeCalendar computes a schedule and returns only the ordered
// {date: shares} object.
// POST /api/vesting/calendar
func (h *Handler) ComputeCalendar(w http.ResponseWriter, r *http.Request) {
	schedule, ok := h.scheduleFromBody(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func (h *Handler) scheduleFromBody(w http.ResponseWriter, r *http.Request) (*vesting.Schedule, bool) {
	var gj factory.GrantJSON
	if err := json.NewDecoder(r.Body).Decode(&gj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return nil, false
	}

	req, err := h.GrantFactory.ToRequest(gj)
	if err != nil {
		h.writeDomainError(w, r, "Invalid vesting parameters", err)
		return nil, false
	}

	schedule, err := h.compute(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, r, "Invalid vesting parameters", err)
		return nil, false
	}
	return schedule, true
}

// ListRoundingPolicies returns the policy catalogue.
// GET /api/rounding-policies
func (h *Handler) ListRoundingPolicies(w http.ResponseWriter, r *http.Request) {
	policies := vesting.Policies()
	dtos := make([]RoundingPolicyDTO, len(policies))
	for i, p := range policies {
		dtos[i] = toRoundingPolicyDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// GRANT HANDLERS
// =============================================================================

// ListGrants returns stored grants.
// GET /api/grants
func (h *Handler) ListGrants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	holder := r.URL.Query().Get("holder")

	var (
		grants []vesting.Grant
		err    error
	)
	if hl, ok := h.Store.(holderLister); ok && holder != "" {
		grants, err = hl.ListGrantsByHolder(ctx, holder)
	} else {
		grants, err = h.Store.ListGrants(ctx)
	}
	if err != nil {
		h.writeDomainError(w, r, "Failed to list grants", err)
		return
	}

	dtos := make([]GrantDTO, 0, len(grants))
	for _, g := range grants {
		if holder != "" && g.Holder != holder {
			continue
		}
		dtos = append(dtos, toGrantDTO(h.GrantFactory, g))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateGrant stores a grant after checking it yields a schedule.
// POST /api/grants
func (h *Handler) CreateGrant(w http.ResponseWriter, r *http.Request) {
	var req CreateGrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	grant, err := h.GrantFactory.FromJSON(req.Config)
	if err != nil {
		h.writeDomainError(w, r, "Invalid grant", err)
		return
	}
	if _, err := h.compute(r.Context(), grant.Request); err != nil {
		h.writeDomainError(w, r, "Invalid grant", err)
		return
	}

	if err := h.Store.SaveGrant(r.Context(), *grant); err != nil {
		h.writeDomainError(w, r, "Failed to save grant", err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.GrantsStored.Inc()
	}

	h.Logger.Info("grant created",
		zap.String("request_id", requestID(r.Context())),
		zap.String("grant_id", string(grant.ID)),
		zap.String("holder", grant.Holder),
	)
	writeJSON(w, http.StatusCreated, toGrantDTO(h.GrantFactory, *grant))
}

// GetGrant returns a single grant.
// GET /api/grants/{id}
func (h *Handler) GetGrant(w http.ResponseWriter, r *http.Request) {
	grant, err := h.Store.GetGrant(r.Context(), vesting.GrantID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get grant", err)
		return
	}
	writeJSON(w, http.StatusOK, toGrantDTO(h.GrantFactory, *grant))
}

// DeleteGrant removes a grant.
// DELETE /api/grants/{id}
func (h *Handler) DeleteGrant(w http.ResponseWriter, r *http.Request) {
	id := vesting.GrantID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteGrant(r.Context(), id); err != nil {
		h.writeDomainError(w, r, "Failed to delete grant", err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.GrantsStored.Dec()
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGrantSchedule computes the schedule of a stored grant.
// GET /api/grants/{id}/schedule?policy=back_loaded
func (h *Handler) GetGrantSchedule(w http.ResponseWriter, r *http.Request) {
	grant, err := h.Store.GetGrant(r.Context(), vesting.GrantID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get grant", err)
		return
	}

	req := grant.Request
	if override := r.URL.Query().Get("policy"); override != "" {
		if req.Policy, err = vesting.ParseRoundingPolicy(override); err != nil {
			h.writeDomainError(w, r, "Invalid policy override", err)
			return
		}
	}

	schedule, err := h.compute(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, r, "Invalid grant", err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleDTO(schedule))
}

// GetGrantVested reports how much of a stored grant has vested.
// GET /api/grants/{id}/vested?as_of=2026-06-30
func (h *Handler) GetGrantVested(w http.ResponseWriter, r *http.Request) {
	grant, err := h.Store.GetGrant(r.Context(), vesting.GrantID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get grant", err)
		return
	}

	asOf := h.Today()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		if asOf, err = vesting.ParseDate(raw); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid as_of date",
				Code:    "invalid_input",
				Details: err.Error(),
			})
			return
		}
	}

	schedule, err := h.compute(r.Context(), grant.Request)
	if err != nil {
		h.writeDomainError(w, r, "Invalid grant", err)
		return
	}
	writeJSON(w, http.StatusOK, toVestedDTO(grant.ID, asOf, schedule))
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports liveness.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// writeDomainError maps engine and store errors to HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, vesting.ErrInvalidInput):
		resp := ErrorResponse{Error: message, Code: "invalid_input", Details: err.Error()}
		var inv *vesting.InvalidInputError
		if errors.As(err, &inv) && inv.Field != "" {
			resp.Details = map[string]string{"field": inv.Field, "reason": inv.Reason}
		}
		writeJSON(w, http.StatusBadRequest, resp)
	case vesting.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Grant not found", Code: "not_found"})
	case errors.Is(err, vesting.ErrDuplicateGrant):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "Grant already exists", Code: "duplicate", Details: err.Error()})
	default:
		h.Logger.Error(message,
			zap.String("request_id", requestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
