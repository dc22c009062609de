/*
handlers.go - HTTP API handlers for the leave planner

PURPOSE:
  Exposes the planner via REST. Handles HTTP request/response, JSON
  serialization, and delegates to domain logic.

ENDPOINTS:
  Auth:
    POST   /api/auth/login              Exchange credentials for a token

  Agents:
    GET    /api/agents                  List agents
    POST   /api/agents                  Create/update agent
    GET    /api/agents/{id}             Get agent
    DELETE /api/agents/{id}             Delete agent
    GET    /api/agents/{id}/balance     Entitlement balance summary

  Leaves:
    GET    /api/leaves                  List (filters: ?status=&agent_id=)
    POST   /api/leaves                  Submit leave request
    POST   /api/leaves/{id}/approve     Approve + reconcile schedules
    POST   /api/leaves/{id}/refuse      Refuse a pending request
    DELETE /api/leaves/{id}             Delete (reverts schedules if approved)

  Schedules:
    GET    /api/schedules               Full snapshot
    GET    /api/schedules/{agentId}/week?date=YYYY-MM-DD
    PUT    /api/schedules/{key}         Author one week's slots

ERROR HANDLING:
  JSON errors with appropriate HTTP status: 400 invalid input, 401 auth,
  404 missing, 409 invalid status transition, 500 internal. A reconciler
  save failure reports 500 but names the persistence layer so callers
  know the computation succeeded.

SEE ALSO:
  - dto.go: Request/response structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/leave-planner/leave"
	"github.com/warp/leave-planner/schedule"
	"github.com/warp/leave-planner/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Reconciler *schedule.Reconciler
	Calc       *leave.Calculator
	Logger     *zap.Logger

	JWTSecret string
	TokenTTL  time.Duration
}

// NewHandler creates a handler around the given store and reconciler.
func NewHandler(store *sqlite.Store, rec *schedule.Reconciler, logger *zap.Logger, jwtSecret string, tokenTTL time.Duration) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:      store,
		Reconciler: rec,
		Calc:       leave.NewCalculator(logger),
		Logger:     logger,
		JWTSecret:  jwtSecret,
		TokenTTL:   tokenTTL,
	}
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login exchanges agent credentials for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := h.Store.GetAgent(r.Context(), req.AgentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load agent", err)
		return
	}
	if rec == nil || CheckPassword(rec.PasswordHash, req.Password) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	token, err := GenerateToken(h.JWTSecret, rec.ID, rec.Role, h.TokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, AgentID: rec.ID, Role: string(rec.Role)})
}

// =============================================================================
// AGENT HANDLERS
// =============================================================================

// ListAgents returns all agents.
func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.Store.ListAgents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list agents", err)
		return
	}

	dtos := make([]AgentDTO, len(agents))
	for i, a := range agents {
		dtos[i] = toAgentDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAgent returns a single agent.
func (h *Handler) GetAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.Store.GetAgent(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get agent", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Agent not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toAgentDTO(rec.Agent))
}

// CreateAgent creates or updates an agent.
func (h *Handler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	var passwordHash string
	if req.Password != "" {
		var err error
		passwordHash, err = HashPassword(req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to hash password", err)
			return
		}
	}

	rec := sqlite.AgentRecord{
		Agent: leave.Agent{
			ID:              id,
			Name:            req.Name,
			Role:            leave.Role(req.Role),
			WeeklyHours:     req.WeeklyHours,
			RTTDays:         req.RTTDays,
			AnnualLeaveDays: req.AnnualLeaveDays,
			SickChildDays:   req.SickChildDays,
		},
		PasswordHash: passwordHash,
	}

	if err := h.Store.SaveAgent(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save agent", err)
		return
	}

	writeJSON(w, http.StatusCreated, toAgentDTO(rec.Agent))
}

// DeleteAgent removes an agent.
func (h *Handler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteAgent(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete agent", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBalance returns the entitlement balance summary for an agent.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	rec, err := h.Store.GetAgent(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get agent", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Agent not found", nil)
		return
	}

	requests, err := h.Store.ListRequests(ctx, sqlite.RequestFilter{AgentID: &id})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave requests", err)
		return
	}

	summary := h.Calc.Summary(rec.Agent, requests)
	writeJSON(w, http.StatusOK, toBalanceDTO(id, summary))
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// ListLeaves returns leave requests matching the query filters.
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	var filter sqlite.RequestFilter
	if v := r.URL.Query().Get("agent_id"); v != "" {
		filter.AgentID = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := leave.Status(v)
		filter.Status = &status
	}

	requests, err := h.Store.ListRequests(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave requests", err)
		return
	}

	dtos := make([]LeaveRequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toLeaveRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLeave submits a new leave request in pending status.
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.AgentID == "" || req.Type == "" {
		writeError(w, http.StatusBadRequest, "agent_id and leave_type are required", nil)
		return
	}

	start, err := leave.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := leave.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date before start_date", nil)
		return
	}

	daysCount := req.DaysCount
	if daysCount == 0 {
		daysCount = end.Sub(start).Hours()/24 + 1
	}

	record := leave.Request{
		ID:        uuid.NewString(),
		AgentID:   req.AgentID,
		Type:      leave.Type(req.Type),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		DaysCount: daysCount,
		Status:    leave.StatusPending,
		Reason:    req.Reason,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.Store.SaveRequest(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save leave request", err)
		return
	}

	writeJSON(w, http.StatusCreated, toLeaveRequestDTO(record))
}

// ApproveLeave approves a pending request and reconciles schedules.
func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	req, err := h.Store.GetRequest(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get leave request", err)
		return
	}
	if req == nil {
		writeError(w, http.StatusNotFound, "Leave request not found", nil)
		return
	}
	if req.Status != leave.StatusPending {
		writeError(w, http.StatusConflict, "Only pending requests can be approved", nil)
		return
	}

	if err := h.Store.UpdateRequestStatus(ctx, id, leave.StatusApproved); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update status", err)
		return
	}
	req.Status = leave.StatusApproved

	if _, err := h.Reconciler.Apply(ctx, req.AgentID, *req); err != nil {
		writeError(w, http.StatusInternalServerError, "Approved but schedule reconciliation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toLeaveRequestDTO(*req))
}

// RefuseLeave refuses a pending request. Schedules are untouched.
func (h *Handler) RefuseLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	req, err := h.Store.GetRequest(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get leave request", err)
		return
	}
	if req == nil {
		writeError(w, http.StatusNotFound, "Leave request not found", nil)
		return
	}
	if req.Status != leave.StatusPending {
		writeError(w, http.StatusConflict, "Only pending requests can be refused", nil)
		return
	}

	if err := h.Store.UpdateRequestStatus(ctx, id, leave.StatusRefused); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update status", err)
		return
	}
	req.Status = leave.StatusRefused

	writeJSON(w, http.StatusOK, toLeaveRequestDTO(*req))
}

// DeleteLeave removes a request, reverting schedules when it was approved.
func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	req, err := h.Store.GetRequest(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get leave request", err)
		return
	}
	if req == nil {
		writeError(w, http.StatusNotFound, "Leave request not found", nil)
		return
	}

	if req.Status == leave.StatusApproved {
		if _, err := h.Reconciler.Cancel(ctx, req.AgentID, *req); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to revert schedules", err)
			return
		}
	}

	if err := h.Store.DeleteRequest(ctx, id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete leave request", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// GetSchedules returns the full schedule snapshot.
func (h *Handler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Store.LoadSnapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load schedules", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GetAgentWeek returns one agent's week containing ?date= (default today).
// A week with no stored schedule is answered with the default template
// without persisting it.
func (h *Handler) GetAgentWeek(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")

	date := time.Now().UTC()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := leave.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		date = parsed
	}

	snap, err := h.Store.LoadSnapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load schedules", err)
		return
	}

	key := schedule.Key(agentID, date)
	slots, ok := snap[key]
	if !ok {
		slots = schedule.DefaultWeek()
	}

	writeJSON(w, http.StatusOK, WeekDTO{
		Key:       key,
		AgentID:   agentID,
		WeekStart: schedule.WeekStart(date).Format("2006-01-02"),
		Slots:     slots,
	})
}

// PutWeek replaces one week's slots under a canonical key. Authored
// changes publish through the same notifier as reconciler changes, so
// subscribers see every schedule mutation.
func (h *Handler) PutWeek(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	agentID, weekStart, err := schedule.ParseKey(key)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Malformed schedule key", err)
		return
	}

	var body PutWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	snap, err := h.Store.LoadSnapshot(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load schedules", err)
		return
	}

	snap = snap.Clone()
	snap[key] = body.Slots
	if err := h.Store.SaveSnapshot(ctx, snap); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save schedules", err)
		return
	}
	h.Reconciler.Notifier.Notify(schedule.EventUpdated, snap)

	writeJSON(w, http.StatusOK, WeekDTO{
		Key:       key,
		AgentID:   agentID,
		WeekStart: weekStart.Format("2006-01-02"),
		Slots:     body.Slots,
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

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
