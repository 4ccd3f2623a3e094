package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/clarityhq/workplan/modules/planning/domain/changerequest"
	"github.com/clarityhq/workplan/modules/planning/domain/progresslog"
	"github.com/clarityhq/workplan/modules/planning/domain/project"
	"github.com/clarityhq/workplan/modules/planning/domain/task"
	"github.com/clarityhq/workplan/modules/planning/domain/workplan"
	"github.com/clarityhq/workplan/modules/planning/services"
	"github.com/clarityhq/workplan/pkg/composables"
	"github.com/clarityhq/workplan/pkg/serrors"
)

type PlanningAPIController struct {
	permissions   *services.EditPermissionService
	updates       *services.TaskUpdateService
	governance    *services.GovernanceService
	reassignments *services.ReassignmentService
	apiPrefix     string
}

func NewPlanningAPIController(
	permissions *services.EditPermissionService,
	updates *services.TaskUpdateService,
	governance *services.GovernanceService,
	reassignments *services.ReassignmentService,
) *PlanningAPIController {
	return &PlanningAPIController{
		permissions:   permissions,
		updates:       updates,
		governance:    governance,
		reassignments: reassignments,
		apiPrefix:     "/planning/api",
	}
}

func (c *PlanningAPIController) Key() string {
	return c.apiPrefix
}

func (c *PlanningAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.HandleFunc("/tasks/{id:[0-9]+}/edit-permission", c.CheckEditPermission).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id:[0-9]+}/field", c.UpdateTaskField).Methods(http.MethodPatch)
	api.HandleFunc("/tasks/{id:[0-9]+}/progress", c.RecordProgress).Methods(http.MethodPost)
	api.HandleFunc("/change-requests", c.SubmitChangeRequest).Methods(http.MethodPost)
	api.HandleFunc("/change-requests/pending", c.ListPending).Methods(http.MethodGet)
	api.HandleFunc("/change-requests/{id:[0-9]+}/resolve", c.ResolveChangeRequest).Methods(http.MethodPost)
	api.HandleFunc("/assignments/reassign", c.Reassign).Methods(http.MethodPost)
}

func (c *PlanningAPIController) CheckEditPermission(w http.ResponseWriter, r *http.Request) {
	userID, err := composables.UseUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	taskID := pathID(r)

	decision, err := composables.InTxResult(r.Context(), func(ctx context.Context) (services.EditDecision, error) {
		return c.permissions.CheckEditPermission(ctx, taskID, userID)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

type updateFieldRequest struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

type updateFieldResponse struct {
	Applied bool                   `json:"applied"`
	Request *changeRequestResponse `json:"request,omitempty"`
}

func (c *PlanningAPIController) UpdateTaskField(w http.ResponseWriter, r *http.Request) {
	userID, err := composables.UseUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	taskID := pathID(r)

	var body updateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, serrors.NewError("BAD_REQUEST", "invalid JSON body", err.Error()))
		return
	}

	outcome, err := composables.InTxResult(r.Context(), func(ctx context.Context) (services.UpdateOutcome, error) {
		return c.updates.UpdateField(ctx, taskID, userID, body.Field, body.Value, body.Reason)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := updateFieldResponse{Applied: outcome.Applied}
	if outcome.Request != nil {
		resp.Request = toChangeRequestResponse(outcome.Request)
	}
	status := http.StatusOK
	if outcome.Request != nil {
		status = http.StatusAccepted
	}
	writeJSON(w, status, resp)
}

type recordProgressRequest struct {
	Progress *int   `json:"progress"`
	Comment  string `json:"comment"`
}

type progressEntryResponse struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"taskId"`
	Progress  *int      `json:"progress,omitempty"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *PlanningAPIController) RecordProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := composables.UseUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	taskID := pathID(r)

	var body recordProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, serrors.NewError("BAD_REQUEST", "invalid JSON body", err.Error()))
		return
	}

	entry, err := composables.InTxResult(r.Context(), func(ctx context.Context) (progresslog.Entry, error) {
		return c.updates.RecordProgress(ctx, taskID, userID, body.Progress, body.Comment)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, progressEntryResponse{
		ID:        entry.ID,
		TaskID:    entry.TaskID,
		Progress:  entry.Progress,
		Comment:   entry.Comment,
		CreatedAt: entry.CreatedAt,
	})
}

type submitRequest struct {
	TaskID        int64  `json:"taskId"`
	Field         string `json:"field"`
	ProposedValue string `json:"proposedValue"`
	Reason        string `json:"reason"`
}

func (c *PlanningAPIController) SubmitChangeRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := composables.UseUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var body submitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, serrors.NewError("BAD_REQUEST", "invalid JSON body", err.Error()))
		return
	}
	if body.Field == "" {
		writeError(w, serrors.NewFieldRequiredError("field"))
		return
	}

	cr, err := composables.InTxResult(r.Context(), func(ctx context.Context) (*changerequest.ChangeRequest, error) {
		return c.governance.Submit(ctx, body.TaskID, userID, body.Field, body.ProposedValue, body.Reason)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChangeRequestResponse(cr))
}

func (c *PlanningAPIController) ListPending(w http.ResponseWriter, r *http.Request) {
	userID, err := composables.UseUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	pending, err := c.governance.ListPending(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]*changeRequestResponse, 0, len(pending))
	for _, cr := range pending {
		out = append(out, toChangeRequestResponse(cr))
	}
	writeJSON(w, http.StatusOK, out)
}

type resolveRequest struct {
	Action  string `json:"action"`
	Comment string `json:"comment"`
}

func (c *PlanningAPIController) ResolveChangeRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := composables.UseUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	requestID := pathID(r)

	var body resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, serrors.NewError("BAD_REQUEST", "invalid JSON body", err.Error()))
		return
	}

	cr, err := composables.InTxResult(r.Context(), func(ctx context.Context) (*changerequest.ChangeRequest, error) {
		return c.governance.Resolve(ctx, userID, requestID, services.ResolveAction(body.Action), body.Comment)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChangeRequestResponse(cr))
}

type reassignRequest struct {
	FromUserID int64   `json:"fromUserId"`
	ToUserID   int64   `json:"toUserId"`
	TaskIDs    []int64 `json:"taskIds"`
}

func (c *PlanningAPIController) Reassign(w http.ResponseWriter, r *http.Request) {
	userID, err := composables.UseUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var body reassignRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, serrors.NewError("BAD_REQUEST", "invalid JSON body", err.Error()))
		return
	}

	result, err := composables.InTxResult(r.Context(), func(ctx context.Context) (services.ReassignResult, error) {
		return c.reassignments.Reassign(ctx, userID, body.FromUserID, body.ToUserID, body.TaskIDs)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type changeRequestResponse struct {
	ID                int64      `json:"id"`
	TaskID            int64      `json:"taskId"`
	RequesterID       int64      `json:"requesterId"`
	Field             string     `json:"field"`
	PreviousValue     string     `json:"previousValue"`
	ProposedValue     string     `json:"proposedValue"`
	Reason            string     `json:"reason,omitempty"`
	State             string     `json:"state"`
	ApproverID        *int64     `json:"approverId,omitempty"`
	ResolutionComment string     `json:"resolutionComment,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	ResolvedAt        *time.Time `json:"resolvedAt,omitempty"`
}

func toChangeRequestResponse(cr *changerequest.ChangeRequest) *changeRequestResponse {
	return &changeRequestResponse{
		ID:                cr.ID,
		TaskID:            cr.TaskID,
		RequesterID:       cr.RequesterID,
		Field:             cr.Field,
		PreviousValue:     cr.PreviousValue,
		ProposedValue:     cr.ProposedValue,
		Reason:            cr.Reason,
		State:             cr.State,
		ApproverID:        cr.ApproverID,
		ResolutionComment: cr.ResolutionComment,
		CreatedAt:         cr.CreatedAt,
		ResolvedAt:        cr.ResolvedAt,
	}
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	var base *serrors.BaseError
	switch {
	case errors.Is(err, composables.ErrNoUserID):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, task.ErrNotFound),
		errors.Is(err, project.ErrNotFound),
		errors.Is(err, workplan.ErrNotFound),
		errors.Is(err, changerequest.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, changerequest.ErrInvalidState):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.As(err, &base):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: base.Message, Code: base.Code})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON[T any](w http.ResponseWriter, status int, payload T) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
