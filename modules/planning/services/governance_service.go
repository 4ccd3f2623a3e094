package services

import (
	"context"
	"time"

	"github.com/clarityhq/workplan/modules/logging/domain/auditlog"
	"github.com/clarityhq/workplan/modules/planning/domain/changerequest"
	"github.com/clarityhq/workplan/modules/planning/domain/task"
	"github.com/clarityhq/workplan/pkg/metrics"
	"github.com/clarityhq/workplan/pkg/serrors"
)

// ResolveAction is the caller's verdict on a pending change request.
type ResolveAction string

const (
	ResolveApprove ResolveAction = "Approve"
	ResolveReject  ResolveAction = "Reject"
)

func (a ResolveAction) targetState() (string, bool) {
	switch a {
	case ResolveApprove:
		return changerequest.StateApproved, true
	case ResolveReject:
		return changerequest.StateRejected, true
	}
	return "", false
}

// GovernanceService runs the change-request workflow: submission, the
// approver-scoped pending queue, and resolution with field application.
type GovernanceService struct {
	requests changerequest.Repository
	tasks    task.Repository
	graph    SubtreeExpander
	gate     AccessGate
	identity IdentityChecker
	audit    Auditor

	now func() time.Time
}

func NewGovernanceService(
	requests changerequest.Repository,
	tasks task.Repository,
	graph SubtreeExpander,
	gate AccessGate,
	identity IdentityChecker,
	audit Auditor,
) *GovernanceService {
	return &GovernanceService{
		requests: requests,
		tasks:    tasks,
		graph:    graph,
		gate:     gate,
		identity: identity,
		audit:    audit,
		now:      time.Now,
	}
}

// Submit captures the field's current value and creates a Pending request.
// The task itself is untouched until approval.
func (s *GovernanceService) Submit(ctx context.Context, taskID, requesterID int64, field, proposedValue, reason string) (*changerequest.ChangeRequest, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	previous, ok := t.FieldValue(field)
	if !ok {
		return nil, serrors.NewFieldNotAllowedError(field)
	}

	cr, err := s.requests.Create(ctx, &changerequest.ChangeRequest{
		TaskID:        taskID,
		RequesterID:   requesterID,
		Field:         field,
		PreviousValue: previous,
		ProposedValue: proposedValue,
		Reason:        reason,
		State:         changerequest.StatePending,
		CreatedAt:     s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, auditlog.Entry{
		ActorID:      requesterID,
		Action:       auditlog.ActionChangeRequestCreated,
		ResourceType: auditlog.ResourceChangeRequest,
		ResourceID:   formatID(cr.ID),
		Details: map[string]any{
			"taskId":        taskID,
			"field":         field,
			"previousValue": previous,
			"proposedValue": proposedValue,
		},
	})

	return cr, nil
}

// ListPending returns the requests awaiting the approver's verdict. A manager
// sees requests raised inside their subtree (their own excluded); a global
// admin managing no subtree sees everything; anyone else sees nothing.
func (s *GovernanceService) ListPending(ctx context.Context, approverID int64) ([]*changerequest.ChangeRequest, error) {
	members, err := s.graph.ManagedSubtreeMembers(ctx, approverID)
	if err != nil {
		return nil, err
	}

	if len(members) > 0 {
		requesters := make([]int64, 0, len(members))
		for _, id := range members {
			if id != approverID {
				requesters = append(requesters, id)
			}
		}
		if len(requesters) == 0 {
			return nil, nil
		}
		return s.requests.ListPendingByRequesters(ctx, requesters)
	}

	isAdmin, err := s.identity.IsGlobalAdmin(ctx, approverID)
	if err != nil {
		return nil, err
	}
	if isAdmin {
		return s.requests.ListPending(ctx)
	}
	return nil, nil
}

// Resolve moves a pending request to a terminal state. The pending check and
// the state write happen in one conditional update, so a concurrent second
// resolution loses and surfaces ErrInvalidState instead of overwriting.
func (s *GovernanceService) Resolve(ctx context.Context, approverID, requestID int64, action ResolveAction, comment string) (*changerequest.ChangeRequest, error) {
	state, ok := action.targetState()
	if !ok {
		return nil, serrors.NewError("INVALID_ACTION", "unknown resolution action", string(action))
	}

	cr, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeResolution(ctx, approverID, cr.RequesterID); err != nil {
		return nil, err
	}

	if err := cr.Transition(state); err != nil {
		return nil, err
	}

	resolvedAt := s.now()
	claimed, err := s.requests.MarkResolved(ctx, requestID, state, approverID, comment, resolvedAt)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, changerequest.ErrInvalidState
	}

	cr.ApproverID = &approverID
	cr.ResolutionComment = comment
	cr.ResolvedAt = &resolvedAt

	if state == changerequest.StateApproved {
		if err := s.apply(ctx, cr); err != nil {
			return nil, err
		}
		metrics.ChangeRequestResolutions.WithLabelValues("approved").Inc()
	} else {
		metrics.ChangeRequestResolutions.WithLabelValues("rejected").Inc()
	}

	return cr, nil
}

// authorizeResolution allows global admins and managers with authority over
// the requester. Everyone else is Forbidden.
func (s *GovernanceService) authorizeResolution(ctx context.Context, approverID, requesterID int64) error {
	isAdmin, err := s.identity.IsGlobalAdmin(ctx, approverID)
	if err != nil {
		return err
	}
	if isAdmin {
		return nil
	}
	ok, err := s.gate.CanAct(ctx, approverID, requesterID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// apply writes the approved value into the task. The value stays a string;
// the store coerces it to the column type.
func (s *GovernanceService) apply(ctx context.Context, cr *changerequest.ChangeRequest) error {
	if err := s.tasks.UpdateField(ctx, cr.TaskID, cr.Field, cr.ProposedValue); err != nil {
		return err
	}
	s.audit.Log(ctx, auditlog.Entry{
		ActorID:      *cr.ApproverID,
		Action:       auditlog.ActionChangeRequestApplied,
		ResourceType: auditlog.ResourceTask,
		ResourceID:   formatID(cr.TaskID),
		Details: map[string]any{
			"requestId": cr.ID,
			"field":     cr.Field,
			"value":     cr.ProposedValue,
		},
	})
	return nil
}
