package services

import (
	"context"
	"strconv"

	"github.com/clarityhq/workplan/modules/logging/domain/auditlog"
	"github.com/clarityhq/workplan/modules/planning/domain/changerequest"
	"github.com/clarityhq/workplan/modules/planning/domain/progresslog"
	"github.com/clarityhq/workplan/modules/planning/domain/task"
	"github.com/clarityhq/workplan/pkg/serrors"
)

// UpdateOutcome tells the caller whether the edit landed on the task or was
// parked as a pending change request.
type UpdateOutcome struct {
	Applied bool
	Request *changerequest.ChangeRequest
}

// TaskUpdateService is the single entry point for governed task edits: it
// runs the permission check and either applies the field write or hands it to
// the governance workflow.
type TaskUpdateService struct {
	tasks       task.Repository
	progressLog progresslog.Repository
	permissions *EditPermissionService
	governance  *GovernanceService
	audit       Auditor
}

func NewTaskUpdateService(
	tasks task.Repository,
	progressLog progresslog.Repository,
	permissions *EditPermissionService,
	governance *GovernanceService,
	audit Auditor,
) *TaskUpdateService {
	return &TaskUpdateService{
		tasks:       tasks,
		progressLog: progressLog,
		permissions: permissions,
		governance:  governance,
		audit:       audit,
	}
}

// UpdateField edits one field of a task on behalf of a user. Execution
// fields (state, progress, start/completion dates, progress log) apply
// directly even under governance; planning fields go through approval when
// the decision says so. Progress-log writes are append-only and land in the
// task's log rather than on a task column.
func (s *TaskUpdateService) UpdateField(ctx context.Context, taskID, userID int64, field, value, reason string) (UpdateOutcome, error) {
	if field == "" {
		return UpdateOutcome{}, serrors.NewFieldRequiredError("field")
	}

	decision, err := s.permissions.CheckEditPermission(ctx, taskID, userID)
	if err != nil {
		return UpdateOutcome{}, err
	}
	if !decision.CanEdit {
		return UpdateOutcome{}, ErrForbidden
	}

	if decision.RequiresApproval && !task.IsExecutionField(field) {
		cr, err := s.governance.Submit(ctx, taskID, userID, field, value, reason)
		if err != nil {
			return UpdateOutcome{}, err
		}
		return UpdateOutcome{Request: cr}, nil
	}

	if field == task.FieldProgressLog {
		if _, err := s.appendProgress(ctx, taskID, userID, nil, value); err != nil {
			return UpdateOutcome{}, err
		}
		return UpdateOutcome{Applied: true}, nil
	}

	if err := s.tasks.UpdateField(ctx, taskID, field, value); err != nil {
		return UpdateOutcome{}, err
	}

	s.audit.Log(ctx, auditlog.Entry{
		ActorID:      userID,
		Action:       auditlog.ActionTaskFieldUpdated,
		ResourceType: auditlog.ResourceTask,
		ResourceID:   formatID(taskID),
		Details: map[string]any{
			"field": field,
			"value": value,
		},
	})

	return UpdateOutcome{Applied: true}, nil
}

// RecordProgress appends a progress-log entry on behalf of a user and, when
// the entry carries a progress value, rolls it up onto the task. Progress
// recording is execution work, so it never waits on approval; the user still
// has to be allowed to edit the task at all.
func (s *TaskUpdateService) RecordProgress(ctx context.Context, taskID, userID int64, progress *int, comment string) (progresslog.Entry, error) {
	decision, err := s.permissions.CheckEditPermission(ctx, taskID, userID)
	if err != nil {
		return progresslog.Entry{}, err
	}
	if !decision.CanEdit {
		return progresslog.Entry{}, ErrForbidden
	}
	return s.appendProgress(ctx, taskID, userID, progress, comment)
}

func (s *TaskUpdateService) appendProgress(ctx context.Context, taskID, userID int64, progress *int, comment string) (progresslog.Entry, error) {
	entry, err := s.progressLog.Create(ctx, progresslog.Entry{
		TaskID:   taskID,
		AuthorID: &userID,
		Progress: progress,
		Comment:  comment,
	})
	if err != nil {
		return progresslog.Entry{}, err
	}

	details := map[string]any{"comment": comment}
	if progress != nil {
		if err := s.tasks.UpdateField(ctx, taskID, task.FieldProgress, strconv.Itoa(*progress)); err != nil {
			return progresslog.Entry{}, err
		}
		details["progress"] = *progress
	}

	s.audit.Log(ctx, auditlog.Entry{
		ActorID:      userID,
		Action:       auditlog.ActionTaskProgressRecorded,
		ResourceType: auditlog.ResourceTask,
		ResourceID:   formatID(taskID),
		Details:      details,
	})

	return entry, nil
}
