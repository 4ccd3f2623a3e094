package services

import (
	"context"
	"time"

	"github.com/clarityhq/workplan/modules/logging/domain/auditlog"
	"github.com/clarityhq/workplan/modules/planning/domain/project"
	"github.com/clarityhq/workplan/modules/planning/domain/task"
	"github.com/clarityhq/workplan/modules/planning/domain/workplan"
	"github.com/clarityhq/workplan/pkg/metrics"
)

// ProjectTypePersonal labels tasks that belong to no project.
const ProjectTypePersonal = "Personal"

// EditDecision is the caller-facing verdict of a permission check.
type EditDecision struct {
	CanEdit          bool   `json:"canEdit"`
	RequiresApproval bool   `json:"requiresApproval"`
	ProjectTypeLabel string `json:"projectTypeLabel"`
}

// EditPermissionService decides whether a task edit applies immediately or
// must go through the approval workflow. Decisions are evaluated fresh per
// call; nothing here is cached.
type EditPermissionService struct {
	tasks    task.Repository
	projects project.Repository
	plans    workplan.Repository
	gate     AccessGate
	identity IdentityChecker
	audit    Auditor

	// imminentDays is the days-until-target-date window inside which an
	// otherwise-free edit still requires approval.
	imminentDays int
	now          func() time.Time
}

func NewEditPermissionService(
	tasks task.Repository,
	projects project.Repository,
	plans workplan.Repository,
	gate AccessGate,
	identity IdentityChecker,
	audit Auditor,
	imminentDays int,
) *EditPermissionService {
	return &EditPermissionService{
		tasks:        tasks,
		projects:     projects,
		plans:        plans,
		gate:         gate,
		identity:     identity,
		audit:        audit,
		imminentDays: imminentDays,
		now:          time.Now,
	}
}

// CheckEditPermission evaluates the decision ladder for one task and user.
// First match wins: locked plan, personal task, governed project, free
// operational edit (subject to the imminent-deadline window).
func (s *EditPermissionService) CheckEditPermission(ctx context.Context, taskID, userID int64) (EditDecision, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return EditDecision{}, err
	}

	label := ProjectTypePersonal
	var proj *project.Project
	if t.ProjectID != nil {
		p, err := s.projects.GetByID(ctx, *t.ProjectID)
		if err != nil {
			return EditDecision{}, err
		}
		proj = &p
		label = p.Type
	}

	decision, err := s.decide(ctx, t, proj, userID)
	if err != nil {
		return EditDecision{}, err
	}
	decision.ProjectTypeLabel = label

	outcome := "free"
	if decision.RequiresApproval {
		outcome = "approval_required"
	}
	metrics.EditDecisions.WithLabelValues(outcome).Inc()

	s.audit.Log(ctx, auditlog.Entry{
		ActorID:      userID,
		Action:       auditlog.ActionEditDecision,
		ResourceType: auditlog.ResourceTask,
		ResourceID:   formatID(taskID),
		Details: map[string]any{
			"requiresApproval": decision.RequiresApproval,
			"projectType":      decision.ProjectTypeLabel,
		},
	})

	return decision, nil
}

func (s *EditPermissionService) decide(ctx context.Context, t task.Task, proj *project.Project, userID int64) (EditDecision, error) {
	if t.PlanID != nil {
		plan, err := s.plans.GetByID(ctx, *t.PlanID)
		if err != nil {
			return EditDecision{}, err
		}
		if plan.Locked() {
			return s.decideLockedPlan(ctx, plan, userID)
		}
	}

	if proj == nil {
		return EditDecision{CanEdit: true}, nil
	}

	if proj.Governed() {
		isAdmin, err := s.identity.IsGlobalAdmin(ctx, userID)
		if err != nil {
			return EditDecision{}, err
		}
		return EditDecision{CanEdit: true, RequiresApproval: !isAdmin}, nil
	}

	return EditDecision{CanEdit: true, RequiresApproval: s.deadlineImminent(t)}, nil
}

// decideLockedPlan ranks the requester's standing toward a Confirmed/Closed
// plan: admins and the plan's creator or the owner's managers edit freely,
// the owner edits under approval, everyone else likewise.
func (s *EditPermissionService) decideLockedPlan(ctx context.Context, plan workplan.WorkPlan, userID int64) (EditDecision, error) {
	isAdmin, err := s.identity.IsGlobalAdmin(ctx, userID)
	if err != nil {
		return EditDecision{}, err
	}
	if isAdmin {
		return EditDecision{CanEdit: true}, nil
	}

	if userID == plan.OwnerID {
		return EditDecision{CanEdit: true, RequiresApproval: true}, nil
	}

	if userID == plan.CreatedBy {
		return EditDecision{CanEdit: true}, nil
	}
	managesOwner, err := s.gate.CanAct(ctx, userID, plan.OwnerID)
	if err != nil {
		return EditDecision{}, err
	}
	if managesOwner {
		return EditDecision{CanEdit: true}, nil
	}

	return EditDecision{CanEdit: true, RequiresApproval: true}, nil
}

// deadlineImminent reports whether the task's current target date falls
// inside the approval-forcing window. Tasks without a target date are never
// imminent. Overdue tasks are.
func (s *EditPermissionService) deadlineImminent(t task.Task) bool {
	if t.TargetDate == nil {
		return false
	}
	days := t.TargetDate.Sub(s.now()).Hours() / 24
	return days <= float64(s.imminentDays)
}
