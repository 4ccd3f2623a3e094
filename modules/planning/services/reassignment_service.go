package services

import (
	"context"
	"fmt"

	"github.com/clarityhq/workplan/modules/logging/domain/auditlog"
	"github.com/clarityhq/workplan/modules/planning/domain/assignment"
	"github.com/clarityhq/workplan/modules/planning/domain/task"
)

// ReassignConflict records one assignment merged away because the destination
// user already held one on the same task.
type ReassignConflict struct {
	TaskID int64  `json:"taskId"`
	Note   string `json:"note"`
}

// ReassignResult is the caller-facing summary of a reassignment batch.
type ReassignResult struct {
	Count     int                `json:"count"`
	Conflicts []ReassignConflict `json:"conflicts"`
}

// ReassignmentService bulk-moves active assignments between two users.
type ReassignmentService struct {
	assignments assignment.Repository
	tasks       task.Repository
	gate        AccessGate
	audit       Auditor
}

func NewReassignmentService(
	assignments assignment.Repository,
	tasks task.Repository,
	gate AccessGate,
	audit Auditor,
) *ReassignmentService {
	return &ReassignmentService{
		assignments: assignments,
		tasks:       tasks,
		gate:        gate,
		audit:       audit,
	}
}

// Reassign moves fromUserID's active assignments to toUserID, optionally
// restricted to taskIDs. The requester must hold authority over both users.
// Finished and discarded tasks are skipped. When the destination already
// holds an assignment on a task the source assignment is deleted and the
// batch reports a conflict, keeping at most one assignment per (task, user).
func (s *ReassignmentService) Reassign(ctx context.Context, requesterID, fromUserID, toUserID int64, taskIDs []int64) (ReassignResult, error) {
	for _, target := range []int64{fromUserID, toUserID} {
		ok, err := s.gate.CanAct(ctx, requesterID, target)
		if err != nil {
			return ReassignResult{}, err
		}
		if !ok {
			return ReassignResult{}, ErrForbidden
		}
	}

	selected, err := s.selectAssignments(ctx, fromUserID, taskIDs)
	if err != nil {
		return ReassignResult{}, err
	}

	result := ReassignResult{Conflicts: []ReassignConflict{}}
	moved := make([]int64, 0, len(selected))
	for _, a := range selected {
		exists, err := s.assignments.ExistsForTask(ctx, a.TaskID, toUserID)
		if err != nil {
			return ReassignResult{}, err
		}
		if exists {
			if err := s.assignments.Delete(ctx, a.ID); err != nil {
				return ReassignResult{}, err
			}
			result.Conflicts = append(result.Conflicts, ReassignConflict{
				TaskID: a.TaskID,
				Note:   fmt.Sprintf("user %d already assigned to task %d; source assignment merged", toUserID, a.TaskID),
			})
			continue
		}
		if err := s.assignments.ChangeUser(ctx, a.ID, toUserID); err != nil {
			return ReassignResult{}, err
		}
		moved = append(moved, a.TaskID)
		result.Count++
	}

	conflictTasks := make([]int64, 0, len(result.Conflicts))
	for _, c := range result.Conflicts {
		conflictTasks = append(conflictTasks, c.TaskID)
	}
	s.audit.Log(ctx, auditlog.Entry{
		ActorID:      requesterID,
		Action:       auditlog.ActionTasksReassigned,
		ResourceType: auditlog.ResourceAssignment,
		ResourceID:   formatID(fromUserID),
		Details: map[string]any{
			"fromUserId":    fromUserID,
			"toUserId":      toUserID,
			"moved":         result.Count,
			"movedTasks":    moved,
			"conflictTasks": conflictTasks,
		},
	})

	return result, nil
}

// selectAssignments picks fromUserID's active assignments on tasks still open
// for reassignment (Pending, InProgress, Blocked, Draft).
func (s *ReassignmentService) selectAssignments(ctx context.Context, fromUserID int64, taskIDs []int64) ([]assignment.Assignment, error) {
	all, err := s.assignments.ListActiveByUser(ctx, fromUserID)
	if err != nil {
		return nil, err
	}

	var wanted map[int64]struct{}
	if len(taskIDs) > 0 {
		wanted = make(map[int64]struct{}, len(taskIDs))
		for _, id := range taskIDs {
			wanted[id] = struct{}{}
		}
	}

	candidates := make([]assignment.Assignment, 0, len(all))
	ids := make([]int64, 0, len(all))
	for _, a := range all {
		if wanted != nil {
			if _, ok := wanted[a.TaskID]; !ok {
				continue
			}
		}
		candidates = append(candidates, a)
		ids = append(ids, a.TaskID)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	states, err := s.tasks.StatesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	selected := make([]assignment.Assignment, 0, len(candidates))
	for _, a := range candidates {
		if task.ReassignableState(states[a.TaskID]) {
			selected = append(selected, a)
		}
	}
	return selected, nil
}
