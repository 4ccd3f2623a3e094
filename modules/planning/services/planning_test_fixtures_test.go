package services

import (
	"context"
	"sort"
	"time"

	"github.com/clarityhq/workplan/modules/logging/domain/auditlog"
	"github.com/clarityhq/workplan/modules/planning/domain/assignment"
	"github.com/clarityhq/workplan/modules/planning/domain/changerequest"
	"github.com/clarityhq/workplan/modules/planning/domain/progresslog"
	"github.com/clarityhq/workplan/modules/planning/domain/project"
	"github.com/clarityhq/workplan/modules/planning/domain/task"
	"github.com/clarityhq/workplan/modules/planning/domain/workplan"
	"github.com/clarityhq/workplan/pkg/serrors"
)

// In-memory fakes shared by the planning service tests.

type fieldWrite struct {
	taskID int64
	field  string
	value  string
}

type fakeTasks struct {
	tasks  map[int64]task.Task
	writes []fieldWrite
}

func (f *fakeTasks) GetByID(_ context.Context, id int64) (task.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (f *fakeTasks) UpdateField(_ context.Context, id int64, field, value string) error {
	// Mirror the store's column whitelist: only fields with a scalar
	// representation land on the task row.
	if _, ok := (task.Task{}).FieldValue(field); !ok {
		return serrors.NewFieldNotAllowedError(field)
	}
	if _, ok := f.tasks[id]; !ok {
		return task.ErrNotFound
	}
	f.writes = append(f.writes, fieldWrite{taskID: id, field: field, value: value})
	return nil
}

func (f *fakeTasks) UpdateFields(ctx context.Context, id int64, fields map[string]string) error {
	for field, value := range fields {
		if err := f.UpdateField(ctx, id, field, value); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeTasks) StatesByID(_ context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	for _, id := range ids {
		if t, ok := f.tasks[id]; ok {
			out[id] = t.State
		}
	}
	return out, nil
}

type fakeProgressLog struct {
	seq     int64
	entries []progresslog.Entry
}

func (f *fakeProgressLog) Create(_ context.Context, entry progresslog.Entry) (progresslog.Entry, error) {
	f.seq++
	entry.ID = f.seq
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeProgressLog) ListByTask(_ context.Context, taskID int64) ([]progresslog.Entry, error) {
	var out []progresslog.Entry
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].TaskID == taskID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

type fakeProjects struct {
	projects map[int64]project.Project
}

func (f *fakeProjects) GetByID(_ context.Context, id int64) (project.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return project.Project{}, project.ErrNotFound
	}
	return p, nil
}

type fakePlans struct {
	plans map[int64]workplan.WorkPlan
}

func (f *fakePlans) GetByID(_ context.Context, id int64) (workplan.WorkPlan, error) {
	p, ok := f.plans[id]
	if !ok {
		return workplan.WorkPlan{}, workplan.ErrNotFound
	}
	return p, nil
}

type fakeRequests struct {
	seq   int64
	items []*changerequest.ChangeRequest
}

func (f *fakeRequests) Create(_ context.Context, cr *changerequest.ChangeRequest) (*changerequest.ChangeRequest, error) {
	f.seq++
	stored := *cr
	stored.ID = f.seq
	f.items = append(f.items, &stored)
	out := stored
	return &out, nil
}

func (f *fakeRequests) find(id int64) *changerequest.ChangeRequest {
	for _, cr := range f.items {
		if cr.ID == id {
			return cr
		}
	}
	return nil
}

func (f *fakeRequests) GetByID(_ context.Context, id int64) (*changerequest.ChangeRequest, error) {
	cr := f.find(id)
	if cr == nil {
		return nil, changerequest.ErrNotFound
	}
	out := *cr
	return &out, nil
}

func (f *fakeRequests) ListPending(_ context.Context) ([]*changerequest.ChangeRequest, error) {
	return f.pending(nil), nil
}

func (f *fakeRequests) ListPendingByRequesters(_ context.Context, requesterIDs []int64) ([]*changerequest.ChangeRequest, error) {
	allowed := make(map[int64]struct{}, len(requesterIDs))
	for _, id := range requesterIDs {
		allowed[id] = struct{}{}
	}
	return f.pending(allowed), nil
}

func (f *fakeRequests) pending(requesters map[int64]struct{}) []*changerequest.ChangeRequest {
	var out []*changerequest.ChangeRequest
	for _, cr := range f.items {
		if cr.State != changerequest.StatePending {
			continue
		}
		if requesters != nil {
			if _, ok := requesters[cr.RequesterID]; !ok {
				continue
			}
		}
		copied := *cr
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (f *fakeRequests) MarkResolved(_ context.Context, id int64, state string, approverID int64, comment string, at time.Time) (bool, error) {
	cr := f.find(id)
	if cr == nil {
		return false, changerequest.ErrNotFound
	}
	if cr.State != changerequest.StatePending {
		return false, nil
	}
	cr.State = state
	cr.ApproverID = &approverID
	cr.ResolutionComment = comment
	cr.ResolvedAt = &at
	return true, nil
}

type fakeAssignments struct {
	items []assignment.Assignment
}

func (f *fakeAssignments) ListActiveByUser(_ context.Context, userID int64) ([]assignment.Assignment, error) {
	var out []assignment.Assignment
	for _, a := range f.items {
		if a.Active && a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignments) ExistsForTask(_ context.Context, taskID, userID int64) (bool, error) {
	for _, a := range f.items {
		if a.Active && a.TaskID == taskID && a.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAssignments) ChangeUser(_ context.Context, id, newUserID int64) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].UserID = newUserID
			return nil
		}
	}
	return assignment.ErrNotFound
}

func (f *fakeAssignments) Delete(_ context.Context, id int64) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return assignment.ErrNotFound
}

func (f *fakeAssignments) activeOn(taskID int64) []assignment.Assignment {
	var out []assignment.Assignment
	for _, a := range f.items {
		if a.Active && a.TaskID == taskID {
			out = append(out, a)
		}
	}
	return out
}

type gateKey struct {
	requester int64
	target    int64
}

type fakeGate struct {
	allow map[gateKey]bool
}

func (f *fakeGate) CanAct(_ context.Context, requesterID, targetUserID int64) (bool, error) {
	if requesterID == targetUserID {
		return true, nil
	}
	return f.allow[gateKey{requesterID, targetUserID}], nil
}

type fakeAdmins struct {
	admins map[int64]bool
}

func (f *fakeAdmins) IsGlobalAdmin(_ context.Context, userID int64) (bool, error) {
	return f.admins[userID], nil
}

type fakeExpander struct {
	members map[int64][]int64
}

func (f *fakeExpander) ManagedSubtreeMembers(_ context.Context, userID int64) ([]int64, error) {
	return f.members[userID], nil
}

type fakeAudit struct {
	entries []auditlog.Entry
}

func (f *fakeAudit) Log(_ context.Context, entry auditlog.Entry) {
	f.entries = append(f.entries, entry)
}

func (f *fakeAudit) byAction(action string) []auditlog.Entry {
	var out []auditlog.Entry
	for _, e := range f.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func ptrInt64(v int64) *int64 { return &v }

func datePtr(value string) *time.Time {
	t, err := time.Parse(task.DateLayout, value)
	if err != nil {
		panic(err)
	}
	return &t
}
