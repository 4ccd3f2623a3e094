package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clarityhq/workplan/modules/planning/domain/changerequest"
	"github.com/clarityhq/workplan/modules/planning/domain/task"
	"github.com/clarityhq/workplan/pkg/serrors"
)

type govFixture struct {
	requests *fakeRequests
	tasks    *fakeTasks
	graph    *fakeExpander
	gate     *fakeGate
	admins   *fakeAdmins
	audit    *fakeAudit
	now      time.Time
	svc      *GovernanceService
}

func newGovFixture() *govFixture {
	f := &govFixture{
		requests: &fakeRequests{},
		tasks:    &fakeTasks{tasks: map[int64]task.Task{}},
		graph:    &fakeExpander{members: map[int64][]int64{}},
		gate:     &fakeGate{allow: map[gateKey]bool{}},
		admins:   &fakeAdmins{admins: map[int64]bool{}},
		audit:    &fakeAudit{},
		now:      time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewGovernanceService(f.requests, f.tasks, f.graph, f.gate, f.admins, f.audit)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestSubmit_CapturesPreviousValueWithoutTouchingTask(t *testing.T) {
	f := newGovFixture()
	f.tasks.tasks[101] = task.Task{ID: 101, TargetDate: datePtr("2026-05-01")}

	cr, err := f.svc.Submit(context.Background(), 101, 10, task.FieldTargetDate, "2026-06-01", "slipped a month")
	require.NoError(t, err)
	require.Equal(t, changerequest.StatePending, cr.State)
	require.Equal(t, "2026-05-01", cr.PreviousValue)
	require.Equal(t, "2026-06-01", cr.ProposedValue)
	require.Equal(t, int64(10), cr.RequesterID)
	require.Empty(t, f.tasks.writes, "submission must not mutate the task")
}

func TestSubmit_AbsentFieldValueCoercesToEmptyString(t *testing.T) {
	f := newGovFixture()
	f.tasks.tasks[101] = task.Task{ID: 101}

	cr, err := f.svc.Submit(context.Background(), 101, 10, task.FieldTargetDate, "2026-06-01", "")
	require.NoError(t, err)
	require.Equal(t, "", cr.PreviousValue)
}

func TestSubmit_UnknownFieldRejected(t *testing.T) {
	f := newGovFixture()
	f.tasks.tasks[101] = task.Task{ID: 101}

	_, err := f.svc.Submit(context.Background(), 101, 10, "budget", "1000", "")
	var base *serrors.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, "FIELD_NOT_ALLOWED", base.Code)
}

func TestSubmit_TaskNotFound(t *testing.T) {
	f := newGovFixture()
	_, err := f.svc.Submit(context.Background(), 404, 10, task.FieldTitle, "x", "")
	require.ErrorIs(t, err, task.ErrNotFound)
}

func TestListPending_ScopedToApproverSubtree(t *testing.T) {
	f := newGovFixture()
	f.tasks.tasks[1] = task.Task{ID: 1}
	f.graph.members[7] = []int64{7, 10, 11}

	mustSubmit := func(requesterID int64, at time.Time) *changerequest.ChangeRequest {
		f.now = at
		cr, err := f.svc.Submit(context.Background(), 1, requesterID, task.FieldTitle, "t", "")
		require.NoError(t, err)
		return cr
	}
	older := mustSubmit(10, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	newer := mustSubmit(11, time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC))
	mustSubmit(7, time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC))  // approver's own
	mustSubmit(99, time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)) // outside subtree

	got, err := f.svc.ListPending(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, newer.ID, got[0].ID, "newest first")
	require.Equal(t, older.ID, got[1].ID)
}

func TestListPending_AdminWithoutSubtreeSeesAll(t *testing.T) {
	f := newGovFixture()
	f.tasks.tasks[1] = task.Task{ID: 1}
	f.admins.admins[1] = true
	for _, requesterID := range []int64{10, 11, 12} {
		_, err := f.svc.Submit(context.Background(), 1, requesterID, task.FieldTitle, "t", "")
		require.NoError(t, err)
	}

	got, err := f.svc.ListPending(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 3)
}

func TestListPending_NobodySeesNothing(t *testing.T) {
	f := newGovFixture()
	f.tasks.tasks[1] = task.Task{ID: 1}
	_, err := f.svc.Submit(context.Background(), 1, 10, task.FieldTitle, "t", "")
	require.NoError(t, err)

	got, err := f.svc.ListPending(context.Background(), 50)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestResolve_ApproveAppliesFieldAndMarksRequest(t *testing.T) {
	f := newGovFixture()
	f.tasks.tasks[42] = task.Task{ID: 42, TargetDate: datePtr("2026-02-15")}
	f.admins.admins[1] = true

	cr, err := f.svc.Submit(context.Background(), 42, 10, task.FieldTargetDate, "2026-03-01", "")
	require.NoError(t, err)

	resolved, err := f.svc.Resolve(context.Background(), 1, cr.ID, ResolveApprove, "ok")
	require.NoError(t, err)
	require.Equal(t, changerequest.StateApproved, resolved.State)
	require.NotNil(t, resolved.ApproverID)
	require.Equal(t, int64(1), *resolved.ApproverID)
	require.NotNil(t, resolved.ResolvedAt)

	require.Equal(t, []fieldWrite{{taskID: 42, field: task.FieldTargetDate, value: "2026-03-01"}}, f.tasks.writes)
}

func TestResolve_SecondResolutionFailsWithInvalidState(t *testing.T) {
	f := newGovFixture()
	f.tasks.tasks[42] = task.Task{ID: 42}
	f.admins.admins[1] = true

	cr, err := f.svc.Submit(context.Background(), 42, 10, task.FieldTargetDate, "2026-03-01", "")
	require.NoError(t, err)

	_, err = f.svc.Resolve(context.Background(), 1, cr.ID, ResolveApprove, "")
	require.NoError(t, err)
	writes := len(f.tasks.writes)

	for _, action := range []ResolveAction{ResolveApprove, ResolveReject} {
		_, err = f.svc.Resolve(context.Background(), 1, cr.ID, action, "")
		require.ErrorIs(t, err, changerequest.ErrInvalidState)
	}
	require.Len(t, f.tasks.writes, writes, "a failed resolution must not touch the task")
}

func TestResolve_RejectLeavesTaskAlone(t *testing.T) {
	f := newGovFixture()
	f.tasks.tasks[42] = task.Task{ID: 42}
	f.admins.admins[1] = true

	cr, err := f.svc.Submit(context.Background(), 42, 10, task.FieldTitle, "new title", "")
	require.NoError(t, err)

	resolved, err := f.svc.Resolve(context.Background(), 1, cr.ID, ResolveReject, "not now")
	require.NoError(t, err)
	require.Equal(t, changerequest.StateRejected, resolved.State)
	require.Equal(t, "not now", resolved.ResolutionComment)
	require.Empty(t, f.tasks.writes)
}

func TestResolve_UnknownRequest(t *testing.T) {
	f := newGovFixture()
	_, err := f.svc.Resolve(context.Background(), 1, 404, ResolveApprove, "")
	require.ErrorIs(t, err, changerequest.ErrNotFound)
}

func TestResolve_ForbiddenWithoutAuthorityOverRequester(t *testing.T) {
	f := newGovFixture()
	f.tasks.tasks[42] = task.Task{ID: 42}

	cr, err := f.svc.Submit(context.Background(), 42, 10, task.FieldTitle, "t", "")
	require.NoError(t, err)

	_, err = f.svc.Resolve(context.Background(), 50, cr.ID, ResolveApprove, "")
	require.ErrorIs(t, err, ErrForbidden)

	stored, err := f.requests.GetByID(context.Background(), cr.ID)
	require.NoError(t, err)
	require.Equal(t, changerequest.StatePending, stored.State)
}

func TestResolve_ManagerOfRequesterMayResolve(t *testing.T) {
	f := newGovFixture()
	f.tasks.tasks[42] = task.Task{ID: 42}
	f.gate.allow[gateKey{7, 10}] = true

	cr, err := f.svc.Submit(context.Background(), 42, 10, task.FieldTitle, "t", "")
	require.NoError(t, err)

	resolved, err := f.svc.Resolve(context.Background(), 7, cr.ID, ResolveReject, "")
	require.NoError(t, err)
	require.Equal(t, changerequest.StateRejected, resolved.State)
}
