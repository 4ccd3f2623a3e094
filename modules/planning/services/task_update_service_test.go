package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clarityhq/workplan/modules/logging/domain/auditlog"
	"github.com/clarityhq/workplan/modules/planning/domain/changerequest"
	"github.com/clarityhq/workplan/modules/planning/domain/project"
	"github.com/clarityhq/workplan/modules/planning/domain/task"
	"github.com/clarityhq/workplan/pkg/serrors"
)

type updateFixture struct {
	perm     *permFixture
	gov      *govFixture
	progress *fakeProgressLog
	audit    *fakeAudit
	svc      *TaskUpdateService
}

func newUpdateFixture() *updateFixture {
	perm := newPermFixture()
	gov := newGovFixture()
	gov.tasks = perm.tasks
	gov.admins = perm.admins
	gov.svc = NewGovernanceService(gov.requests, perm.tasks, gov.graph, gov.gate, perm.admins, gov.audit)
	gov.svc.now = func() time.Time { return gov.now }

	f := &updateFixture{perm: perm, gov: gov, progress: &fakeProgressLog{}, audit: perm.audit}
	f.svc = NewTaskUpdateService(perm.tasks, f.progress, perm.svc, gov.svc, perm.audit)
	return f
}

func TestUpdateField_GovernedEditBecomesPendingRequest(t *testing.T) {
	f := newUpdateFixture()
	f.perm.projects.projects[9] = project.Project{ID: 9, Type: project.TypeStrategic, State: project.StateConfirmed}
	f.perm.tasks.tasks[101] = task.Task{ID: 101, ProjectID: ptrInt64(9), TargetDate: datePtr("2026-05-01")}

	out, err := f.svc.UpdateField(context.Background(), 101, 10, task.FieldTargetDate, "2026-06-01", "slipped")
	require.NoError(t, err)
	require.False(t, out.Applied)
	require.NotNil(t, out.Request)
	require.Equal(t, changerequest.StatePending, out.Request.State)
	require.Equal(t, "2026-05-01", out.Request.PreviousValue)
	require.Equal(t, "2026-06-01", out.Request.ProposedValue)
	require.Empty(t, f.perm.tasks.writes, "governed edit must not mutate the task")
}

func TestUpdateField_ExecutionFieldBypassesGovernance(t *testing.T) {
	f := newUpdateFixture()
	f.perm.projects.projects[9] = project.Project{ID: 9, Type: project.TypeStrategic}
	f.perm.tasks.tasks[101] = task.Task{ID: 101, ProjectID: ptrInt64(9)}

	out, err := f.svc.UpdateField(context.Background(), 101, 10, task.FieldProgress, "75", "")
	require.NoError(t, err)
	require.True(t, out.Applied)
	require.Nil(t, out.Request)
	require.Equal(t, []fieldWrite{{taskID: 101, field: task.FieldProgress, value: "75"}}, f.perm.tasks.writes)
}

func TestUpdateField_ProgressLogWriteAppendsEntry(t *testing.T) {
	f := newUpdateFixture()
	f.perm.projects.projects[9] = project.Project{ID: 9, Type: project.TypeStrategic}
	f.perm.tasks.tasks[101] = task.Task{ID: 101, ProjectID: ptrInt64(9)}

	require.True(t, task.IsExecutionField(task.FieldProgressLog))

	out, err := f.svc.UpdateField(context.Background(), 101, 10, task.FieldProgressLog, "waiting on vendor", "")
	require.NoError(t, err)
	require.True(t, out.Applied)
	require.Nil(t, out.Request)
	require.Empty(t, f.perm.tasks.writes, "a log entry is not a task column write")

	require.Len(t, f.progress.entries, 1)
	entry := f.progress.entries[0]
	require.Equal(t, int64(101), entry.TaskID)
	require.Equal(t, "waiting on vendor", entry.Comment)
	require.Nil(t, entry.Progress)
	require.Equal(t, ptrInt64(10), entry.AuthorID)

	require.Len(t, f.audit.byAction(auditlog.ActionTaskProgressRecorded), 1)
}

func TestRecordProgress_RollsUpOntoTask(t *testing.T) {
	f := newUpdateFixture()
	f.perm.tasks.tasks[1] = task.Task{ID: 1, Progress: 25}

	pct := 60
	entry, err := f.svc.RecordProgress(context.Background(), 1, 10, &pct, "ahead of plan")
	require.NoError(t, err)
	require.NotZero(t, entry.ID)
	require.Equal(t, 60, *entry.Progress)
	require.Equal(t, []fieldWrite{{taskID: 1, field: task.FieldProgress, value: "60"}}, f.perm.tasks.writes)

	entries := f.audit.byAction(auditlog.ActionTaskProgressRecorded)
	require.Len(t, entries, 1)
	require.Equal(t, 60, entries[0].Details["progress"])
	require.Equal(t, "ahead of plan", entries[0].Details["comment"])
}

func TestRecordProgress_TaskNotFound(t *testing.T) {
	f := newUpdateFixture()
	_, err := f.svc.RecordProgress(context.Background(), 404, 10, nil, "x")
	require.ErrorIs(t, err, task.ErrNotFound)
	require.Empty(t, f.progress.entries)
}

func TestUpdateField_FreeEditAppliesAndAudits(t *testing.T) {
	f := newUpdateFixture()
	f.perm.tasks.tasks[1] = task.Task{ID: 1}

	out, err := f.svc.UpdateField(context.Background(), 1, 10, task.FieldTitle, "renamed", "")
	require.NoError(t, err)
	require.True(t, out.Applied)
	require.Equal(t, []fieldWrite{{taskID: 1, field: task.FieldTitle, value: "renamed"}}, f.perm.tasks.writes)

	entries := f.audit.byAction(auditlog.ActionTaskFieldUpdated)
	require.Len(t, entries, 1)
	require.Equal(t, "renamed", entries[0].Details["value"])
}

func TestUpdateField_EmptyFieldRejected(t *testing.T) {
	f := newUpdateFixture()
	f.perm.tasks.tasks[1] = task.Task{ID: 1}

	_, err := f.svc.UpdateField(context.Background(), 1, 10, "", "x", "")
	var base *serrors.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, "FIELD_REQUIRED", base.Code)
}

func TestUpdateField_TaskNotFound(t *testing.T) {
	f := newUpdateFixture()
	_, err := f.svc.UpdateField(context.Background(), 404, 10, task.FieldTitle, "x", "")
	require.ErrorIs(t, err, task.ErrNotFound)
}
