package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/clarityhq/workplan/modules/logging/domain/auditlog"
)

// ErrForbidden is returned when the requester has no authority over a target
// user. Surfaced to the caller, never retried.
var ErrForbidden = errors.New("forbidden")

// AccessGate is the slice of the org module the planning services use to
// answer "may requester act on target?".
type AccessGate interface {
	CanAct(ctx context.Context, requesterID, targetUserID int64) (bool, error)
}

// IdentityChecker resolves global-admin status.
type IdentityChecker interface {
	IsGlobalAdmin(ctx context.Context, userID int64) (bool, error)
}

// SubtreeExpander resolves the people inside a user's managed subtree.
type SubtreeExpander interface {
	ManagedSubtreeMembers(ctx context.Context, userID int64) ([]int64, error)
}

// Auditor records best-effort audit entries. Implementations must never fail
// the calling operation.
type Auditor interface {
	Log(ctx context.Context, entry auditlog.Entry)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
