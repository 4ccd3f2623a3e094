package changerequest

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, cr *ChangeRequest) (*ChangeRequest, error)
	GetByID(ctx context.Context, id int64) (*ChangeRequest, error)
	// ListPending returns all pending requests, newest first.
	ListPending(ctx context.Context) ([]*ChangeRequest, error)
	// ListPendingByRequesters returns pending requests raised by any of the
	// given users, newest first.
	ListPendingByRequesters(ctx context.Context, requesterIDs []int64) ([]*ChangeRequest, error)
	// MarkResolved moves a request to a terminal state if and only if it is
	// still pending. Returns false when the request exists but was already
	// resolved.
	MarkResolved(ctx context.Context, id int64, state string, approverID int64, comment string, at time.Time) (bool, error)
}
