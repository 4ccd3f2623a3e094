package composables

import (
	"context"
	"errors"

	"github.com/clarityhq/workplan/pkg/constants"
)

var ErrNoUserID = errors.New("no user id found in context")

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, constants.UserIDKey, userID)
}

// UseUserID returns the acting user established by the auth middleware.
func UseUserID(ctx context.Context) (int64, error) {
	v := ctx.Value(constants.UserIDKey)
	if v == nil {
		return 0, ErrNoUserID
	}
	return v.(int64), nil
}
