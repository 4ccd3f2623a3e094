package override

import "context"

type Repository interface {
	// ListActiveFor returns the currently active overrides received by any of
	// the given carnets.
	ListActiveFor(ctx context.Context, receiverCarnets []string) ([]Override, error)
}
