package delegation

import "context"

type Repository interface {
	// ActiveDelegatorCarnets returns carnets that currently delegate their
	// visibility to the given delegate.
	ActiveDelegatorCarnets(ctx context.Context, delegateCarnet string) ([]string, error)
}
