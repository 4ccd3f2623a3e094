package user

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (User, error)
	GetByCarnet(ctx context.Context, carnet string) (User, error)
	ListActive(ctx context.Context) ([]User, error)
}
