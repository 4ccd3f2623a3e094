package project

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (Project, error)
}
