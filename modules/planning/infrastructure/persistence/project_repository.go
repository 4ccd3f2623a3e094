package persistence

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/clarityhq/workplan/modules/planning/domain/project"
	"github.com/clarityhq/workplan/pkg/composables"
)

const projectByIDQuery = `
	SELECT p.id, p.name, p.type, p.state, p.requires_approval, p.creator_id
	FROM projects p
	WHERE p.id = $1`

type PgProjectRepository struct{}

func NewProjectRepository() project.Repository {
	return &PgProjectRepository{}
}

func (r *PgProjectRepository) GetByID(ctx context.Context, id int64) (project.Project, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return project.Project{}, err
	}
	var p project.Project
	err = tx.QueryRow(ctx, projectByIDQuery, id).Scan(
		&p.ID, &p.Name, &p.Type, &p.State, &p.RequiresApproval, &p.CreatorID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return project.Project{}, project.ErrNotFound
	}
	return p, err
}
