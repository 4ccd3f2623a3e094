package persistence

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/clarityhq/workplan/modules/planning/domain/workplan"
	"github.com/clarityhq/workplan/pkg/composables"
)

const workPlanByIDQuery = `
	SELECT p.id, p.owner_id, p.created_by, p.state, p.month, p.year
	FROM work_plans p
	WHERE p.id = $1`

type PgWorkPlanRepository struct{}

func NewWorkPlanRepository() workplan.Repository {
	return &PgWorkPlanRepository{}
}

func (r *PgWorkPlanRepository) GetByID(ctx context.Context, id int64) (workplan.WorkPlan, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return workplan.WorkPlan{}, err
	}
	var p workplan.WorkPlan
	err = tx.QueryRow(ctx, workPlanByIDQuery, id).Scan(
		&p.ID, &p.OwnerID, &p.CreatedBy, &p.State, &p.Month, &p.Year,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return workplan.WorkPlan{}, workplan.ErrNotFound
	}
	return p, err
}
