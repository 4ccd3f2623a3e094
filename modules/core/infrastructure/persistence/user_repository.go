package persistence

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/clarityhq/workplan/modules/core/domain/user"
	"github.com/clarityhq/workplan/pkg/composables"
)

const (
	userSelectQuery = `
		SELECT
			u.id,
			u.carnet,
			u.full_name,
			u.email,
			u.global_role,
			u.active,
			u.created_at
		FROM users u`

	userByIDQuery       = userSelectQuery + ` WHERE u.id = $1`
	userByCarnetQuery   = userSelectQuery + ` WHERE u.carnet = $1`
	userListActiveQuery = userSelectQuery + ` WHERE u.active ORDER BY u.full_name, u.id`
)

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

func (r *PgUserRepository) GetByID(ctx context.Context, id int64) (user.User, error) {
	return r.queryOne(ctx, userByIDQuery, id)
}

func (r *PgUserRepository) GetByCarnet(ctx context.Context, carnet string) (user.User, error) {
	return r.queryOne(ctx, userByCarnetQuery, carnet)
}

func (r *PgUserRepository) ListActive(ctx context.Context) ([]user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, userListActiveQuery)
	if err != nil {
		return nil, errors.Wrap(err, "listing active users")
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PgUserRepository) queryOne(ctx context.Context, query string, arg any) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	u, err := scanUser(tx.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, user.ErrNotFound
	}
	return u, err
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Carnet, &u.FullName, &u.Email, &u.GlobalRole, &u.Active, &u.CreatedAt)
	return u, err
}
