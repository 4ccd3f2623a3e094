package persistence

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/clarityhq/workplan/modules/logging/domain/auditlog"
	"github.com/clarityhq/workplan/pkg/composables"
)

const auditLogInsertQuery = `
	INSERT INTO audit_logs (id, actor_id, action, resource_type, resource_id, details, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

type PgAuditLogRepository struct{}

func NewAuditLogRepository() auditlog.Repository {
	return &PgAuditLogRepository{}
}

func (r *PgAuditLogRepository) Create(ctx context.Context, entry auditlog.Entry) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return errors.Wrap(err, "encoding audit details")
	}
	_, err = tx.Exec(ctx, auditLogInsertQuery,
		entry.ID,
		entry.ActorID,
		entry.Action,
		entry.ResourceType,
		entry.ResourceID,
		details,
		entry.CreatedAt,
	)
	return errors.Wrap(err, "inserting audit entry")
}
