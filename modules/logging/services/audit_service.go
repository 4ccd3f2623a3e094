package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/clarityhq/workplan/modules/logging/domain/auditlog"
	"github.com/clarityhq/workplan/pkg/eventbus"
)

// AuditService records audit entries on a best-effort basis. Auditing never
// fails the operation being audited: persistence errors are logged and
// swallowed.
type AuditService struct {
	repo auditlog.Repository
	bus  eventbus.EventBus
	log  *logrus.Logger
}

func NewAuditService(repo auditlog.Repository, bus eventbus.EventBus, log *logrus.Logger) *AuditService {
	return &AuditService{repo: repo, bus: bus, log: log}
}

func (s *AuditService) Log(ctx context.Context, entry auditlog.Entry) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"action":   entry.Action,
			"resource": entry.ResourceType,
			"id":       entry.ResourceID,
		}).Error("audit entry not persisted")
		return
	}

	if s.bus != nil {
		s.bus.Publish(&auditlog.Recorded{Entry: entry})
	}
}
