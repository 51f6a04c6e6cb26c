package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/rbac-service/internal/domain"
	"github.com/spec-kit/rbac-service/internal/events"
	"github.com/spec-kit/rbac-service/internal/repository"
)

// AuditService persists an audit trail from domain events. Recording is
// best-effort; a failed write never fails the originating request.
type AuditService struct {
	dispatcher events.Dispatcher
	audits     repository.AuditRepository
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, audits repository.AuditRepository, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, audits: audits, logger: logger}
}

// RegisterHandlers subscribes to auditable events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for eventType, action := range map[events.EventType]string{
		events.EventPostCreated: "create",
		events.EventPostUpdated: "update",
		events.EventPostDeleted: "delete",
		events.EventUserCreated: "create_user",
	} {
		a.dispatcher.Subscribe(eventType, a.recorder(action))
	}
}

func (a *AuditService) recorder(action string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		entry := &domain.AuditEntry{
			Action:      action,
			Resource:    event.Resource,
			ResourceID:  event.ResourceID,
			PerformedBy: event.PerformedBy,
			Meta:        event.Meta,
		}
		if err := a.audits.Create(ctx, entry); err != nil {
			a.logger.Warn("audit write failed",
				zap.String("action", action),
				zap.String("resource_id", event.ResourceID),
				zap.Error(err),
			)
			return err
		}
		return nil
	}
}
