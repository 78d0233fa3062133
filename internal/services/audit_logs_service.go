package services

import (
	"context"

	"github.com/nbv3/kip-ventory/internal/models"
	"github.com/nbv3/kip-ventory/internal/repositories"
)

// AuditLogService is the read side of the append-only audit sink. Writes
// happen inside the mutating services' transactions.
type AuditLogService interface {
	ListLogs(ctx context.Context, filter *models.LogFilter) ([]*models.Log, error)
}

type auditLogService struct {
	logsRepo repositories.LogsRepository
}

func NewAuditLogService(logsRepo repositories.LogsRepository) AuditLogService {
	return &auditLogService{logsRepo: logsRepo}
}

// ListLogs returns filtered audit records. Non-administrators only see
// records that name them as the initiating or affected user.
func (s *auditLogService) ListLogs(ctx context.Context, filter *models.LogFilter) ([]*models.Log, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		filter = &models.LogFilter{}
	}
	if !actor.IsAdmin() {
		filter.UserID = &actor.ID
	}
	return s.logsRepo.List(ctx, filter)
}
