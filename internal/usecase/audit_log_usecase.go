package usecase

import (
	"context"

	"telehealth-portal/internal/converter"
	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuditLogUsecase interface {
	List(ctx context.Context, action string, page, limit int) ([]dto.AuditLogResponse, int64, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) List(ctx context.Context, action string, page, limit int) ([]dto.AuditLogResponse, int64, error) {
	page, limit = normalizePage(page, limit)

	logs, total, err := u.auditLogRepo.FindAll(u.db.WithContext(ctx), action, limit, (page-1)*limit)
	if err != nil {
		u.log.Warnf("Failed to find audit logs: %+v", err)
		return nil, 0, err
	}

	return converter.AuditLogsToResponses(logs), total, nil
}
