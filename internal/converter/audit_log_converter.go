package converter

import (
	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/domain/entity"

	"github.com/samber/lo"
)

func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	response := &dto.AuditLogResponse{
		ID:        log.ID,
		UserID:    log.UserID,
		Action:    log.Action,
		Metadata:  log.Metadata,
		CreatedAt: log.CreatedAt,
	}
	if log.User != nil {
		response.UserEmail = log.User.Email
	}
	return response
}

func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	return lo.Map(logs, func(l entity.AuditLog, _ int) dto.AuditLogResponse {
		return *AuditLogToResponse(&l)
	})
}
