package handler

import (
	"net/http"

	"telehealth-portal/internal/usecase"
	"telehealth-portal/pkg/response"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
	}
}

// List handles the admin audit trail
// @Summary List audit log entries
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param action query string false "Filter by action, e.g. appointment.decide"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /admin/audit-logs [get]
func (h *AuditLogHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", usecase.DefaultPageLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > usecase.MaxPageLimit {
		limit = usecase.DefaultPageLimit
	}

	logs, total, err := h.auditLogUsecase.List(r.Context(), r.URL.Query().Get("action"), page, limit)
	if err != nil {
		response.InternalServerError(w, "Failed to get audit logs")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Audit logs retrieved successfully", logs, response.NewMeta(page, limit, total))
}
