package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/delivery/http/middleware"
	"telehealth-portal/internal/usecase"
	"telehealth-portal/pkg/response"
	"telehealth-portal/pkg/validator"

	"github.com/gorilla/mux"
)

type ShareHandler struct {
	shareUsecase usecase.ShareUsecase
	validator    *validator.CustomValidator
}

func NewShareHandler(shareUsecase usecase.ShareUsecase, validator *validator.CustomValidator) *ShareHandler {
	return &ShareHandler{
		shareUsecase: shareUsecase,
		validator:    validator,
	}
}

// Create issues a share link for one of the caller's analyses
// @Summary Share an analysis
// @Tags Shares
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateShareRequest true "Share"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /shares [post]
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.CreateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	share, err := h.shareUsecase.Create(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAnalysisNotFound):
			response.NotFound(w, "Analysis not found")
		case errors.Is(err, usecase.ErrForbidden):
			response.Forbidden(w, "Analysis belongs to another user")
		case errors.Is(err, usecase.ErrInvalidInput):
			response.BadRequest(w, "Invalid analysis ID")
		default:
			response.InternalServerError(w, "Failed to create share link")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Share link created successfully", share)
}

// Get resolves a share link. No authentication.
// @Summary Open a shared analysis
// @Tags Shares
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} response.Response
// @Failure 410 {object} response.Response
// @Router /shares/{token} [get]
func (h *ShareHandler) Get(w http.ResponseWriter, r *http.Request) {
	shared, err := h.shareUsecase.GetShared(r.Context(), mux.Vars(r)["token"])
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrShareNotFound):
			response.NotFound(w, "Share link not found")
		case errors.Is(err, usecase.ErrShareExpired):
			response.Gone(w, "Share link has expired")
		case errors.Is(err, usecase.ErrAnalysisNotFound):
			response.NotFound(w, "Analysis not found")
		default:
			response.InternalServerError(w, "Failed to open share link")
		}
		return
	}

	response.Success(w, http.StatusOK, "Shared analysis retrieved successfully", shared)
}
