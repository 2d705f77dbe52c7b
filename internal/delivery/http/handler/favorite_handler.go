package handler

import (
	"encoding/json"
	"net/http"

	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/delivery/http/middleware"
	"telehealth-portal/internal/usecase"
	"telehealth-portal/pkg/response"
	"telehealth-portal/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type FavoriteHandler struct {
	favoriteUsecase usecase.FavoriteUsecase
	validator       *validator.CustomValidator
}

func NewFavoriteHandler(favoriteUsecase usecase.FavoriteUsecase, validator *validator.CustomValidator) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteUsecase: favoriteUsecase,
		validator:       validator,
	}
}

func (h *FavoriteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.CreateFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	favorite, err := h.favoriteUsecase.Create(r.Context(), userID, &req)
	if err != nil {
		switch err {
		case usecase.ErrAnalysisNotFound:
			response.NotFound(w, "Analysis not found")
		case usecase.ErrForbidden:
			response.Forbidden(w, "Analysis belongs to another user")
		case usecase.ErrFavoriteExists:
			response.Conflict(w, "Analysis is already in favorites")
		case usecase.ErrInvalidInput:
			response.BadRequest(w, "Invalid analysis ID")
		default:
			response.InternalServerError(w, "Failed to add favorite")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Favorite added successfully", favorite)
}

func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	favorites, err := h.favoriteUsecase.List(r.Context(), userID)
	if err != nil {
		response.InternalServerError(w, "Failed to get favorites")
		return
	}

	response.Success(w, http.StatusOK, "Favorites retrieved successfully", favorites)
}

func (h *FavoriteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid favorite ID", nil)
		return
	}

	if err := h.favoriteUsecase.Delete(r.Context(), userID, id); err != nil {
		switch err {
		case usecase.ErrFavoriteNotFound:
			response.NotFound(w, "Favorite not found")
		case usecase.ErrForbidden:
			response.Forbidden(w, "Favorite belongs to another user")
		default:
			response.InternalServerError(w, "Failed to delete favorite")
		}
		return
	}

	response.Success(w, http.StatusOK, "Favorite deleted successfully", nil)
}
