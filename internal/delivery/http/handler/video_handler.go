package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/delivery/http/middleware"
	"telehealth-portal/internal/infrastructure/video"
	"telehealth-portal/internal/service"
	"telehealth-portal/internal/usecase"
	"telehealth-portal/pkg/response"
	"telehealth-portal/pkg/validator"

	"github.com/gorilla/mux"
)

type VideoHandler struct {
	videoUsecase usecase.VideoUsecase
	validator    *validator.CustomValidator
}

func NewVideoHandler(videoUsecase usecase.VideoUsecase, validator *validator.CustomValidator) *VideoHandler {
	return &VideoHandler{
		videoUsecase: videoUsecase,
		validator:    validator,
	}
}

// writeVideoError writes the response for room provisioning failures and
// reports whether err was one of them.
func writeVideoError(w http.ResponseWriter, err error) bool {
	var cfgErr *video.ConfigError
	var provErr *video.ProviderError

	switch {
	case errors.Is(err, service.ErrRoomNameRequired):
		response.BadRequest(w, "roomName is required")
	case errors.Is(err, video.ErrUnknownProvider):
		response.NotFound(w, err.Error())
	case errors.Is(err, video.ErrInvalidRoomName):
		response.BadRequest(w, err.Error())
	case errors.As(err, &cfgErr):
		response.ProblemError(w, http.StatusBadRequest, "Video provider is not configured", &response.Problem{
			Code:            "provider_not_configured",
			Details:         cfgErr.Error(),
			Troubleshooting: cfgErr.Troubleshooting(),
		})
	case errors.As(err, &provErr):
		response.ProblemError(w, http.StatusInternalServerError, "Video provider request failed", &response.Problem{
			Code:            "provider_error",
			Details:         provErr.Error(),
			Troubleshooting: provErr.Troubleshooting,
			VendorStatus:    provErr.StatusCode,
			VendorResponse:  vendorBody(provErr.Body),
		})
	default:
		return false
	}
	return true
}

// vendorBody returns the vendor's body as JSON when it parses, else as text.
func vendorBody(body string) interface{} {
	if body == "" {
		return nil
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(body), &parsed); err == nil {
		return parsed
	}
	return body
}

// CreateRoom handles room creation
// @Summary Create or reuse a video room
// @Description Uses the default provider, or the one named in the path.
// @Tags Video
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param provider path string false "whereby, daily, 8x8 or jitsi"
// @Param request body dto.CreateRoomRequest true "Room"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 429 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /video/rooms [post]
// @Router /video/{provider}/rooms [post]
func (h *VideoHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	roleID, _ := middleware.GetRoleIDFromContext(r.Context())
	room, err := h.videoUsecase.CreateRoom(r.Context(), mux.Vars(r)["provider"], roleID, &req)
	if err != nil {
		if !writeVideoError(w, err) {
			response.InternalServerError(w, "Failed to create room")
		}
		return
	}

	response.Success(w, http.StatusOK, "Room ready", room)
}

// Debug reports which provider credentials the server can see, never their values.
func (h *VideoHandler) Debug(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Video provider status", h.videoUsecase.Debug(r.Context()))
}
