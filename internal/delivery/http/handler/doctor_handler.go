package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/delivery/http/middleware"
	"telehealth-portal/internal/usecase"
	"telehealth-portal/pkg/response"
	"telehealth-portal/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type DoctorHandler struct {
	doctorUsecase  usecase.DoctorProfileUsecase
	validator      *validator.CustomValidator
	maxUploadBytes int64
}

func NewDoctorHandler(doctorUsecase usecase.DoctorProfileUsecase, validator *validator.CustomValidator, maxUploadBytes int64) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase:  doctorUsecase,
		validator:      validator,
		maxUploadBytes: maxUploadBytes,
	}
}

// Register handles doctor applications
// @Summary Apply as a doctor
// @Description Create a pending doctor profile for the current user. Accepts JSON or multipart with an optional "diploma" file.
// @Tags Doctors
// @Security BearerAuth
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /doctors/register [post]
func (h *DoctorHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.RegisterDoctorProfileRequest
	var diploma *usecase.FileUpload
	if isMultipart(r) {
		var err error
		diploma, err = readFormFile(w, r, "diploma", h.maxUploadBytes)
		if err != nil {
			if errors.Is(err, errFileTooLarge) {
				response.Error(w, http.StatusRequestEntityTooLarge, "Diploma file is too large", nil)
				return
			}
			response.Error(w, http.StatusBadRequest, "Invalid multipart form", nil)
			return
		}
		req.Specialty = r.FormValue("specialty")
		req.LicenseNumber = r.FormValue("license_number")
		req.Institution = r.FormValue("institution")
		req.Bio = r.FormValue("bio")
		if v := r.FormValue("experience_years"); v != "" {
			years, err := strconv.Atoi(v)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "experience_years must be a number", nil)
				return
			}
			req.ExperienceYears = years
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.doctorUsecase.Apply(r.Context(), userID, &req, diploma)
	if err != nil {
		switch err {
		case usecase.ErrDoctorProfileExists:
			response.Conflict(w, "Doctor profile already exists")
		case usecase.ErrLicenseAlreadyExists:
			response.Conflict(w, "License number already exists")
		case usecase.ErrUnsupportedDocument:
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to register doctor profile")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Doctor profile submitted for review", profile)
}

func (h *DoctorHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	profile, err := h.doctorUsecase.GetMine(r.Context(), userID)
	if err != nil {
		if err == usecase.ErrDoctorNotFound {
			response.NotFound(w, "Doctor profile not found")
			return
		}
		response.InternalServerError(w, "Failed to get doctor profile")
		return
	}

	response.Success(w, http.StatusOK, "Doctor profile retrieved successfully", profile)
}

// ListDoctors handles the admin review queue
// @Summary List doctor profiles
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Success 200 {object} response.Response
// @Router /admin/doctors [get]
func (h *DoctorHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.doctorUsecase.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		if err == usecase.ErrInvalidDoctorStatus {
			response.BadRequest(w, "Invalid status filter")
			return
		}
		response.InternalServerError(w, "Failed to get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", profiles)
}

func (h *DoctorHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	vars := mux.Vars(r)
	doctorID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	var req dto.UpdateDoctorStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.doctorUsecase.UpdateStatus(r.Context(), adminID, doctorID, &req)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		case usecase.ErrInvalidDoctorStatus:
			response.BadRequest(w, "Invalid status")
		default:
			response.InternalServerError(w, "Failed to update doctor status")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor status updated successfully", profile)
}
