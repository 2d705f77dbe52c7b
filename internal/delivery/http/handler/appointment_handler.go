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

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

func appointmentIDFromPath(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["id"])
}

// writeAppointmentError maps appointment usecase errors to responses.
func writeAppointmentError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		response.NotFound(w, "Appointment not found")
	case errors.Is(err, usecase.ErrNotParticipant), errors.Is(err, usecase.ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, usecase.ErrDoctorNotFound), errors.Is(err, usecase.ErrDoctorNotApproved):
		response.Forbidden(w, err.Error())
	case errors.Is(err, usecase.ErrAppointmentNotApproved), errors.Is(err, usecase.ErrOutsideJoinWindow):
		response.Forbidden(w, err.Error())
	case errors.Is(err, usecase.ErrAppointmentDecided):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrInvalidAppointmentTime), errors.Is(err, usecase.ErrAppointmentInPast),
		errors.Is(err, usecase.ErrInvalidStatusFilter), errors.Is(err, usecase.ErrInvalidInput):
		response.BadRequest(w, err.Error())
	default:
		if writeVideoError(w, err) {
			return
		}
		response.InternalServerError(w, fallback)
	}
}

// Create handles appointment requests from patients
// @Summary Request an appointment
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateAppointmentRequest true "Appointment"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /appointments [post]
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Create(r.Context(), userID, &req)
	if err != nil {
		writeAppointmentError(w, err, "Failed to create appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment created successfully", appointment)
}

func (h *AppointmentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	appointments, err := h.appointmentUsecase.ListMine(r.Context(), userID, r.URL.Query().Get("status"))
	if err != nil {
		writeAppointmentError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	roleID, _ := middleware.GetRoleIDFromContext(r.Context())

	id, err := appointmentIDFromPath(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	appointment, err := h.appointmentUsecase.Get(r.Context(), userID, roleID, id)
	if err != nil {
		writeAppointmentError(w, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

// Join returns the caller's video link for an appointment
// @Summary Join an appointment's video room
// @Description Provisions the room on first use. Every participant gets a link to the same room.
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /appointments/{id}/join [post]
func (h *AppointmentHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, err := appointmentIDFromPath(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	joined, err := h.appointmentUsecase.Join(r.Context(), userID, id)
	if err != nil {
		writeAppointmentError(w, err, "Failed to join appointment")
		return
	}

	response.Success(w, http.StatusOK, "Room ready", joined)
}

func (h *AppointmentHandler) ListForDoctor(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	appointments, err := h.appointmentUsecase.ListForDoctor(r.Context(), userID, r.URL.Query().Get("status"))
	if err != nil {
		writeAppointmentError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	patients, err := h.appointmentUsecase.ListPatients(r.Context(), userID)
	if err != nil {
		writeAppointmentError(w, err, "Failed to get patients")
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", patients)
}

func (h *AppointmentHandler) Decide(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, err := appointmentIDFromPath(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	var req dto.AppointmentDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Decide(r.Context(), userID, id, &req)
	if err != nil {
		writeAppointmentError(w, err, "Failed to decide appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment "+appointment.Status, appointment)
}
