package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string `json:"time" validate:"required,datetime=15:04"`
	Reason     string `json:"reason" validate:"required,min=3"`
	DoctorType string `json:"doctor_type" validate:"omitempty,max=100"`
}

type AppointmentDecisionRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Note   string `json:"note" validate:"omitempty,max=1000"`
}

// Response DTOs

type AppointmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	PatientID   uuid.UUID  `json:"patient_id"`
	PatientName string     `json:"patient_name,omitempty"`
	DoctorID    *uuid.UUID `json:"doctor_id,omitempty"`
	DoctorName  string     `json:"doctor_name,omitempty"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Reason      string     `json:"reason"`
	DoctorType  string     `json:"doctor_type,omitempty"`
	Status      string     `json:"status"`
	DoctorNote  string     `json:"doctor_note,omitempty"`
	RoomName    string     `json:"room_name"`
	HasRoom     bool       `json:"has_room"`
	Joinable    bool       `json:"joinable"`
	Past        bool       `json:"past"`
	Upcoming    bool       `json:"upcoming"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type JoinAppointmentResponse struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Provider      string    `json:"provider"`
	RoomName      string    `json:"room_name"`
	RoomURL       string    `json:"room_url"`
	JoinURL       string    `json:"join_url"`
}

// DoctorPatientResponse summarises one patient on a doctor's roster.
type DoctorPatientResponse struct {
	PatientID         uuid.UUID `json:"patient_id"`
	FullName          string    `json:"full_name"`
	Email             string    `json:"email"`
	TotalAppointments int       `json:"total_appointments"`
	PendingRequests   int       `json:"pending_requests"`
	LastAppointment   string    `json:"last_appointment"`
}
