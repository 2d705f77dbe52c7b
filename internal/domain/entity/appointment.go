package entity

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending  AppointmentStatus = "pending"
	AppointmentStatusApproved AppointmentStatus = "approved"
	AppointmentStatusRejected AppointmentStatus = "rejected"
)

// Appointment is a requested consultation. Date and Time are kept as the
// patient entered them (YYYY-MM-DD and HH:MM) and are interpreted in the
// server's local zone. RoomName is fixed at creation; RoomURL is written once,
// by whichever participant provisions the room first.
type Appointment struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID     *uuid.UUID        `gorm:"type:uuid;index" json:"doctor_id,omitempty"`
	Date         string            `gorm:"type:varchar(10);not null;index" json:"date"`
	Time         string            `gorm:"type:varchar(5);not null" json:"time"`
	Reason       string            `gorm:"type:text;not null" json:"reason"`
	DoctorType   string            `gorm:"type:varchar(100)" json:"doctor_type,omitempty"`
	Status       AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DoctorNote   string            `gorm:"type:text" json:"doctor_note,omitempty"`
	RoomName     string            `gorm:"type:varchar(64);not null" json:"room_name"`
	RoomProvider string            `gorm:"type:varchar(20);not null;default:''" json:"room_provider,omitempty"`
	RoomURL      string            `gorm:"type:text;not null;default:''" json:"room_url,omitempty"`
	ApprovedAt   *time.Time        `json:"approved_at,omitempty"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient User  `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  *User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

func (a *Appointment) IsApproved() bool {
	return a.Status == AppointmentStatusApproved
}

func (a *Appointment) IsRejected() bool {
	return a.Status == AppointmentStatusRejected
}

func (a *Appointment) HasRoom() bool {
	return a.RoomURL != ""
}

// IsAssignedTo reports whether doctorID is the appointment's doctor.
func (a *Appointment) IsAssignedTo(doctorID uuid.UUID) bool {
	return a.DoctorID != nil && *a.DoctorID == doctorID
}

func ValidAppointmentStatus(s AppointmentStatus) bool {
	return s == AppointmentStatusPending || s == AppointmentStatusApproved || s == AppointmentStatusRejected
}
