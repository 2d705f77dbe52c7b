package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterDoctorProfileRequest struct {
	Specialty       string `json:"specialty" validate:"required,max=100"`
	LicenseNumber   string `json:"license_number" validate:"required,max=50"`
	ExperienceYears int    `json:"experience_years" validate:"min=0,max=80"`
	Institution     string `json:"institution" validate:"omitempty,max=255"`
	Bio             string `json:"bio" validate:"omitempty"`
}

type UpdateDoctorStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

type DoctorProfileResponse struct {
	UserID          uuid.UUID `json:"user_id"`
	FullName        string    `json:"full_name,omitempty"`
	Email           string    `json:"email,omitempty"`
	Specialty       string    `json:"specialty"`
	LicenseNumber   string    `json:"license_number"`
	ExperienceYears int       `json:"experience_years"`
	Institution     string    `json:"institution,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	DiplomaURL      string    `json:"diploma_url,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}
