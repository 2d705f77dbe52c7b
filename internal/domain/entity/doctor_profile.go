package entity

import (
	"time"

	"github.com/google/uuid"
)

type DoctorStatus string

const (
	DoctorStatusPending  DoctorStatus = "pending"
	DoctorStatusApproved DoctorStatus = "approved"
	DoctorStatusRejected DoctorStatus = "rejected"
)

// DoctorProfile is created when a user applies as a doctor. Only approved
// doctors can act on appointments.
type DoctorProfile struct {
	UserID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"user_id"`
	Specialty       string       `gorm:"type:varchar(100);not null;index" json:"specialty"`
	LicenseNumber   string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"license_number"`
	ExperienceYears int          `gorm:"not null;default:0" json:"experience_years"`
	Institution     string       `gorm:"type:varchar(255)" json:"institution,omitempty"`
	Bio             string       `gorm:"type:text" json:"bio,omitempty"`
	DiplomaKey      string       `gorm:"type:text" json:"diploma_key,omitempty"`
	Status          DoctorStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt       time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

func (d *DoctorProfile) IsApproved() bool {
	return d != nil && d.Status == DoctorStatusApproved
}

func ValidDoctorStatus(s DoctorStatus) bool {
	return s == DoctorStatusPending || s == DoctorStatusApproved || s == DoctorStatusRejected
}
