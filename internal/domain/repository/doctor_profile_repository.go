package repository

import (
	"telehealth-portal/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorProfileRepository interface {
	Create(db *gorm.DB, profile *entity.DoctorProfile) error
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error)
	// FindAll lists profiles, optionally restricted to one status.
	FindAll(db *gorm.DB, status entity.DoctorStatus) ([]entity.DoctorProfile, error)
	UpdateStatus(db *gorm.DB, userID uuid.UUID, status entity.DoctorStatus) (int64, error)
}
