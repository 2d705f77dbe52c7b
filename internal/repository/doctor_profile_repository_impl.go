package repository

import (
	"errors"

	"telehealth-portal/internal/domain/entity"
	domainRepo "telehealth-portal/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorProfileRepository struct{}

func NewDoctorProfileRepository() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{}
}

func (r *doctorProfileRepository) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Create(profile).Error
}

func (r *doctorProfileRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *doctorProfileRepository) FindAll(db *gorm.DB, status entity.DoctorStatus) ([]entity.DoctorProfile, error) {
	var profiles []entity.DoctorProfile
	query := db.Preload("User").Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *doctorProfileRepository) UpdateStatus(db *gorm.DB, userID uuid.UUID, status entity.DoctorStatus) (int64, error) {
	result := db.Model(&entity.DoctorProfile{}).
		Where("user_id = ?", userID).
		Update("status", status)
	return result.RowsAffected, result.Error
}
