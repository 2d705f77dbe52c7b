package repository

import (
	"errors"

	"telehealth-portal/internal/domain/entity"
	domainRepo "telehealth-portal/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type shareRepository struct{}

func NewShareRepository() domainRepo.ShareRepository {
	return &shareRepository{}
}

func (r *shareRepository) Create(db *gorm.DB, share *entity.Share) error {
	return db.Create(share).Error
}

func (r *shareRepository) FindByToken(db *gorm.DB, token uuid.UUID) (*entity.Share, error) {
	var share entity.Share
	err := db.Preload("Analysis").Where("token = ?", token).First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &share, nil
}
