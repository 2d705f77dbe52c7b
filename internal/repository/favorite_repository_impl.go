package repository

import (
	"errors"

	"telehealth-portal/internal/domain/entity"
	domainRepo "telehealth-portal/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type favoriteRepository struct{}

func NewFavoriteRepository() domainRepo.FavoriteRepository {
	return &favoriteRepository{}
}

func (r *favoriteRepository) Create(db *gorm.DB, favorite *entity.Favorite) error {
	return db.Create(favorite).Error
}

func (r *favoriteRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Favorite, error) {
	var favorite entity.Favorite
	err := db.Where("id = ?", id).First(&favorite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &favorite, nil
}

func (r *favoriteRepository) FindByUserAndAnalysis(db *gorm.DB, userID, analysisID uuid.UUID) (*entity.Favorite, error) {
	var favorite entity.Favorite
	err := db.Where("user_id = ? AND analysis_id = ?", userID, analysisID).First(&favorite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &favorite, nil
}

func (r *favoriteRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.Favorite, error) {
	var favorites []entity.Favorite
	err := db.Preload("Analysis").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}
	return favorites, nil
}

func (r *favoriteRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Favorite{})
	return result.RowsAffected, result.Error
}
