package repository

import (
	"telehealth-portal/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FavoriteRepository interface {
	Create(db *gorm.DB, favorite *entity.Favorite) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Favorite, error)
	FindByUserAndAnalysis(db *gorm.DB, userID, analysisID uuid.UUID) (*entity.Favorite, error)
	FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.Favorite, error)
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
}
