package repository

import (
	"time"

	"telehealth-portal/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnalysisFilter struct {
	UserID      uuid.UUID
	DiseaseType string
	Limit       int
	Offset      int
}

type AnalysisRepository interface {
	Create(db *gorm.DB, analysis *entity.Analysis) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Analysis, error)
	FindAll(db *gorm.DB, filter AnalysisFilter) ([]entity.Analysis, int64, error)
	CountByDisease(db *gorm.DB, userID uuid.UUID) ([]entity.DiseaseCount, error)
	LastCreatedAt(db *gorm.DB, userID uuid.UUID) (*time.Time, error)
}
