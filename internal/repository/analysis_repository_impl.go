package repository

import (
	"errors"
	"time"

	"telehealth-portal/internal/domain/entity"
	domainRepo "telehealth-portal/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type analysisRepository struct{}

func NewAnalysisRepository() domainRepo.AnalysisRepository {
	return &analysisRepository{}
}

func (r *analysisRepository) Create(db *gorm.DB, analysis *entity.Analysis) error {
	return db.Create(analysis).Error
}

func (r *analysisRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Analysis, error) {
	var analysis entity.Analysis
	err := db.Where("id = ?", id).First(&analysis).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis, nil
}

func (r *analysisRepository) FindAll(db *gorm.DB, filter domainRepo.AnalysisFilter) ([]entity.Analysis, int64, error) {
	query := db.Model(&entity.Analysis{}).Where("user_id = ?", filter.UserID)
	if filter.DiseaseType != "" {
		query = query.Where("disease_type = ?", filter.DiseaseType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var analyses []entity.Analysis
	err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&analyses).Error
	if err != nil {
		return nil, 0, err
	}
	return analyses, total, nil
}

func (r *analysisRepository) CountByDisease(db *gorm.DB, userID uuid.UUID) ([]entity.DiseaseCount, error) {
	var counts []entity.DiseaseCount
	err := db.Model(&entity.Analysis{}).
		Select("disease_type, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("disease_type").
		Order("count DESC, disease_type ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *analysisRepository) LastCreatedAt(db *gorm.DB, userID uuid.UUID) (*time.Time, error) {
	var analysis entity.Analysis
	err := db.Select("created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&analysis).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis.CreatedAt, nil
}
