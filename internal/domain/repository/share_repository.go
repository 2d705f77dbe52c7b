package repository

import (
	"telehealth-portal/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShareRepository interface {
	Create(db *gorm.DB, share *entity.Share) error
	// FindByToken loads the share with its analysis.
	FindByToken(db *gorm.DB, token uuid.UUID) (*entity.Share, error)
}
