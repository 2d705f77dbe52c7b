package repository

import (
	"telehealth-portal/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(db *gorm.DB, user *entity.User) error
	FindByEmail(db *gorm.DB, email string) (*entity.User, error)
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error)
	UpdateRole(db *gorm.DB, id uuid.UUID, roleID int) error
	UpdateFullName(db *gorm.DB, id uuid.UUID, fullName string) (int64, error)
}
