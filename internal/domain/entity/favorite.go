package entity

import (
	"time"

	"github.com/google/uuid"
)

type Favorite struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_analysis" json:"user_id"`
	AnalysisID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_analysis" json:"analysis_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Analysis Analysis `gorm:"foreignKey:AnalysisID" json:"analysis,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}
