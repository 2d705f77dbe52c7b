package entity

import (
	"time"

	"github.com/google/uuid"
)

// Share is a public, expiring link to one analysis. Token is what the link
// carries; ID never leaves the server.
type Share struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Token      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"token"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	AnalysisID uuid.UUID `gorm:"type:uuid;not null;index" json:"analysis_id"`
	ExpiresAt  time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Analysis Analysis `gorm:"foreignKey:AnalysisID" json:"analysis,omitempty"`
}

func (Share) TableName() string {
	return "shares"
}

// IsExpired reports whether the link stopped working before now.
func (s *Share) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
