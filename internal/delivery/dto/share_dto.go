package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateShareRequest struct {
	AnalysisID    string `json:"analysisId" validate:"required,uuid"`
	ExpiresInDays int    `json:"expiresInDays" validate:"omitempty,min=1,max=365"`
}

type ShareResponse struct {
	Token      uuid.UUID `json:"token"`
	AnalysisID uuid.UUID `json:"analysis_id"`
	SharePath  string    `json:"share_path"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// SharedAnalysisResponse is what an anonymous holder of a share link sees.
// It never names the owner.
type SharedAnalysisResponse struct {
	Analysis  *AnalysisResponse `json:"analysis"`
	ExpiresAt time.Time         `json:"expires_at"`
}
