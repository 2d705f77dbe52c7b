package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateFavoriteRequest struct {
	AnalysisID string `json:"analysisId" validate:"required,uuid"`
}

type FavoriteResponse struct {
	ID         uuid.UUID         `json:"id"`
	AnalysisID uuid.UUID         `json:"analysis_id"`
	Analysis   *AnalysisResponse `json:"analysis,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
