package dto

import (
	"time"

	"github.com/google/uuid"
)

type AnalysisListRequest struct {
	Page        int    `validate:"min=1"`
	Limit       int    `validate:"min=1,max=100"`
	DiseaseType string `validate:"omitempty,oneof=skin bone lung eye"`
}

type PredictionResponse struct {
	Label      string  `json:"label"`
	LabelTR    string  `json:"label_tr,omitempty"`
	Confidence float64 `json:"confidence"`
	Percentage string  `json:"percentage"`
}

type AnalysisResponse struct {
	ID            uuid.UUID            `json:"id"`
	DiseaseType   string               `json:"disease_type"`
	ImageURL      string               `json:"image_url,omitempty"`
	HeatmapURL    string               `json:"heatmap_url,omitempty"`
	TopPrediction string               `json:"top_prediction"`
	TopConfidence float64              `json:"top_confidence"`
	Percentage    string               `json:"percentage"`
	Predictions   []PredictionResponse `json:"predictions"`
	CreatedAt     time.Time            `json:"created_at"`
}

type AnalysisStatsResponse struct {
	TotalAnalyses       int64            `json:"total_analyses"`
	DiseaseTypeCounts   map[string]int64 `json:"disease_type_counts"`
	MostAnalyzedDisease string           `json:"most_analyzed_disease,omitempty"`
	LastAnalysisDate    *time.Time       `json:"last_analysis_date,omitempty"`
	JoinDate            time.Time        `json:"join_date"`
}
