package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PredictionEntry is one ranked class in an analysis result.
type PredictionEntry struct {
	Label      string  `json:"label"`
	LabelTR    string  `json:"label_tr,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Analysis is an immutable record of one image classification.
type Analysis struct {
	ID            uuid.UUID                            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID        uuid.UUID                            `gorm:"type:uuid;not null;index" json:"user_id"`
	DiseaseType   string                               `gorm:"type:varchar(20);not null;index" json:"disease_type"`
	ImageKey      string                               `gorm:"type:text" json:"image_key,omitempty"`
	Predictions   datatypes.JSONSlice[PredictionEntry] `gorm:"type:jsonb;not null" json:"predictions"`
	TopPrediction string                               `gorm:"type:varchar(255);not null" json:"top_prediction"`
	TopConfidence float64                              `gorm:"not null" json:"top_confidence"`
	HeatmapKey    string                               `gorm:"type:text" json:"heatmap_key,omitempty"`
	CreatedAt     time.Time                            `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Analysis) TableName() string {
	return "analyses"
}

// DiseaseCount is one row of the per-disease aggregate.
type DiseaseCount struct {
	DiseaseType string
	Count       int64
}
