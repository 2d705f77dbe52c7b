package converter

import (
	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/domain/entity"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// FormatPercentage renders a 0..1 confidence as a percentage with two decimals.
func FormatPercentage(confidence float64) string {
	return decimal.NewFromFloat(confidence).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

func AnalysisToResponse(analysis *entity.Analysis) *dto.AnalysisResponse {
	if analysis == nil {
		return nil
	}

	return &dto.AnalysisResponse{
		ID:            analysis.ID,
		DiseaseType:   analysis.DiseaseType,
		TopPrediction: analysis.TopPrediction,
		TopConfidence: analysis.TopConfidence,
		Percentage:    FormatPercentage(analysis.TopConfidence),
		Predictions: lo.Map(analysis.Predictions, func(p entity.PredictionEntry, _ int) dto.PredictionResponse {
			return dto.PredictionResponse{
				Label:      p.Label,
				LabelTR:    p.LabelTR,
				Confidence: p.Confidence,
				Percentage: FormatPercentage(p.Confidence),
			}
		}),
		CreatedAt: analysis.CreatedAt,
	}
}

func FavoriteToResponse(favorite *entity.Favorite) *dto.FavoriteResponse {
	if favorite == nil {
		return nil
	}

	response := &dto.FavoriteResponse{
		ID:         favorite.ID,
		AnalysisID: favorite.AnalysisID,
		CreatedAt:  favorite.CreatedAt,
	}
	if favorite.Analysis.ID == favorite.AnalysisID {
		response.Analysis = AnalysisToResponse(&favorite.Analysis)
	}
	return response
}
