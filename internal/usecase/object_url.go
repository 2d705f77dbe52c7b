package usecase

import (
	"context"
	"errors"

	"telehealth-portal/internal/converter"
	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/domain/entity"
	"telehealth-portal/internal/infrastructure/storage"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// objectURL turns a stored key into a readable address. A read never fails
// because an address could not be produced; the URL is left empty instead.
func objectURL(ctx context.Context, store storage.BlobStore, log *logrus.Logger, key string) string {
	if key == "" || store == nil {
		return ""
	}
	url, err := store.URL(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrStorageDisabled) {
			log.Warnf("Failed to resolve object URL for %s: %+v", key, err)
		}
		return ""
	}
	return url
}

func analysisResponse(ctx context.Context, store storage.BlobStore, log *logrus.Logger, analysis *entity.Analysis) *dto.AnalysisResponse {
	response := converter.AnalysisToResponse(analysis)
	if response == nil {
		return nil
	}
	response.ImageURL = objectURL(ctx, store, log, analysis.ImageKey)
	response.HeatmapURL = objectURL(ctx, store, log, analysis.HeatmapKey)
	return response
}

func analysisResponses(ctx context.Context, store storage.BlobStore, log *logrus.Logger, analyses []entity.Analysis) []dto.AnalysisResponse {
	return lo.Map(analyses, func(a entity.Analysis, _ int) dto.AnalysisResponse {
		return *analysisResponse(ctx, store, log, &a)
	})
}

func favoriteResponse(ctx context.Context, store storage.BlobStore, log *logrus.Logger, favorite *entity.Favorite) *dto.FavoriteResponse {
	response := converter.FavoriteToResponse(favorite)
	if response != nil && response.Analysis != nil {
		response.Analysis.ImageURL = objectURL(ctx, store, log, favorite.Analysis.ImageKey)
		response.Analysis.HeatmapURL = objectURL(ctx, store, log, favorite.Analysis.HeatmapKey)
	}
	return response
}
