package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/domain/entity"
	"telehealth-portal/internal/domain/repository"
	"telehealth-portal/internal/infrastructure/classifier"
	"telehealth-portal/internal/infrastructure/storage"
	"telehealth-portal/internal/service"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAnalysisNotFound = errors.New("analysis not found")
)

// ImageClassifier is the part of the classifier client the analysis flow needs.
type ImageClassifier interface {
	CheckImage(image []byte) (string, error)
	Classify(ctx context.Context, disease, filename string, image []byte) (*classifier.Result, error)
}

type AnalysisUsecase interface {
	Analyze(ctx context.Context, userID uuid.UUID, disease string, image *FileUpload) (*dto.AnalysisResponse, error)
	List(ctx context.Context, userID uuid.UUID, req *dto.AnalysisListRequest) ([]dto.AnalysisResponse, int64, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*dto.AnalysisResponse, error)
	Stats(ctx context.Context, userID uuid.UUID) (*dto.AnalysisStatsResponse, error)
}

type analysisUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	analysisRepo repository.AnalysisRepository
	userRepo     repository.UserRepository
	auditService service.AuditService
	classifier   ImageClassifier
	blobStore    storage.BlobStore
	statsCache   service.StatsCache
}

func NewAnalysisUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	analysisRepo repository.AnalysisRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	imageClassifier ImageClassifier,
	blobStore storage.BlobStore,
	statsCache service.StatsCache,
) AnalysisUsecase {
	return &analysisUsecase{
		db:           db,
		log:          log,
		analysisRepo: analysisRepo,
		userRepo:     userRepo,
		auditService: auditService,
		classifier:   imageClassifier,
		blobStore:    blobStore,
		statsCache:   statsCache,
	}
}

func (u *analysisUsecase) Analyze(ctx context.Context, userID uuid.UUID, disease string, image *FileUpload) (*dto.AnalysisResponse, error) {
	if !classifier.ValidDisease(disease) {
		return nil, classifier.ErrUnsupportedDisease
	}
	if image == nil {
		return nil, classifier.ErrEmptyImage
	}
	contentType, err := u.classifier.CheckImage(image.Data)
	if err != nil {
		return nil, err
	}

	result, err := u.classifier.Classify(ctx, disease, image.Filename, image.Data)
	if err != nil {
		u.log.Warnf("Failed to classify %s image: %+v", disease, err)
		return nil, err
	}

	analysis := &entity.Analysis{
		ID:            uuid.New(),
		UserID:        userID,
		DiseaseType:   disease,
		TopPrediction: result.Top.Class,
		TopConfidence: result.Top.Confidence,
		Predictions: lo.Map(result.Predictions, func(p classifier.Prediction, _ int) entity.PredictionEntry {
			return entity.PredictionEntry{Label: p.Class, LabelTR: p.ClassLocalized, Confidence: p.Confidence}
		}),
	}

	key := fmt.Sprintf("analyses/%s/%s%s", userID, analysis.ID, mimetype.Detect(image.Data).Extension())
	err = u.blobStore.Upload(ctx, key, contentType, image.Data)
	switch {
	case err == nil:
		analysis.ImageKey = key
	case errors.Is(err, storage.ErrStorageDisabled):
	default:
		// the classification is still worth keeping without the image
		u.log.Warnf("Failed to upload analysis image: %+v", err)
	}

	if len(result.Heatmap) > 0 && analysis.ImageKey != "" {
		heatmapKey := fmt.Sprintf("analyses/%s/%s-heatmap.png", userID, analysis.ID)
		if err := u.blobStore.Upload(ctx, heatmapKey, "image/png", result.Heatmap); err != nil {
			u.log.Warnf("Failed to upload analysis heatmap: %+v", err)
		} else {
			analysis.HeatmapKey = heatmapKey
		}
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.analysisRepo.Create(tx, analysis); err != nil {
		u.log.Warnf("Failed to create analysis: %+v", err)
		return nil, err
	}

	if err := u.auditService.Record(ctx, tx, &userID, entity.AuditActionAnalysisCreate, "analysis", analysis.ID.String(), nil,
		map[string]interface{}{"disease_type": disease, "top_prediction": analysis.TopPrediction}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	if err := u.statsCache.Invalidate(ctx, userID); err != nil {
		u.log.Warnf("Failed to invalidate stats cache for %s: %+v", userID, err)
	}

	analysis.CreatedAt = time.Now()
	return analysisResponse(ctx, u.blobStore, u.log, analysis), nil
}

func (u *analysisUsecase) List(ctx context.Context, userID uuid.UUID, req *dto.AnalysisListRequest) ([]dto.AnalysisResponse, int64, error) {
	page, limit := normalizePage(req.Page, req.Limit)
	if req.DiseaseType != "" && !classifier.ValidDisease(req.DiseaseType) {
		return nil, 0, classifier.ErrUnsupportedDisease
	}

	analyses, total, err := u.analysisRepo.FindAll(u.db.WithContext(ctx), repository.AnalysisFilter{
		UserID:      userID,
		DiseaseType: req.DiseaseType,
		Limit:       limit,
		Offset:      (page - 1) * limit,
	})
	if err != nil {
		u.log.Warnf("Failed to list analyses: %+v", err)
		return nil, 0, err
	}

	return analysisResponses(ctx, u.blobStore, u.log, analyses), total, nil
}

func (u *analysisUsecase) Get(ctx context.Context, userID, id uuid.UUID) (*dto.AnalysisResponse, error) {
	analysis, err := u.analysisRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find analysis: %+v", err)
		return nil, err
	}
	if analysis == nil {
		return nil, ErrAnalysisNotFound
	}
	if analysis.UserID != userID {
		return nil, ErrForbidden
	}
	return analysisResponse(ctx, u.blobStore, u.log, analysis), nil
}

func (u *analysisUsecase) Stats(ctx context.Context, userID uuid.UUID) (*dto.AnalysisStatsResponse, error) {
	var cached dto.AnalysisStatsResponse
	hit, err := u.statsCache.Get(ctx, userID, &cached)
	if err != nil {
		u.log.Warnf("Failed to read stats cache for %s: %+v", userID, err)
	}
	if hit {
		return &cached, nil
	}

	db := u.db.WithContext(ctx)

	user, err := u.userRepo.FindByID(db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	counts, err := u.analysisRepo.CountByDisease(db, userID)
	if err != nil {
		u.log.Warnf("Failed to count analyses: %+v", err)
		return nil, err
	}

	last, err := u.analysisRepo.LastCreatedAt(db, userID)
	if err != nil {
		u.log.Warnf("Failed to find last analysis: %+v", err)
		return nil, err
	}

	stats := BuildAnalysisStats(counts, last, user.CreatedAt)
	if err := u.statsCache.Set(ctx, userID, stats); err != nil {
		u.log.Warnf("Failed to write stats cache for %s: %+v", userID, err)
	}
	return stats, nil
}

// BuildAnalysisStats folds per-disease counts into the stats response. Ties
// for the most analyzed disease go to the alphabetically first name.
func BuildAnalysisStats(counts []entity.DiseaseCount, last *time.Time, joinDate time.Time) *dto.AnalysisStatsResponse {
	stats := &dto.AnalysisStatsResponse{
		DiseaseTypeCounts: make(map[string]int64, len(counts)),
		LastAnalysisDate:  last,
		JoinDate:          joinDate,
	}

	var best int64
	for _, c := range counts {
		stats.DiseaseTypeCounts[c.DiseaseType] += c.Count
		stats.TotalAnalyses += c.Count
	}
	for disease, count := range stats.DiseaseTypeCounts {
		if count > best || (count == best && count > 0 && disease < stats.MostAnalyzedDisease) {
			best = count
			stats.MostAnalyzedDisease = disease
		}
	}
	return stats
}
