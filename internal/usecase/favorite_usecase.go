package usecase

import (
	"context"
	"errors"

	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/domain/entity"
	"telehealth-portal/internal/domain/repository"
	"telehealth-portal/internal/infrastructure/storage"
	"telehealth-portal/internal/service"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrFavoriteNotFound = errors.New("favorite not found")
	ErrFavoriteExists   = errors.New("analysis is already in favorites")
)

type FavoriteUsecase interface {
	Create(ctx context.Context, userID uuid.UUID, req *dto.CreateFavoriteRequest) (*dto.FavoriteResponse, error)
	List(ctx context.Context, userID uuid.UUID) ([]dto.FavoriteResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type favoriteUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	favoriteRepo repository.FavoriteRepository
	analysisRepo repository.AnalysisRepository
	auditService service.AuditService
	blobStore    storage.BlobStore
}

func NewFavoriteUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	favoriteRepo repository.FavoriteRepository,
	analysisRepo repository.AnalysisRepository,
	auditService service.AuditService,
	blobStore storage.BlobStore,
) FavoriteUsecase {
	return &favoriteUsecase{
		db:           db,
		log:          log,
		favoriteRepo: favoriteRepo,
		analysisRepo: analysisRepo,
		auditService: auditService,
		blobStore:    blobStore,
	}
}

func (u *favoriteUsecase) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateFavoriteRequest) (*dto.FavoriteResponse, error) {
	analysisID, err := uuid.Parse(req.AnalysisID)
	if err != nil {
		return nil, ErrInvalidInput
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	analysis, err := u.analysisRepo.FindByID(tx, analysisID)
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

	existing, err := u.favoriteRepo.FindByUserAndAnalysis(tx, userID, analysisID)
	if err != nil {
		u.log.Warnf("Failed to find favorite: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrFavoriteExists
	}

	favorite := &entity.Favorite{
		ID:         uuid.New(),
		UserID:     userID,
		AnalysisID: analysisID,
	}
	if err := u.favoriteRepo.Create(tx, favorite); err != nil {
		if isDuplicateKeyError(err, "idx_favorites_user_analysis") {
			return nil, ErrFavoriteExists
		}
		if isForeignKeyError(err, "analysis") {
			return nil, ErrAnalysisNotFound
		}
		u.log.Warnf("Failed to create favorite: %+v", err)
		return nil, err
	}

	if err := u.auditService.Record(ctx, tx, &userID, entity.AuditActionFavoriteCreate, "favorite", favorite.ID.String(), nil,
		map[string]interface{}{"analysis_id": analysisID}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	favorite.Analysis = *analysis
	return favoriteResponse(ctx, u.blobStore, u.log, favorite), nil
}

func (u *favoriteUsecase) List(ctx context.Context, userID uuid.UUID) ([]dto.FavoriteResponse, error) {
	favorites, err := u.favoriteRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to list favorites: %+v", err)
		return nil, err
	}
	return lo.Map(favorites, func(f entity.Favorite, _ int) dto.FavoriteResponse {
		return *favoriteResponse(ctx, u.blobStore, u.log, &f)
	}), nil
}

func (u *favoriteUsecase) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	favorite, err := u.favoriteRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find favorite: %+v", err)
		return err
	}
	if favorite == nil {
		return ErrFavoriteNotFound
	}
	if favorite.UserID != userID {
		return ErrForbidden
	}

	affected, err := u.favoriteRepo.Delete(tx, id)
	if err != nil {
		u.log.Warnf("Failed to delete favorite: %+v", err)
		return err
	}
	if affected == 0 {
		return ErrFavoriteNotFound
	}

	if err := u.auditService.Record(ctx, tx, &userID, entity.AuditActionFavoriteDelete, "favorite", id.String(),
		map[string]interface{}{"analysis_id": favorite.AnalysisID}, nil); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}
	return nil
}
