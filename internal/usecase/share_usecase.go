package usecase

import (
	"context"
	"errors"
	"time"

	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/domain/entity"
	"telehealth-portal/internal/domain/repository"
	"telehealth-portal/internal/infrastructure/storage"
	"telehealth-portal/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultShareDays = 30

var (
	ErrShareNotFound = errors.New("share link not found")
	ErrShareExpired  = errors.New("share link has expired")
)

type ShareUsecase interface {
	Create(ctx context.Context, userID uuid.UUID, req *dto.CreateShareRequest) (*dto.ShareResponse, error)
	GetShared(ctx context.Context, token string) (*dto.SharedAnalysisResponse, error)
}

type shareUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	shareRepo    repository.ShareRepository
	analysisRepo repository.AnalysisRepository
	auditService service.AuditService
	blobStore    storage.BlobStore
	now          func() time.Time
}

func NewShareUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	shareRepo repository.ShareRepository,
	analysisRepo repository.AnalysisRepository,
	auditService service.AuditService,
	blobStore storage.BlobStore,
	now func() time.Time,
) ShareUsecase {
	return &shareUsecase{
		db:           db,
		log:          log,
		shareRepo:    shareRepo,
		analysisRepo: analysisRepo,
		auditService: auditService,
		blobStore:    blobStore,
		now:          now,
	}
}

// Create issues a link for an analysis the caller owns.
func (u *shareUsecase) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateShareRequest) (*dto.ShareResponse, error) {
	analysisID, err := uuid.Parse(req.AnalysisID)
	if err != nil {
		return nil, ErrInvalidInput
	}
	days := req.ExpiresInDays
	if days <= 0 {
		days = defaultShareDays
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

	share := &entity.Share{
		ID:         uuid.New(),
		Token:      uuid.New(),
		UserID:     userID,
		AnalysisID: analysisID,
		ExpiresAt:  u.now().UTC().AddDate(0, 0, days),
	}
	if err := u.shareRepo.Create(tx, share); err != nil {
		u.log.Warnf("Failed to create share: %+v", err)
		return nil, err
	}

	if err := u.auditService.Record(ctx, tx, &userID, entity.AuditActionShareCreate, "share", share.ID.String(), nil,
		map[string]interface{}{"analysis_id": analysisID, "expires_at": share.ExpiresAt}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return &dto.ShareResponse{
		Token:      share.Token,
		AnalysisID: analysisID,
		SharePath:  "/shared/" + share.Token.String(),
		ExpiresAt:  share.ExpiresAt,
	}, nil
}

// GetShared resolves a link without authentication. Unknown and malformed
// tokens look the same to the caller.
func (u *shareUsecase) GetShared(ctx context.Context, token string) (*dto.SharedAnalysisResponse, error) {
	parsed, err := uuid.Parse(token)
	if err != nil {
		return nil, ErrShareNotFound
	}

	share, err := u.shareRepo.FindByToken(u.db.WithContext(ctx), parsed)
	if err != nil {
		u.log.Warnf("Failed to find share: %+v", err)
		return nil, err
	}
	if share == nil {
		return nil, ErrShareNotFound
	}
	if share.IsExpired(u.now()) {
		return nil, ErrShareExpired
	}
	if share.Analysis.ID == uuid.Nil {
		return nil, ErrAnalysisNotFound
	}

	return &dto.SharedAnalysisResponse{
		Analysis:  analysisResponse(ctx, u.blobStore, u.log, &share.Analysis),
		ExpiresAt: share.ExpiresAt,
	}, nil
}
