package usecase

import (
	"context"
	"errors"
	"fmt"

	"telehealth-portal/internal/converter"
	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/domain/entity"
	"telehealth-portal/internal/domain/repository"
	"telehealth-portal/internal/infrastructure/storage"
	"telehealth-portal/internal/service"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDoctorProfileExists  = errors.New("doctor profile already exists")
	ErrLicenseAlreadyExists = errors.New("license number already exists")
	ErrInvalidDoctorStatus  = errors.New("invalid doctor status")
	ErrUnsupportedDocument  = errors.New("diploma must be a PDF, JPEG or PNG file")
)

var allowedDocumentTypes = []string{"application/pdf", "image/jpeg", "image/png"}

// FileUpload is a file received from a multipart form.
type FileUpload struct {
	Filename string
	Data     []byte
}

type DoctorProfileUsecase interface {
	Apply(ctx context.Context, userID uuid.UUID, req *dto.RegisterDoctorProfileRequest, diploma *FileUpload) (*dto.DoctorProfileResponse, error)
	GetMine(ctx context.Context, userID uuid.UUID) (*dto.DoctorProfileResponse, error)
	List(ctx context.Context, status string) ([]dto.DoctorProfileResponse, error)
	UpdateStatus(ctx context.Context, adminID, doctorID uuid.UUID, req *dto.UpdateDoctorStatusRequest) (*dto.DoctorProfileResponse, error)
}

type doctorProfileUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	userRepo          repository.UserRepository
	doctorProfileRepo repository.DoctorProfileRepository
	auditService      service.AuditService
	blobStore         storage.BlobStore
}

func NewDoctorProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
	blobStore storage.BlobStore,
) DoctorProfileUsecase {
	return &doctorProfileUsecase{
		db:                db,
		log:               log,
		userRepo:          userRepo,
		doctorProfileRepo: doctorProfileRepo,
		auditService:      auditService,
		blobStore:         blobStore,
	}
}

func (u *doctorProfileUsecase) Apply(ctx context.Context, userID uuid.UUID, req *dto.RegisterDoctorProfileRequest, diploma *FileUpload) (*dto.DoctorProfileResponse, error) {
	existing, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrDoctorProfileExists
	}

	var diplomaKey string
	if diploma != nil && len(diploma.Data) > 0 {
		diplomaKey, err = u.storeDiploma(ctx, userID, diploma)
		if err != nil {
			return nil, err
		}
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile := &entity.DoctorProfile{
		UserID:          userID,
		Specialty:       req.Specialty,
		LicenseNumber:   req.LicenseNumber,
		ExperienceYears: req.ExperienceYears,
		Institution:     req.Institution,
		Bio:             req.Bio,
		DiplomaKey:      diplomaKey,
		Status:          entity.DoctorStatusPending,
	}

	if err := u.doctorProfileRepo.Create(tx, profile); err != nil {
		if isDuplicateKeyError(err, "license_number") {
			return nil, ErrLicenseAlreadyExists
		}
		if isDuplicateKeyError(err, "pkey") {
			return nil, ErrDoctorProfileExists
		}
		u.log.Warnf("Failed to create doctor profile: %+v", err)
		return nil, err
	}

	if err := u.userRepo.UpdateRole(tx, userID, entity.RoleIDDoctor); err != nil {
		u.log.Warnf("Failed to update user role: %+v", err)
		return nil, err
	}

	if err := u.auditService.Record(ctx, tx, &userID, entity.AuditActionDoctorApply, "doctor_profile", userID.String(), nil, profile); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return u.profileResponse(ctx, profile), nil
}

func (u *doctorProfileUsecase) storeDiploma(ctx context.Context, userID uuid.UUID, diploma *FileUpload) (string, error) {
	mt := mimetype.Detect(diploma.Data)
	if !mimetype.EqualsAny(mt.String(), allowedDocumentTypes...) {
		return "", ErrUnsupportedDocument
	}

	key := fmt.Sprintf("diplomas/%s/%s%s", userID, uuid.NewString(), mt.Extension())
	if err := u.blobStore.Upload(ctx, key, mt.String(), diploma.Data); err != nil {
		if errors.Is(err, storage.ErrStorageDisabled) {
			u.log.Warnf("Diploma for %s not stored: %v", userID, err)
			return "", nil
		}
		u.log.Warnf("Failed to upload diploma: %+v", err)
		return "", err
	}
	return key, nil
}

func (u *doctorProfileUsecase) GetMine(ctx context.Context, userID uuid.UUID) (*dto.DoctorProfileResponse, error) {
	profile, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}
	return u.profileResponse(ctx, profile), nil
}

func (u *doctorProfileUsecase) List(ctx context.Context, status string) ([]dto.DoctorProfileResponse, error) {
	if status != "" && !entity.ValidDoctorStatus(entity.DoctorStatus(status)) {
		return nil, ErrInvalidDoctorStatus
	}

	profiles, err := u.doctorProfileRepo.FindAll(u.db.WithContext(ctx), entity.DoctorStatus(status))
	if err != nil {
		u.log.Warnf("Failed to list doctor profiles: %+v", err)
		return nil, err
	}
	return lo.Map(profiles, func(p entity.DoctorProfile, _ int) dto.DoctorProfileResponse {
		return *u.profileResponse(ctx, &p)
	}), nil
}

func (u *doctorProfileUsecase) UpdateStatus(ctx context.Context, adminID, doctorID uuid.UUID, req *dto.UpdateDoctorStatusRequest) (*dto.DoctorProfileResponse, error) {
	status := entity.DoctorStatus(req.Status)
	if !entity.ValidDoctorStatus(status) {
		return nil, ErrInvalidDoctorStatus
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	before, err := u.doctorProfileRepo.FindByUserID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if before == nil {
		return nil, ErrDoctorNotFound
	}

	if _, err := u.doctorProfileRepo.UpdateStatus(tx, doctorID, status); err != nil {
		u.log.Warnf("Failed to update doctor status: %+v", err)
		return nil, err
	}

	if err := u.auditService.Record(ctx, tx, &adminID, entity.AuditActionDoctorStatus, "doctor_profile", doctorID.String(),
		map[string]interface{}{"status": before.Status}, map[string]interface{}{"status": status}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	before.Status = status
	return u.profileResponse(ctx, before), nil
}

func (u *doctorProfileUsecase) profileResponse(ctx context.Context, profile *entity.DoctorProfile) *dto.DoctorProfileResponse {
	response := converter.DoctorProfileToResponse(profile)
	response.DiplomaURL = objectURL(ctx, u.blobStore, u.log, profile.DiplomaKey)
	return response
}
