package usecase

import (
	"context"
	"errors"
	"time"

	"telehealth-portal/internal/converter"
	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/domain/entity"
	"telehealth-portal/internal/domain/repository"
	"telehealth-portal/internal/infrastructure/video"
	"telehealth-portal/internal/service"
	"telehealth-portal/pkg/apptime"
	"telehealth-portal/pkg/roomname"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound    = errors.New("appointment not found")
	ErrAppointmentNotApproved = errors.New("appointment is not approved")
	ErrAppointmentDecided     = errors.New("appointment has already been decided")
	ErrAppointmentInPast      = errors.New("appointment must be scheduled in the future")
	ErrInvalidAppointmentTime = errors.New("invalid appointment date or time")
	ErrInvalidStatusFilter    = errors.New("invalid status filter")
	ErrOutsideJoinWindow      = errors.New("appointment can only be joined from 5 minutes before until 30 minutes after its start")
	ErrNotParticipant         = errors.New("user is not a participant of this appointment")
)

type AppointmentUsecase interface {
	Create(ctx context.Context, patientID uuid.UUID, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	ListMine(ctx context.Context, patientID uuid.UUID, status string) ([]dto.AppointmentResponse, error)
	Get(ctx context.Context, userID uuid.UUID, roleID int, id uuid.UUID) (*dto.AppointmentResponse, error)
	Join(ctx context.Context, userID, id uuid.UUID) (*dto.JoinAppointmentResponse, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID, status string) ([]dto.AppointmentResponse, error)
	ListPatients(ctx context.Context, doctorID uuid.UUID) ([]dto.DoctorPatientResponse, error)
	Decide(ctx context.Context, doctorID, id uuid.UUID, req *dto.AppointmentDecisionRequest) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	appointmentRepo   repository.AppointmentRepository
	doctorProfileRepo repository.DoctorProfileRepository
	userRepo          repository.UserRepository
	auditService      service.AuditService
	provisioner       *service.RoomProvisioner
	enforceJoinWindow bool
	now               func() time.Time
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	provisioner *service.RoomProvisioner,
	enforceJoinWindow bool,
	now func() time.Time,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:                db,
		log:               log,
		appointmentRepo:   appointmentRepo,
		doctorProfileRepo: doctorProfileRepo,
		userRepo:          userRepo,
		auditService:      auditService,
		provisioner:       provisioner,
		enforceJoinWindow: enforceJoinWindow,
		now:               now,
	}
}

func (u *appointmentUsecase) Create(ctx context.Context, patientID uuid.UUID, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	now := u.now()
	scheduled, err := apptime.ScheduledAt(req.Date, req.Time, now.Location())
	if err != nil {
		return nil, ErrInvalidAppointmentTime
	}
	if scheduled.Before(now) {
		return nil, ErrAppointmentInPast
	}

	id := uuid.New()
	appointment := &entity.Appointment{
		ID:         id,
		PatientID:  patientID,
		Date:       req.Date,
		Time:       req.Time,
		Reason:     req.Reason,
		DoctorType: req.DoctorType,
		Status:     entity.AppointmentStatusPending,
		RoomName:   roomname.Normalize(id.String(), roomname.Common),
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	if err := u.auditService.Record(ctx, tx, &patientID, entity.AuditActionAppointmentCreate, "appointment", id.String(), nil, appointment); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.AppointmentToResponse(appointment, now), nil
}

func parseStatusFilter(status string) (entity.AppointmentStatus, error) {
	s := entity.AppointmentStatus(status)
	if status != "" && !entity.ValidAppointmentStatus(s) {
		return "", ErrInvalidStatusFilter
	}
	return s, nil
}

func (u *appointmentUsecase) ListMine(ctx context.Context, patientID uuid.UUID, status string) ([]dto.AppointmentResponse, error) {
	filter, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}

	appointments, err := u.appointmentRepo.FindByPatientID(u.db.WithContext(ctx), patientID, filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}
	return converter.AppointmentsToResponses(appointments, u.now()), nil
}

func (u *appointmentUsecase) Get(ctx context.Context, userID uuid.UUID, roleID int, id uuid.UUID) (*dto.AppointmentResponse, error) {
	db := u.db.WithContext(ctx)

	appointment, err := u.appointmentRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	if roleID != entity.RoleIDAdmin && appointment.PatientID != userID {
		if _, err := u.approvedDoctorFor(db, userID, appointment); err != nil {
			return nil, err
		}
	}

	return converter.AppointmentToResponse(appointment, u.now()), nil
}

// approvedDoctorFor returns the caller's profile when the caller is an
// approved doctor allowed to act on appointment: the assigned doctor, or any
// approved doctor while it is unassigned.
func (u *appointmentUsecase) approvedDoctorFor(db *gorm.DB, userID uuid.UUID, appointment *entity.Appointment) (*entity.DoctorProfile, error) {
	profile, err := u.doctorProfileRepo.FindByUserID(db, userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if !profile.IsApproved() {
		return nil, ErrNotParticipant
	}
	if appointment.DoctorID != nil && !appointment.IsAssignedTo(userID) {
		return nil, ErrNotParticipant
	}
	return profile, nil
}

func (u *appointmentUsecase) Join(ctx context.Context, userID, id uuid.UUID) (*dto.JoinAppointmentResponse, error) {
	db := u.db.WithContext(ctx)

	appointment, err := u.appointmentRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	user, err := u.userRepo.FindByID(db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	participant := video.Participant{Name: user.FullName, Email: user.Email}
	if appointment.PatientID == userID {
		if !appointment.IsApproved() {
			return nil, ErrAppointmentNotApproved
		}
	} else {
		if _, err := u.approvedDoctorFor(db, userID, appointment); err != nil {
			return nil, err
		}
		if appointment.IsRejected() {
			return nil, ErrAppointmentNotApproved
		}
		participant.IsModerator = true
	}

	if u.enforceJoinWindow {
		joinable, err := apptime.IsJoinable(appointment.Date, appointment.Time, u.now())
		if err != nil {
			return nil, ErrInvalidAppointmentTime
		}
		if !joinable {
			return nil, ErrOutsideJoinWindow
		}
	}

	hadRoom := appointment.HasRoom()
	result, err := u.provisioner.EnsureAppointmentRoom(ctx, appointment, participant)
	if err != nil {
		u.log.Warnf("Failed to provision room for appointment %s: %+v", id, err)
		return nil, err
	}

	if !hadRoom {
		if err := u.auditService.Record(ctx, db, &userID, entity.AuditActionAppointmentRoom, "appointment", id.String(), nil,
			map[string]interface{}{"provider": appointment.RoomProvider, "room_url": appointment.RoomURL}); err != nil {
			u.log.Warnf("Failed to record room assignment for appointment %s: %+v", id, err)
		}
	}

	return &dto.JoinAppointmentResponse{
		AppointmentID: appointment.ID,
		Provider:      result.Room.Provider,
		RoomName:      result.Room.Name,
		RoomURL:       result.Room.URL,
		JoinURL:       result.JoinURL,
	}, nil
}

func (u *appointmentUsecase) ListForDoctor(ctx context.Context, doctorID uuid.UUID, status string) ([]dto.AppointmentResponse, error) {
	filter, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}

	db := u.db.WithContext(ctx)
	if err := u.requireApprovedDoctor(db, doctorID); err != nil {
		return nil, err
	}

	appointments, err := u.appointmentRepo.FindForDoctor(db, doctorID, filter)
	if err != nil {
		u.log.Warnf("Failed to list doctor appointments: %+v", err)
		return nil, err
	}
	return converter.AppointmentsToResponses(appointments, u.now()), nil
}

// ListPatients returns the roster behind the doctor's appointment list: the
// patients it assigned to them plus those with requests still open to anyone.
func (u *appointmentUsecase) ListPatients(ctx context.Context, doctorID uuid.UUID) ([]dto.DoctorPatientResponse, error) {
	db := u.db.WithContext(ctx)
	if err := u.requireApprovedDoctor(db, doctorID); err != nil {
		return nil, err
	}

	appointments, err := u.appointmentRepo.FindForDoctor(db, doctorID, "")
	if err != nil {
		u.log.Warnf("Failed to list doctor appointments: %+v", err)
		return nil, err
	}
	return converter.AppointmentsToPatientRoster(appointments), nil
}

func (u *appointmentUsecase) requireApprovedDoctor(db *gorm.DB, doctorID uuid.UUID) error {
	profile, err := u.doctorProfileRepo.FindByUserID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return err
	}
	if profile == nil {
		return ErrDoctorNotFound
	}
	if !profile.IsApproved() {
		return ErrDoctorNotApproved
	}
	return nil
}

func (u *appointmentUsecase) Decide(ctx context.Context, doctorID, id uuid.UUID, req *dto.AppointmentDecisionRequest) (*dto.AppointmentResponse, error) {
	var status entity.AppointmentStatus
	switch req.Action {
	case "approve":
		status = entity.AppointmentStatusApproved
	case "reject":
		status = entity.AppointmentStatusRejected
	default:
		return nil, ErrInvalidInput
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.requireApprovedDoctor(tx, doctorID); err != nil {
		return nil, err
	}

	appointment, err := u.appointmentRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.DoctorID != nil && !appointment.IsAssignedTo(doctorID) {
		return nil, ErrNotParticipant
	}

	now := u.now()
	affected, err := u.appointmentRepo.Decide(tx, id, doctorID, status, req.Note, now)
	if err != nil {
		u.log.Warnf("Failed to decide appointment: %+v", err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAppointmentDecided
	}

	if err := u.auditService.Record(ctx, tx, &doctorID, entity.AuditActionAppointmentDecide, "appointment", id.String(),
		map[string]interface{}{"status": appointment.Status},
		map[string]interface{}{"status": status, "note": req.Note}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	appointment.Status = status
	appointment.DoctorID = &doctorID
	appointment.DoctorNote = req.Note
	if status == entity.AppointmentStatusApproved {
		appointment.ApprovedAt = &now
	}
	return converter.AppointmentToResponse(appointment, now), nil
}
