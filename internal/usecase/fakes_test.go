package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	"telehealth-portal/internal/domain/entity"
	"telehealth-portal/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeAppointmentRepo struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]entity.Appointment
	stale map[uuid.UUID]entity.Appointment
}

func newFakeAppointmentRepo(appts ...entity.Appointment) *fakeAppointmentRepo {
	r := &fakeAppointmentRepo{rows: map[uuid.UUID]entity.Appointment{}, stale: map[uuid.UUID]entity.Appointment{}}
	for _, a := range appts {
		r.rows[a.ID] = a
	}
	return r
}

func (r *fakeAppointmentRepo) Create(_ *gorm.DB, a *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[a.ID] = *a
	return nil
}

// FindByID serves a stale snapshot when one is set, as a read that raced
// with another writer would.
func (r *fakeAppointmentRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.stale[id]; ok {
		return &a, nil
	}
	a, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *fakeAppointmentRepo) FindByPatientID(*gorm.DB, uuid.UUID, entity.AppointmentStatus) ([]entity.Appointment, error) {
	return nil, nil
}

func (r *fakeAppointmentRepo) FindForDoctor(_ *gorm.DB, doctorID uuid.UUID, status entity.AppointmentStatus) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.rows {
		open := a.DoctorID == nil && a.Status == entity.AppointmentStatusPending
		if (open || a.IsAssignedTo(doctorID)) && (status == "" || a.Status == status) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) Decide(_ *gorm.DB, id, doctorID uuid.UUID, status entity.AppointmentStatus, note string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok || a.Status != entity.AppointmentStatusPending {
		return 0, nil
	}
	a.Status = status
	a.DoctorID = &doctorID
	a.DoctorNote = note
	a.ApprovedAt = &at
	r.rows[id] = a
	return 1, nil
}

func (r *fakeAppointmentRepo) ClaimRoomURL(_ *gorm.DB, id uuid.UUID, provider, url string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok || a.RoomURL != "" {
		return 0, nil
	}
	a.RoomProvider = provider
	a.RoomURL = url
	r.rows[id] = a
	return 1, nil
}

func (r *fakeAppointmentRepo) get(id uuid.UUID) entity.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id]
}

type fakeDoctorProfileRepo struct {
	profiles map[uuid.UUID]*entity.DoctorProfile
}

func (r *fakeDoctorProfileRepo) Create(*gorm.DB, *entity.DoctorProfile) error { return nil }

func (r *fakeDoctorProfileRepo) FindByUserID(_ *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	return r.profiles[userID], nil
}

func (r *fakeDoctorProfileRepo) FindAll(*gorm.DB, entity.DoctorStatus) ([]entity.DoctorProfile, error) {
	return nil, nil
}

func (r *fakeDoctorProfileRepo) UpdateStatus(*gorm.DB, uuid.UUID, entity.DoctorStatus) (int64, error) {
	return 0, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func (r *fakeUserRepo) Create(*gorm.DB, *entity.User) error                { return nil }
func (r *fakeUserRepo) FindByEmail(*gorm.DB, string) (*entity.User, error) { return nil, nil }
func (r *fakeUserRepo) UpdateRole(*gorm.DB, uuid.UUID, int) error          { return nil }
func (r *fakeUserRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) UpdateFullName(_ *gorm.DB, id uuid.UUID, fullName string) (int64, error) {
	u, ok := r.users[id]
	if !ok {
		return 0, nil
	}
	u.FullName = fullName
	return 1, nil
}

type recordedAudit struct {
	action   string
	entityID string
}

type fakeAuditService struct {
	mu      sync.Mutex
	entries []recordedAudit
	err     error
}

func (s *fakeAuditService) Record(_ context.Context, _ *gorm.DB, _ *uuid.UUID, action, _, entityID string, _, _ interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, recordedAudit{action: action, entityID: entityID})
	return nil
}

func (s *fakeAuditService) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.action
	}
	return out
}

type fakeAnalysisRepo struct {
	rows map[uuid.UUID]*entity.Analysis
}

func (r *fakeAnalysisRepo) Create(*gorm.DB, *entity.Analysis) error { return nil }

func (r *fakeAnalysisRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.Analysis, error) {
	return r.rows[id], nil
}

func (r *fakeAnalysisRepo) FindAll(*gorm.DB, repository.AnalysisFilter) ([]entity.Analysis, int64, error) {
	return nil, 0, nil
}

func (r *fakeAnalysisRepo) CountByDisease(*gorm.DB, uuid.UUID) ([]entity.DiseaseCount, error) {
	return nil, nil
}

func (r *fakeAnalysisRepo) LastCreatedAt(*gorm.DB, uuid.UUID) (*time.Time, error) { return nil, nil }

type fakeFavoriteRepo struct {
	rows      map[uuid.UUID]*entity.Favorite
	createErr error
	created   int
}

func newFakeFavoriteRepo(favs ...*entity.Favorite) *fakeFavoriteRepo {
	r := &fakeFavoriteRepo{rows: map[uuid.UUID]*entity.Favorite{}}
	for _, f := range favs {
		r.rows[f.ID] = f
	}
	return r
}

func (r *fakeFavoriteRepo) Create(_ *gorm.DB, f *entity.Favorite) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created++
	r.rows[f.ID] = f
	return nil
}

func (r *fakeFavoriteRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.Favorite, error) {
	return r.rows[id], nil
}

func (r *fakeFavoriteRepo) FindByUserAndAnalysis(_ *gorm.DB, userID, analysisID uuid.UUID) (*entity.Favorite, error) {
	for _, f := range r.rows {
		if f.UserID == userID && f.AnalysisID == analysisID {
			return f, nil
		}
	}
	return nil, nil
}

func (r *fakeFavoriteRepo) FindByUserID(*gorm.DB, uuid.UUID) ([]entity.Favorite, error) {
	return nil, nil
}

func (r *fakeFavoriteRepo) Delete(_ *gorm.DB, id uuid.UUID) (int64, error) {
	if _, ok := r.rows[id]; !ok {
		return 0, nil
	}
	delete(r.rows, id)
	return 1, nil
}
