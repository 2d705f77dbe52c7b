package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/domain/entity"
	"telehealth-portal/internal/infrastructure/video"
	"telehealth-portal/internal/repository"
	"telehealth-portal/internal/service"
	"telehealth-portal/internal/testutil"
	"telehealth-portal/pkg/roomname"

	"github.com/google/uuid"
)

var appointmentNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

type appointmentFixture struct {
	usecase  AppointmentUsecase
	repo     *fakeAppointmentRepo
	audit    *fakeAuditService
	provider *stubProvider
	logs     *bytes.Buffer

	patientID, otherPatientID          uuid.UUID
	doctorID, otherDoctorID, pendingID uuid.UUID
}

func newAppointmentFixture(t *testing.T, enforceWindow bool) *appointmentFixture {
	t.Helper()
	f := &appointmentFixture{
		patientID:      uuid.New(),
		otherPatientID: uuid.New(),
		doctorID:       uuid.New(),
		otherDoctorID:  uuid.New(),
		pendingID:      uuid.New(),
		audit:          &fakeAuditService{},
		provider:       &stubProvider{name: "jitsi", configured: true},
		logs:           &bytes.Buffer{},
	}

	db := testutil.NewGormDB(t)
	log := quietLogger()
	log.SetOutput(f.logs)
	f.repo = newFakeAppointmentRepo()

	users := &fakeUserRepo{users: map[uuid.UUID]*entity.User{}}
	for _, id := range []uuid.UUID{f.patientID, f.otherPatientID, f.doctorID, f.otherDoctorID, f.pendingID} {
		users.users[id] = &entity.User{ID: id, FullName: "User " + id.String()[:4], IsActive: true}
	}
	profiles := &fakeDoctorProfileRepo{profiles: map[uuid.UUID]*entity.DoctorProfile{
		f.doctorID:      {UserID: f.doctorID, Status: entity.DoctorStatusApproved},
		f.otherDoctorID: {UserID: f.otherDoctorID, Status: entity.DoctorStatusApproved},
		f.pendingID:     {UserID: f.pendingID, Status: entity.DoctorStatusPending},
	}}

	registry, err := video.NewRegistry(f.provider.Name(), f.provider)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	store := repository.NewAppointmentRoomStore(db, f.repo)
	provisioner := service.NewRoomProvisioner(registry, noopRoomCache{}, store, time.Hour, log)

	f.usecase = NewAppointmentUsecase(db, log, f.repo, profiles, users, f.audit, provisioner, enforceWindow,
		func() time.Time { return appointmentNow })
	return f
}

func appointmentFor(patientID uuid.UUID, status entity.AppointmentStatus, doctorID *uuid.UUID) entity.Appointment {
	id := uuid.New()
	return entity.Appointment{
		ID:        id,
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      "2025-03-14",
		Time:      "10:10",
		Reason:    "follow-up",
		Status:    status,
		RoomName:  roomname.Normalize(id.String(), roomname.Common),
	}
}

func TestAppointmentUsecase_JoinParticipants(t *testing.T) {
	tests := []struct {
		name          string
		status        entity.AppointmentStatus
		assignOther   bool
		assignDoctor  bool
		caller        func(f *appointmentFixture) uuid.UUID
		wantErr       error
		wantModerator bool
	}{
		{
			name:    "patient before approval",
			status:  entity.AppointmentStatusPending,
			caller:  func(f *appointmentFixture) uuid.UUID { return f.patientID },
			wantErr: ErrAppointmentNotApproved,
		},
		{
			name:   "patient after approval",
			status: entity.AppointmentStatusApproved, assignDoctor: true,
			caller: func(f *appointmentFixture) uuid.UUID { return f.patientID },
		},
		{
			name:    "another patient",
			status:  entity.AppointmentStatusApproved,
			caller:  func(f *appointmentFixture) uuid.UUID { return f.otherPatientID },
			wantErr: ErrNotParticipant,
		},
		{
			name:   "assigned doctor",
			status: entity.AppointmentStatusApproved, assignDoctor: true,
			caller:        func(f *appointmentFixture) uuid.UUID { return f.doctorID },
			wantModerator: true,
		},
		{
			name:   "approved doctor on unassigned pending appointment",
			status: entity.AppointmentStatusPending,
			caller: func(f *appointmentFixture) uuid.UUID { return f.otherDoctorID }, wantModerator: true,
		},
		{
			name:   "doctor not assigned",
			status: entity.AppointmentStatusApproved, assignOther: true,
			caller:  func(f *appointmentFixture) uuid.UUID { return f.doctorID },
			wantErr: ErrNotParticipant,
		},
		{
			name:   "doctor on rejected appointment",
			status: entity.AppointmentStatusRejected, assignDoctor: true,
			caller:  func(f *appointmentFixture) uuid.UUID { return f.doctorID },
			wantErr: ErrAppointmentNotApproved,
		},
		{
			name:    "doctor awaiting approval",
			status:  entity.AppointmentStatusPending,
			caller:  func(f *appointmentFixture) uuid.UUID { return f.pendingID },
			wantErr: ErrNotParticipant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAppointmentFixture(t, false)
			var doctor *uuid.UUID
			switch {
			case tt.assignDoctor:
				doctor = &f.doctorID
			case tt.assignOther:
				doctor = &f.otherDoctorID
			}
			appt := appointmentFor(f.patientID, tt.status, doctor)
			_ = f.repo.Create(nil, &appt)

			res, err := f.usecase.Join(context.Background(), tt.caller(f), appt.ID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Join() err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if f.repo.get(appt.ID).RoomURL != "" {
					t.Error("rejected join still stored a room")
				}
				return
			}

			if res.RoomURL == "" || res.RoomURL != f.repo.get(appt.ID).RoomURL {
				t.Errorf("RoomURL = %q, stored %q", res.RoomURL, f.repo.get(appt.ID).RoomURL)
			}
			if f.provider.participant.IsModerator != tt.wantModerator {
				t.Errorf("moderator = %t, want %t", f.provider.participant.IsModerator, tt.wantModerator)
			}
			if got := f.audit.actions(); len(got) != 1 || got[0] != entity.AuditActionAppointmentRoom {
				t.Errorf("audit = %v, want one room assignment", got)
			}
		})
	}
}

func TestAppointmentUsecase_JoinReusesStoredRoom(t *testing.T) {
	f := newAppointmentFixture(t, false)
	appt := appointmentFor(f.patientID, entity.AppointmentStatusApproved, &f.doctorID)
	_ = f.repo.Create(nil, &appt)

	first, err := f.usecase.Join(context.Background(), f.patientID, appt.ID)
	if err != nil {
		t.Fatalf("patient Join: %v", err)
	}
	second, err := f.usecase.Join(context.Background(), f.doctorID, appt.ID)
	if err != nil {
		t.Fatalf("doctor Join: %v", err)
	}
	if first.RoomURL != second.RoomURL {
		t.Errorf("room URLs differ: %q vs %q", first.RoomURL, second.RoomURL)
	}
	if got := f.audit.actions(); len(got) != 1 {
		t.Errorf("audit = %v, want the room assignment recorded once", got)
	}
}

func TestAppointmentUsecase_JoinSurvivesAuditFailure(t *testing.T) {
	f := newAppointmentFixture(t, false)
	f.audit.err = errors.New("audit table locked")
	appt := appointmentFor(f.patientID, entity.AppointmentStatusApproved, &f.doctorID)
	_ = f.repo.Create(nil, &appt)

	res, err := f.usecase.Join(context.Background(), f.patientID, appt.ID)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if res.RoomURL == "" {
		t.Error("no room returned")
	}
	if !strings.Contains(f.logs.String(), "audit table locked") {
		t.Errorf("audit failure not logged; logs: %s", f.logs.String())
	}
}

func TestAppointmentUsecase_JoinWindow(t *testing.T) {
	tests := []struct {
		name    string
		clock   string
		wantErr error
	}{
		{name: "five minutes early", clock: "10:05"},
		{name: "thirty minutes late", clock: "09:30"},
		{name: "too early", clock: "10:06", wantErr: ErrOutsideJoinWindow},
		{name: "too late", clock: "09:29", wantErr: ErrOutsideJoinWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAppointmentFixture(t, true)
			appt := appointmentFor(f.patientID, entity.AppointmentStatusApproved, &f.doctorID)
			appt.Time = tt.clock
			_ = f.repo.Create(nil, &appt)

			if _, err := f.usecase.Join(context.Background(), f.patientID, appt.ID); !errors.Is(err, tt.wantErr) {
				t.Errorf("Join() err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAppointmentUsecase_Decide(t *testing.T) {
	f := newAppointmentFixture(t, false)
	appt := appointmentFor(f.patientID, entity.AppointmentStatusPending, nil)
	_ = f.repo.Create(nil, &appt)

	res, err := f.usecase.Decide(context.Background(), f.doctorID, appt.ID, &dto.AppointmentDecisionRequest{Action: "approve", Note: "see you"})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if res.Status != string(entity.AppointmentStatusApproved) || res.DoctorID == nil || *res.DoctorID != f.doctorID {
		t.Errorf("response = %+v", res)
	}

	// The assigned doctor deciding again finds it no longer pending.
	if _, err := f.usecase.Decide(context.Background(), f.doctorID, appt.ID, &dto.AppointmentDecisionRequest{Action: "reject"}); !errors.Is(err, ErrAppointmentDecided) {
		t.Errorf("second Decide err = %v, want ErrAppointmentDecided", err)
	}
	// Another doctor is no longer a participant once it is assigned.
	if _, err := f.usecase.Decide(context.Background(), f.otherDoctorID, appt.ID, &dto.AppointmentDecisionRequest{Action: "reject"}); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("other doctor Decide err = %v, want ErrNotParticipant", err)
	}
	if got := f.repo.get(appt.ID).Status; got != entity.AppointmentStatusApproved {
		t.Errorf("stored status = %s, want approved", got)
	}
}

func TestAppointmentUsecase_DecideRace(t *testing.T) {
	f := newAppointmentFixture(t, false)
	appt := appointmentFor(f.patientID, entity.AppointmentStatusPending, nil)
	_ = f.repo.Create(nil, &appt)
	// Both doctors read the appointment while it was still pending.
	f.repo.stale[appt.ID] = appt

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, doctor := range []uuid.UUID{f.doctorID, f.otherDoctorID} {
		wg.Add(1)
		go func(i int, doctor uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.usecase.Decide(context.Background(), doctor, appt.ID, &dto.AppointmentDecisionRequest{Action: "approve"})
		}(i, doctor)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrAppointmentDecided):
			lost++
		default:
			t.Errorf("unexpected error %v", err)
		}
	}
	if won != 1 || lost != 1 {
		t.Errorf("won = %d, lost = %d; want exactly one decider", won, lost)
	}
}

func TestAppointmentUsecase_DecideRequiresApprovedDoctor(t *testing.T) {
	f := newAppointmentFixture(t, false)
	appt := appointmentFor(f.patientID, entity.AppointmentStatusPending, nil)
	_ = f.repo.Create(nil, &appt)

	tests := []struct {
		name    string
		caller  uuid.UUID
		action  string
		wantErr error
	}{
		{name: "pending doctor", caller: f.pendingID, action: "approve", wantErr: ErrDoctorNotApproved},
		{name: "no profile", caller: f.patientID, action: "approve", wantErr: ErrDoctorNotFound},
		{name: "bad action", caller: f.doctorID, action: "maybe", wantErr: ErrInvalidInput},
		{name: "unknown appointment", caller: f.doctorID, action: "approve", wantErr: ErrAppointmentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := appt.ID
			if tt.wantErr == ErrAppointmentNotFound {
				id = uuid.New()
			}
			if _, err := f.usecase.Decide(context.Background(), tt.caller, id, &dto.AppointmentDecisionRequest{Action: tt.action}); !errors.Is(err, tt.wantErr) {
				t.Errorf("Decide() err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAppointmentUsecase_Create(t *testing.T) {
	f := newAppointmentFixture(t, false)

	res, err := f.usecase.Create(context.Background(), f.patientID, &dto.CreateAppointmentRequest{Date: "2025-03-15", Time: "09:00", Reason: "rash"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	stored := f.repo.get(res.ID)
	if stored.Status != entity.AppointmentStatusPending || stored.RoomName != roomname.Normalize(res.ID.String(), roomname.Common) {
		t.Errorf("stored = %+v", stored)
	}

	if _, err := f.usecase.Create(context.Background(), f.patientID, &dto.CreateAppointmentRequest{Date: "2025-03-14", Time: "09:59", Reason: "rash"}); !errors.Is(err, ErrAppointmentInPast) {
		t.Errorf("past Create err = %v, want ErrAppointmentInPast", err)
	}
	if _, err := f.usecase.Create(context.Background(), f.patientID, &dto.CreateAppointmentRequest{Date: "14/03/2025", Time: "09:00", Reason: "rash"}); !errors.Is(err, ErrInvalidAppointmentTime) {
		t.Errorf("malformed Create err = %v, want ErrInvalidAppointmentTime", err)
	}
}

func TestAppointmentUsecase_ListPatients(t *testing.T) {
	f := newAppointmentFixture(t, false)
	patient := entity.User{ID: f.patientID, FullName: "Ada", Email: "ada@example.com"}
	other := entity.User{ID: f.otherPatientID, FullName: "Bo", Email: "bo@example.com"}

	mine := appointmentFor(f.patientID, entity.AppointmentStatusApproved, &f.doctorID)
	mine.Date, mine.Patient = "2025-03-10", patient
	open := appointmentFor(f.patientID, entity.AppointmentStatusPending, nil)
	open.Date, open.Patient = "2025-03-20", patient
	theirs := appointmentFor(f.otherPatientID, entity.AppointmentStatusApproved, &f.otherDoctorID)
	theirs.Patient = other
	for _, a := range []entity.Appointment{mine, open, theirs} {
		_ = f.repo.Create(nil, &a)
	}

	roster, err := f.usecase.ListPatients(context.Background(), f.doctorID)
	if err != nil {
		t.Fatalf("ListPatients: %v", err)
	}
	if len(roster) != 1 {
		t.Fatalf("roster = %+v, want only the doctor's own patient", roster)
	}
	got := roster[0]
	if got.PatientID != f.patientID || got.FullName != "Ada" || got.TotalAppointments != 2 || got.PendingRequests != 1 {
		t.Errorf("entry = %+v", got)
	}
	if got.LastAppointment != "2025-03-20 10:10" {
		t.Errorf("LastAppointment = %q", got.LastAppointment)
	}

	if _, err := f.usecase.ListPatients(context.Background(), f.pendingID); !errors.Is(err, ErrDoctorNotApproved) {
		t.Errorf("pending doctor err = %v, want ErrDoctorNotApproved", err)
	}
}
