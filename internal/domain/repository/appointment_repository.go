package repository

import (
	"time"

	"telehealth-portal/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID, status entity.AppointmentStatus) ([]entity.Appointment, error)
	// FindForDoctor returns unassigned pending appointments together with the
	// ones assigned to doctorID.
	FindForDoctor(db *gorm.DB, doctorID uuid.UUID, status entity.AppointmentStatus) ([]entity.Appointment, error)
	// Decide moves a pending appointment to status. Returns affected rows:
	// 0 means it was already decided.
	Decide(db *gorm.DB, id, doctorID uuid.UUID, status entity.AppointmentStatus, note string, decidedAt time.Time) (int64, error)
	// ClaimRoomURL stores the room URL only when none is stored yet.
	ClaimRoomURL(db *gorm.DB, id uuid.UUID, provider, roomURL string) (int64, error)
}
