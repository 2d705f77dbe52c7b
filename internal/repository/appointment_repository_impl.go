package repository

import (
	"errors"
	"time"

	"telehealth-portal/internal/domain/entity"
	domainRepo "telehealth-portal/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Preload("Patient").Preload("Doctor").Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID, status entity.AppointmentStatus) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.Preload("Doctor").Where("patient_id = ?", patientID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("date DESC, time DESC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindForDoctor(db *gorm.DB, doctorID uuid.UUID, status entity.AppointmentStatus) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.Preload("Patient").
		Where("(doctor_id IS NULL AND status = ?) OR doctor_id = ?", entity.AppointmentStatusPending, doctorID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("date DESC, time DESC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// Decide only touches pending rows so two doctors cannot both decide the same
// appointment.
func (r *appointmentRepository) Decide(db *gorm.DB, id, doctorID uuid.UUID, status entity.AppointmentStatus, note string, decidedAt time.Time) (int64, error) {
	updates := map[string]interface{}{
		"status":      status,
		"doctor_id":   doctorID,
		"doctor_note": note,
	}
	if status == entity.AppointmentStatusApproved {
		updates["approved_at"] = decidedAt
	}
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, entity.AppointmentStatusPending).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// ClaimRoomURL returns 1 when this call stored the URL and 0 when another
// caller got there first.
func (r *appointmentRepository) ClaimRoomURL(db *gorm.DB, id uuid.UUID, provider, roomURL string) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND room_url = ''", id).
		Updates(map[string]interface{}{
			"room_provider": provider,
			"room_url":      roomURL,
		})
	return result.RowsAffected, result.Error
}
