package repository

import (
	"context"
	"fmt"

	domainRepo "telehealth-portal/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentRoomStore writes an appointment's room URL with a conditional
// update and reads back the winner when another request stored one first.
type AppointmentRoomStore struct {
	db   *gorm.DB
	repo domainRepo.AppointmentRepository
}

func NewAppointmentRoomStore(db *gorm.DB, repo domainRepo.AppointmentRepository) *AppointmentRoomStore {
	return &AppointmentRoomStore{db: db, repo: repo}
}

func (s *AppointmentRoomStore) ClaimRoomURL(ctx context.Context, appointmentID uuid.UUID, provider, url string) (string, string, error) {
	db := s.db.WithContext(ctx)

	affected, err := s.repo.ClaimRoomURL(db, appointmentID, provider, url)
	if err != nil {
		return "", "", err
	}
	if affected == 1 {
		return provider, url, nil
	}

	appointment, err := s.repo.FindByID(db, appointmentID)
	if err != nil {
		return "", "", err
	}
	if appointment == nil || appointment.RoomURL == "" {
		return "", "", fmt.Errorf("appointment %s vanished while storing its room", appointmentID)
	}
	return appointment.RoomProvider, appointment.RoomURL, nil
}
