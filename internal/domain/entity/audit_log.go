package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog records a state change made through the API.
type AuditLog struct {
	ID        int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID        `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string            `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

const (
	AuditActionUserRegister      = "user.register"
	AuditActionUserProfile       = "user.profile_update"
	AuditActionDoctorApply       = "doctor.apply"
	AuditActionDoctorStatus      = "doctor.status_update"
	AuditActionAppointmentCreate = "appointment.create"
	AuditActionAppointmentDecide = "appointment.decide"
	AuditActionAppointmentRoom   = "appointment.room_assigned"
	AuditActionAnalysisCreate    = "analysis.create"
	AuditActionFavoriteCreate    = "favorite.create"
	AuditActionFavoriteDelete    = "favorite.delete"
	AuditActionShareCreate       = "share.create"
)
