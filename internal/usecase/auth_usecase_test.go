package usecase

import (
	"context"
	"errors"
	"testing"

	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/domain/entity"
	"telehealth-portal/internal/testutil"

	"github.com/google/uuid"
)

func TestAuthUsecase_UpdateProfile(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name      string
		userID    uuid.UUID
		fullName  string
		wantErr   error
		wantName  string
		wantAudit int
	}{
		{name: "renamed", userID: userID, fullName: "  Ada Lovelace ", wantName: "Ada Lovelace", wantAudit: 1},
		{name: "unchanged", userID: userID, fullName: "Ada", wantName: "Ada"},
		{name: "blank after trimming", userID: userID, fullName: "   a ", wantErr: ErrInvalidInput, wantName: "Ada"},
		{name: "unknown user", userID: uuid.New(), fullName: "Someone", wantErr: ErrUserNotFound, wantName: "Ada"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUserRepo{users: map[uuid.UUID]*entity.User{
				userID: {ID: userID, FullName: "Ada", Email: "ada@example.com", RoleID: entity.RoleIDPatient, IsActive: true},
			}}
			audit := &fakeAuditService{}
			uc := NewAuthUsecase(testutil.NewGormDB(t), quietLogger(), users, nil, audit, nil, nil)

			res, err := uc.UpdateProfile(context.Background(), tt.userID, &dto.UpdateProfileRequest{FullName: tt.fullName})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("UpdateProfile() err = %v, want %v", err, tt.wantErr)
			}
			if got := users.users[userID].FullName; got != tt.wantName {
				t.Errorf("stored name = %q, want %q", got, tt.wantName)
			}
			if len(audit.actions()) != tt.wantAudit {
				t.Errorf("audit = %v, want %d entries", audit.actions(), tt.wantAudit)
			}
			if err == nil && (res.FullName != tt.wantName || res.Role != "patient") {
				t.Errorf("response = %+v", res)
			}
		})
	}
}

func TestAuthUsecase_AccountStatus(t *testing.T) {
	active, disabled := uuid.New(), uuid.New()
	users := &fakeUserRepo{users: map[uuid.UUID]*entity.User{
		active:   {ID: active, RoleID: entity.RoleIDDoctor, IsActive: true},
		disabled: {ID: disabled, RoleID: entity.RoleIDPatient},
	}}
	uc := NewAuthUsecase(testutil.NewGormDB(t), quietLogger(), users, nil, &fakeAuditService{}, nil, nil)

	status, err := uc.AccountStatus(context.Background(), active)
	if err != nil || status == nil || !status.Active || status.RoleID != entity.RoleIDDoctor {
		t.Errorf("active account = %+v, %v", status, err)
	}
	status, err = uc.AccountStatus(context.Background(), disabled)
	if err != nil || status == nil || status.Active {
		t.Errorf("disabled account = %+v, %v", status, err)
	}
	status, err = uc.AccountStatus(context.Background(), uuid.New())
	if err != nil || status != nil {
		t.Errorf("missing account = %+v, %v", status, err)
	}
}
