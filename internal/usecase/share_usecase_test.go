package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/domain/entity"
	"telehealth-portal/internal/testutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeShareRepo struct {
	byToken map[uuid.UUID]*entity.Share
	// analyses backs the Analysis preload.
	analyses map[uuid.UUID]*entity.Analysis
}

func (r *fakeShareRepo) Create(_ *gorm.DB, s *entity.Share) error {
	r.byToken[s.Token] = s
	return nil
}

func (r *fakeShareRepo) FindByToken(_ *gorm.DB, token uuid.UUID) (*entity.Share, error) {
	s, ok := r.byToken[token]
	if !ok {
		return nil, nil
	}
	loaded := *s
	if a, ok := r.analyses[s.AnalysisID]; ok {
		loaded.Analysis = *a
	}
	return &loaded, nil
}

var shareNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestShareUsecase(t *testing.T, analyses map[uuid.UUID]*entity.Analysis) (ShareUsecase, *fakeShareRepo, *fakeAuditService, *time.Time) {
	t.Helper()
	clock := shareNow
	shares := &fakeShareRepo{byToken: map[uuid.UUID]*entity.Share{}, analyses: analyses}
	audit := &fakeAuditService{}
	uc := NewShareUsecase(testutil.NewGormDB(t), quietLogger(), shares, &fakeAnalysisRepo{rows: analyses}, audit, keyURLStore{},
		func() time.Time { return clock })
	return uc, shares, audit, &clock
}

func TestShareUsecase_Create(t *testing.T) {
	owner := uuid.New()
	analysis := &entity.Analysis{ID: uuid.New(), UserID: owner, DiseaseType: "skin"}

	tests := []struct {
		name       string
		userID     uuid.UUID
		req        dto.CreateShareRequest
		wantErr    error
		wantExpiry time.Time
	}{
		{name: "default expiry", userID: owner, req: dto.CreateShareRequest{AnalysisID: analysis.ID.String()}, wantExpiry: shareNow.AddDate(0, 0, 30)},
		{name: "custom expiry", userID: owner, req: dto.CreateShareRequest{AnalysisID: analysis.ID.String(), ExpiresInDays: 7}, wantExpiry: shareNow.AddDate(0, 0, 7)},
		{name: "not the owner", userID: uuid.New(), req: dto.CreateShareRequest{AnalysisID: analysis.ID.String()}, wantErr: ErrForbidden},
		{name: "unknown analysis", userID: owner, req: dto.CreateShareRequest{AnalysisID: uuid.NewString()}, wantErr: ErrAnalysisNotFound},
		{name: "malformed id", userID: owner, req: dto.CreateShareRequest{AnalysisID: "x"}, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, shares, audit, _ := newTestShareUsecase(t, map[uuid.UUID]*entity.Analysis{analysis.ID: analysis})

			res, err := uc.Create(context.Background(), tt.userID, &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if len(shares.byToken) != 0 {
					t.Error("share stored despite error")
				}
				return
			}

			if !res.ExpiresAt.Equal(tt.wantExpiry) {
				t.Errorf("ExpiresAt = %s, want %s", res.ExpiresAt, tt.wantExpiry)
			}
			if res.SharePath != "/shared/"+res.Token.String() {
				t.Errorf("SharePath = %q", res.SharePath)
			}
			if stored := shares.byToken[res.Token]; stored == nil || stored.UserID != owner {
				t.Errorf("stored share = %+v", stored)
			}
			if got := audit.actions(); len(got) != 1 || got[0] != entity.AuditActionShareCreate {
				t.Errorf("audit = %v", got)
			}
		})
	}
}

func TestShareUsecase_GetShared(t *testing.T) {
	owner := uuid.New()
	analysis := &entity.Analysis{ID: uuid.New(), UserID: owner, DiseaseType: "lung", ImageKey: "analyses/x.png", TopPrediction: "normal"}
	uc, shares, _, clock := newTestShareUsecase(t, map[uuid.UUID]*entity.Analysis{analysis.ID: analysis})

	created, err := uc.Create(context.Background(), owner, &dto.CreateShareRequest{AnalysisID: analysis.ID.String(), ExpiresInDays: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	orphan := &entity.Share{Token: uuid.New(), AnalysisID: uuid.New(), ExpiresAt: shareNow.Add(time.Hour)}
	shares.byToken[orphan.Token] = orphan

	got, err := uc.GetShared(context.Background(), created.Token.String())
	if err != nil {
		t.Fatalf("GetShared: %v", err)
	}
	if got.Analysis.ID != analysis.ID || got.Analysis.ImageURL != "https://cdn.example/analyses/x.png" {
		t.Errorf("analysis = %+v", got.Analysis)
	}

	tests := []struct {
		name    string
		token   string
		advance time.Duration
		wantErr error
	}{
		{name: "malformed token", token: "abc", wantErr: ErrShareNotFound},
		{name: "unknown token", token: uuid.NewString(), wantErr: ErrShareNotFound},
		{name: "analysis deleted", token: orphan.Token.String(), wantErr: ErrAnalysisNotFound},
		{name: "at expiry", token: created.Token.String(), advance: 24 * time.Hour, wantErr: ErrShareExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*clock = shareNow.Add(tt.advance)
			if _, err := uc.GetShared(context.Background(), tt.token); !errors.Is(err, tt.wantErr) {
				t.Errorf("GetShared() err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
