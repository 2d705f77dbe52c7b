package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/usecase"
	"telehealth-portal/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type fakeShareUsecase struct {
	err error
}

func (f *fakeShareUsecase) Create(_ context.Context, _ uuid.UUID, req *dto.CreateShareRequest) (*dto.ShareResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	token := uuid.New()
	return &dto.ShareResponse{Token: token, AnalysisID: uuid.MustParse(req.AnalysisID), SharePath: "/shared/" + token.String()}, nil
}

func (f *fakeShareUsecase) GetShared(context.Context, string) (*dto.SharedAnalysisResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.SharedAnalysisResponse{
		Analysis:  &dto.AnalysisResponse{ID: uuid.New(), DiseaseType: "skin", TopPrediction: "nevus"},
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func shareRouter(uc usecase.ShareUsecase) *mux.Router {
	h := NewShareHandler(uc, validator.NewValidator())
	r := mux.NewRouter()
	r.HandleFunc("/shares", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/shares/{token}", h.Get).Methods(http.MethodGet)
	return r
}

func TestShareHandler_Create(t *testing.T) {
	analysisID := uuid.NewString()
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "created", body: `{"analysisId":"` + analysisID + `","expiresInDays":7}`, wantStatus: http.StatusCreated},
		{name: "expiry too long", body: `{"analysisId":"` + analysisID + `","expiresInDays":400}`, wantStatus: http.StatusBadRequest},
		{name: "missing analysis", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "someone else's analysis", body: `{"analysisId":"` + analysisID + `"}`, err: usecase.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "unknown analysis", body: `{"analysisId":"` + analysisID + `"}`, err: usecase.ErrAnalysisNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withUser(httptest.NewRequest(http.MethodPost, "/shares", bytes.NewBufferString(tt.body)), uuid.New(), 3)
			rec := httptest.NewRecorder()

			shareRouter(&fakeShareUsecase{err: tt.err}).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestShareHandler_Get(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "open", wantStatus: http.StatusOK},
		{name: "expired", err: usecase.ErrShareExpired, wantStatus: http.StatusGone},
		{name: "unknown", err: usecase.ErrShareNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No user in context: opening a link needs no token.
			req := httptest.NewRequest(http.MethodGet, "/shares/"+uuid.NewString(), nil)
			rec := httptest.NewRecorder()

			shareRouter(&fakeShareUsecase{err: tt.err}).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusOK && strings.Contains(rec.Body.String(), "user_id") {
				t.Errorf("shared analysis exposes its owner: %s", rec.Body.String())
			}
		})
	}
}
