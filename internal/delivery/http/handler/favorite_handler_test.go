package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/usecase"
	"telehealth-portal/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type fakeFavoriteUsecase struct {
	err error
}

func (f *fakeFavoriteUsecase) Create(_ context.Context, _ uuid.UUID, req *dto.CreateFavoriteRequest) (*dto.FavoriteResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.FavoriteResponse{ID: uuid.New(), AnalysisID: uuid.MustParse(req.AnalysisID)}, nil
}

func (f *fakeFavoriteUsecase) List(context.Context, uuid.UUID) ([]dto.FavoriteResponse, error) {
	return nil, f.err
}

func (f *fakeFavoriteUsecase) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return f.err
}

func favoriteRouter(uc usecase.FavoriteUsecase) *mux.Router {
	h := NewFavoriteHandler(uc, validator.NewValidator())
	r := mux.NewRouter()
	r.HandleFunc("/favorites", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/favorites/{id}", h.Delete).Methods(http.MethodDelete)
	return r
}

func TestFavoriteHandler_Create(t *testing.T) {
	analysisID := uuid.New().String()
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "created", body: `{"analysisId":"` + analysisID + `"}`, wantStatus: http.StatusCreated},
		{name: "not a uuid", body: `{"analysisId":"abc"}`, wantStatus: http.StatusBadRequest},
		{name: "unknown analysis", body: `{"analysisId":"` + analysisID + `"}`, err: usecase.ErrAnalysisNotFound, wantStatus: http.StatusNotFound},
		{name: "someone else's analysis", body: `{"analysisId":"` + analysisID + `"}`, err: usecase.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "duplicate", body: `{"analysisId":"` + analysisID + `"}`, err: usecase.ErrFavoriteExists, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withUser(httptest.NewRequest(http.MethodPost, "/favorites", bytes.NewBufferString(tt.body)), uuid.New(), 3)
			rec := httptest.NewRecorder()

			favoriteRouter(&fakeFavoriteUsecase{err: tt.err}).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestFavoriteHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "deleted", wantStatus: http.StatusOK},
		{name: "missing", err: usecase.ErrFavoriteNotFound, wantStatus: http.StatusNotFound},
		{name: "not owner", err: usecase.ErrForbidden, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withUser(httptest.NewRequest(http.MethodDelete, "/favorites/"+uuid.NewString(), nil), uuid.New(), 3)
			rec := httptest.NewRecorder()

			favoriteRouter(&fakeFavoriteUsecase{err: tt.err}).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
