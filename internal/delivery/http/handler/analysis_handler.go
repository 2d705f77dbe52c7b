package handler

import (
	"errors"
	"net/http"

	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/delivery/http/middleware"
	"telehealth-portal/internal/infrastructure/classifier"
	"telehealth-portal/internal/usecase"
	"telehealth-portal/pkg/response"
	"telehealth-portal/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AnalysisHandler struct {
	analysisUsecase usecase.AnalysisUsecase
	validator       *validator.CustomValidator
	maxUploadBytes  int64
}

func NewAnalysisHandler(analysisUsecase usecase.AnalysisUsecase, validator *validator.CustomValidator, maxUploadBytes int64) *AnalysisHandler {
	return &AnalysisHandler{
		analysisUsecase: analysisUsecase,
		validator:       validator,
		maxUploadBytes:  maxUploadBytes,
	}
}

func writeAnalysisError(w http.ResponseWriter, err error, fallback string) {
	var clsErr *classifier.Error
	switch {
	case errors.Is(err, usecase.ErrAnalysisNotFound):
		response.NotFound(w, "Analysis not found")
	case errors.Is(err, usecase.ErrForbidden):
		response.Forbidden(w, "Analysis belongs to another user")
	case errors.Is(err, classifier.ErrUnsupportedDisease):
		response.BadRequest(w, "Unsupported disease type")
	case errors.Is(err, classifier.ErrEmptyImage), errors.Is(err, classifier.ErrUnsupportedImage):
		response.BadRequest(w, err.Error())
	case errors.Is(err, classifier.ErrImageTooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, err.Error(), nil)
	case errors.Is(err, classifier.ErrNotConfigured):
		response.ProblemError(w, http.StatusServiceUnavailable, "Classifier is not configured", &response.Problem{
			Code:            "classifier_not_configured",
			Details:         err.Error(),
			Troubleshooting: []string{"Set the HF_TOKEN environment variable and restart the service"},
		})
	case errors.As(err, &clsErr):
		response.ProblemError(w, http.StatusBadGateway, "Classifier request failed", &response.Problem{
			Code:           "classifier_error",
			Details:        clsErr.Error(),
			VendorStatus:   clsErr.StatusCode,
			VendorResponse: vendorBody(clsErr.Body),
		})
	case errors.Is(err, classifier.ErrUnrecognizedResponse), errors.Is(err, classifier.ErrResponseTooLarge):
		response.ProblemError(w, http.StatusBadGateway, "Classifier response not understood", &response.Problem{
			Code:    "classifier_bad_response",
			Details: err.Error(),
		})
	default:
		response.InternalServerError(w, fallback)
	}
}

// Analyze handles image uploads
// @Summary Classify a medical image
// @Tags Analyses
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param disease path string true "skin, bone, lung or eye"
// @Param image formData file true "JPEG or PNG image"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 413 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /analyses/{disease} [post]
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	disease := mux.Vars(r)["disease"]
	if !classifier.ValidDisease(disease) {
		response.BadRequest(w, "Unsupported disease type")
		return
	}
	if !isMultipart(r) {
		response.BadRequest(w, "Request must be multipart/form-data with an image field")
		return
	}

	image, err := readFormFile(w, r, "image", h.maxUploadBytes)
	if err != nil {
		if errors.Is(err, errFileTooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "Image is too large", nil)
			return
		}
		response.Error(w, http.StatusBadRequest, "Invalid multipart form", nil)
		return
	}
	if image == nil {
		response.BadRequest(w, "image file is required")
		return
	}

	analysis, err := h.analysisUsecase.Analyze(r.Context(), userID, disease, image)
	if err != nil {
		writeAnalysisError(w, err, "Failed to analyze image")
		return
	}

	response.Success(w, http.StatusCreated, "Analysis completed", analysis)
}

func (h *AnalysisHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	query := r.URL.Query()
	req := dto.AnalysisListRequest{
		Page:        queryInt(r, "page", 1),
		Limit:       queryInt(r, "limit", usecase.DefaultPageLimit),
		DiseaseType: query.Get("diseaseType"),
	}
	if req.DiseaseType == "" {
		req.DiseaseType = query.Get("disease_type")
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	analyses, total, err := h.analysisUsecase.List(r.Context(), userID, &req)
	if err != nil {
		writeAnalysisError(w, err, "Failed to get analyses")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Analyses retrieved successfully", analyses, response.NewMeta(req.Page, req.Limit, total))
}

func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid analysis ID", nil)
		return
	}

	analysis, err := h.analysisUsecase.Get(r.Context(), userID, id)
	if err != nil {
		writeAnalysisError(w, err, "Failed to get analysis")
		return
	}

	response.Success(w, http.StatusOK, "Analysis retrieved successfully", analysis)
}

func (h *AnalysisHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	stats, err := h.analysisUsecase.Stats(r.Context(), userID)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		response.InternalServerError(w, "Failed to get analysis stats")
		return
	}

	response.Success(w, http.StatusOK, "Analysis stats retrieved successfully", stats)
}
