// Package handler contains the HTTP handlers for the timecard API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"Mansoor88-6/timeclock/internal/apperror"
	"Mansoor88-6/timeclock/internal/approval"
	"Mansoor88-6/timeclock/internal/client"
	"Mansoor88-6/timeclock/internal/export"
	"Mansoor88-6/timeclock/internal/models"
	"Mansoor88-6/timeclock/internal/service"
	"Mansoor88-6/timeclock/internal/timecard"
)

// TimecardService is the subset of service.TimecardService the API exposes.
type TimecardService interface {
	Load(ctx context.Context, q service.Query) (*models.Timecard, error)
	Day(ctx context.Context, date civil.Date) (models.DayTimecard, error)
	Submit(ctx context.Context, date civil.Date) (models.DayTimecard, error)
	Export(ctx context.Context, req models.ExportRequest) (models.ExportResult, error)
	Record(ctx context.Context, req models.RecordClockEventRequest) (models.ClockEvent, error)
	ClockContext(ctx context.Context) (models.ClockContext, error)
	SetClockContext(ctx context.Context, cc models.ClockContext) (models.ClockContext, error)
}

type TimecardHandler struct {
	service TimecardService
	logger  *zap.Logger
}

func NewTimecardHandler(service TimecardService, logger *zap.Logger) *TimecardHandler {
	return &TimecardHandler{
		service: service,
		logger:  logger,
	}
}

// Health is a simple liveness check.
func (h *TimecardHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetTimecard serves GET /api/v1/timecard?period=week|month|all&q=search.
func (h *TimecardHandler) GetTimecard(w http.ResponseWriter, r *http.Request) {
	tc, err := h.service.Load(r.Context(), service.Query{
		Period: r.URL.Query().Get("period"),
		Search: r.URL.Query().Get("q"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tc)
}

func (h *TimecardHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	day, err := h.service.Day(r.Context(), date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

func (h *TimecardHandler) SubmitDay(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	day, err := h.service.Submit(r.Context(), date)
	if errors.Is(err, service.ErrSubmissionQueued) {
		h.logger.Warn("Submission queued for retry", zap.String("date", date.String()), zap.Error(err))
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "date": date.String()})
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

func (h *TimecardHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req models.ExportRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.Export(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *TimecardHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req models.RecordClockEventRequest
	if !h.decode(w, r, &req) {
		return
	}
	event, err := h.service.Record(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (h *TimecardHandler) GetClockContext(w http.ResponseWriter, r *http.Request) {
	cc, err := h.service.ClockContext(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cc)
}

func (h *TimecardHandler) PutClockContext(w http.ResponseWriter, r *http.Request) {
	var cc models.ClockContext
	if !h.decode(w, r, &cc) {
		return
	}
	saved, err := h.service.SetClockContext(r.Context(), cc)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *TimecardHandler) dateParam(w http.ResponseWriter, r *http.Request) (civil.Date, bool) {
	date, err := timecard.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return civil.Date{}, false
	}
	return date, true
}

func (h *TimecardHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.logger.Error("Failed to decode request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
		return false
	}
	return true
}

// writeError maps service errors to status codes.
func (h *TimecardHandler) writeError(w http.ResponseWriter, err error) {
	var (
		validationErr validator.ValidationErrors
		loadErr       *service.LoadError
		exportErr     *service.ExportError
		badReqErr     *client.BadRequestError
		authErr       *client.AuthError
	)

	switch {
	case errors.As(err, &validationErr):
		h.logger.Warn("Validation failed", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, apperror.CustomValidationError(err))
	case errors.Is(err, timecard.ErrInvalidPeriod),
		errors.Is(err, timecard.ErrInvalidDate),
		errors.Is(err, service.ErrIncompleteLocation),
		errors.Is(err, export.ErrUnknownFormat):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, timecard.ErrAlreadySubmitted),
		errors.Is(err, approval.ErrSubmissionInFlight):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, timecard.ErrNoEvents):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.As(err, &loadErr):
		h.logger.Error("Timecard load failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not load clock events"})
	case errors.As(err, &badReqErr), errors.As(err, &authErr):
		h.logger.Error("Backend rejected request", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	case errors.As(err, &exportErr):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": exportErr.Reason})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
