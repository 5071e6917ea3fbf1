package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"Mansoor88-6/timeclock/internal/apperror"
	"Mansoor88-6/timeclock/internal/approval"
	"Mansoor88-6/timeclock/internal/client"
	"Mansoor88-6/timeclock/internal/models"
	"Mansoor88-6/timeclock/internal/service"
	"Mansoor88-6/timeclock/internal/timecard"
)

var wednesday = civil.Date{Year: 2026, Month: time.October, Day: 14}

type mockService struct {
	query     service.Query
	date      civil.Date
	exportReq models.ExportRequest
	recordReq models.RecordClockEventRequest
	clockCtx  models.ClockContext
	err       error
	submitErr error
	timecard  *models.Timecard
	day       models.DayTimecard
	exportRes models.ExportResult
	recorded  models.ClockEvent
}

func (m *mockService) Load(_ context.Context, q service.Query) (*models.Timecard, error) {
	m.query = q
	return m.timecard, m.err
}

func (m *mockService) Day(_ context.Context, d civil.Date) (models.DayTimecard, error) {
	m.date = d
	return m.day, m.err
}

func (m *mockService) Submit(_ context.Context, d civil.Date) (models.DayTimecard, error) {
	m.date = d
	return m.day, m.submitErr
}

func (m *mockService) Export(_ context.Context, req models.ExportRequest) (models.ExportResult, error) {
	m.exportReq = req
	return m.exportRes, m.err
}

func (m *mockService) Record(_ context.Context, req models.RecordClockEventRequest) (models.ClockEvent, error) {
	m.recordReq = req
	if m.err != nil {
		return models.ClockEvent{}, m.err
	}
	// validate like the real service so payload errors surface as 400s
	if err := apperror.NewValidator().Struct(req); err != nil {
		return models.ClockEvent{}, err
	}
	return m.recorded, nil
}

func (m *mockService) ClockContext(context.Context) (models.ClockContext, error) {
	return m.clockCtx, m.err
}

func (m *mockService) SetClockContext(_ context.Context, cc models.ClockContext) (models.ClockContext, error) {
	m.clockCtx = cc
	return cc, m.err
}

func serve(t *testing.T, svc *mockService, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewTimecardHandler(svc, zaptest.NewLogger(t))

	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Get("/timecard", h.GetTimecard)
	r.Get("/days/{date}", h.GetDay)
	r.Post("/days/{date}/submit", h.SubmitDay)
	r.Post("/export", h.Export)
	r.Post("/clock-events", h.RecordEvent)
	r.Get("/clock-context", h.GetClockContext)
	r.Put("/clock-context", h.PutClockContext)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(t, &mockService{}, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetTimecard(t *testing.T) {
	svc := &mockService{timecard: &models.Timecard{
		Period: "month",
		Days:   []models.DayTimecard{{Date: wednesday, Hours: models.HoursBreakdown{Total: 9, Regular: 8, Overtime: 1}}},
		Totals: models.HoursBreakdown{Total: 9, Regular: 8, Overtime: 1},
	}}

	rec := serve(t, svc, http.MethodGet, "/timecard?period=month&q=harbor", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.Query{Period: "month", Search: "harbor"}, svc.query)

	var got models.Timecard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 9.0, got.Totals.Total)
	require.Len(t, got.Days, 1)
	assert.Equal(t, wednesday, got.Days[0].Date)
}

func TestGetTimecard_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid period", fmt.Errorf("%w: %q", timecard.ErrInvalidPeriod, "year"), http.StatusBadRequest},
		{"fetch failure", &service.LoadError{Err: errors.New("timeout")}, http.StatusBadGateway},
		{"backend rejected", &client.BadRequestError{Message: "bad event", StatusCode: 400}, http.StatusBadGateway},
		{"backend auth", &client.AuthError{Message: "invalid api key", StatusCode: 401}, http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &mockService{err: tt.err}, http.MethodGet, "/timecard", "")
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestGetDay(t *testing.T) {
	svc := &mockService{day: models.DayTimecard{Date: wednesday, Status: models.StatusDraft}}

	rec := serve(t, svc, http.MethodGet, "/days/2026-10-14", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, wednesday, svc.date)

	rec = serve(t, svc, http.MethodGet, "/days/14-10-2026", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitDay(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"submitted", nil, http.StatusOK},
		{"already submitted", fmt.Errorf("submit: %w", timecard.ErrAlreadySubmitted), http.StatusConflict},
		{"in flight", approval.ErrSubmissionInFlight, http.StatusConflict},
		{"no events", timecard.ErrNoEvents, http.StatusUnprocessableEntity},
		{"queued", fmt.Errorf("%w: backend down", service.ErrSubmissionQueued), http.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{submitErr: tt.err, day: models.DayTimecard{Date: wednesday, Status: models.StatusSubmitted}}
			rec := serve(t, svc, http.MethodPost, "/days/2026-10-14/submit", "")
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, wednesday, svc.date)
		})
	}
}

func TestExport(t *testing.T) {
	svc := &mockService{exportRes: models.ExportResult{Format: "csv", Count: 3, Location: "/tmp/timecard.csv"}}

	rec := serve(t, svc, http.MethodPost, "/export", `{"format":"csv","period":"all"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.ExportRequest{Format: "csv", Period: "all"}, svc.exportReq)
	assert.JSONEq(t, `{"format":"csv","count":3,"location":"/tmp/timecard.csv"}`, rec.Body.String())

	svc.err = &service.ExportError{Reason: "disk full"}
	rec = serve(t, svc, http.MethodPost, "/export", `{"format":"csv"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"disk full"}`, rec.Body.String())

	rec = serve(t, svc, http.MethodPost, "/export", `{"format":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordEvent(t *testing.T) {
	svc := &mockService{recorded: models.ClockEvent{ID: "e1", Date: wednesday, Kind: models.KindClockIn, Status: models.StatusDraft}}

	rec := serve(t, svc, http.MethodPost, "/clock-events", `{"kind":"clock_in","timestamp":"2026-10-14T08:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.KindClockIn, svc.recordReq.Kind)

	rec = serve(t, svc, http.MethodPost, "/clock-events", `{"kind":"nap","timestamp":"2026-10-14T08:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `[{"Kind":"must be one of clock_in, clock_out, lunch_out, lunch_in"}]`, rec.Body.String())

	svc.err = service.ErrIncompleteLocation
	rec = serve(t, svc, http.MethodPost, "/clock-events", `{"kind":"clock_in","timestamp":"2026-10-14T08:00:00Z","latitude":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClockContext(t *testing.T) {
	svc := &mockService{}

	rec := serve(t, svc, http.MethodPut, "/clock-context", `{"job_id":"j1","job_name":"Harbor Bridge"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ClockContext{JobID: "j1", JobName: "Harbor Bridge"}, svc.clockCtx)

	rec = serve(t, svc, http.MethodGet, "/clock-context", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"job_id":"j1","job_name":"Harbor Bridge"}`, rec.Body.String())
}
