package apperror

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Mansoor88-6/timeclock/internal/models"
)

func TestCustomValidationError_RecordRequest(t *testing.T) {
	v := NewValidator()
	lat := 91.0

	err := v.Struct(models.RecordClockEventRequest{
		Kind:      "coffee_break",
		Timestamp: time.Now(),
		Date:      "14/10/2026",
		JobID:     "job-1",
		Latitude:  &lat,
	})
	require.Error(t, err)

	got := CustomValidationError(err)
	assert.ElementsMatch(t, []map[string]string{
		{"Kind": errUnknownKind.Error()},
		{"Date": errInvalidDate.Error()},
		{"JobName": errNameWithoutID.Error()},
		{"Latitude": errInvalidLatitude.Error()},
	}, got)
}

func TestNewValidator_AcceptsKnownKinds(t *testing.T) {
	v := NewValidator()
	for _, k := range []models.EventKind{models.KindClockIn, models.KindClockOut, models.KindLunchOut, models.KindLunchIn} {
		err := v.Struct(models.RecordClockEventRequest{Kind: k, Timestamp: time.Now()})
		assert.NoError(t, err, k)
	}
}

func TestCustomValidationError_ExportRequest(t *testing.T) {
	err := NewValidator().Struct(models.ExportRequest{Format: "pdf", Period: "year"})
	require.Error(t, err)

	assert.ElementsMatch(t, []map[string]string{
		{"Format": errUnknownFormat.Error()},
		{"Period": errUnknownPeriod.Error()},
	}, CustomValidationError(err))
}

func TestCustomValidationError_NonValidationError(t *testing.T) {
	assert.Empty(t, CustomValidationError(errors.New("boom")))
}
