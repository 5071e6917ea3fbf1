// Package apperror maps validation failures to field-level messages.
package apperror

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"Mansoor88-6/timeclock/internal/models"
)

var (
	errRequired        = errors.New("is required")
	errUnknownKind     = errors.New("must be one of clock_in, clock_out, lunch_out, lunch_in")
	errInvalidDate     = errors.New("must be a date in YYYY-MM-DD format")
	errNameWithoutID   = errors.New("is required when an id is given")
	errTooLong         = errors.New("is too long")
	errInvalidLatitude = errors.New("must be between -90 and 90")
	errInvalidLong     = errors.New("must be between -180 and 180")
	errUnknownFormat   = errors.New("must be one of csv, json, report")
	errUnknownPeriod   = errors.New("must be one of week, month, all")
)

var customErrors = map[string]error{
	"RecordClockEventRequest.Kind.required":          errRequired,
	"RecordClockEventRequest.Kind.eventkind":         errUnknownKind,
	"RecordClockEventRequest.Timestamp.required":     errRequired,
	"RecordClockEventRequest.Date.datetime":          errInvalidDate,
	"RecordClockEventRequest.JobID.max":              errTooLong,
	"RecordClockEventRequest.JobName.required_with":  errNameWithoutID,
	"RecordClockEventRequest.JobName.max":            errTooLong,
	"RecordClockEventRequest.TaskID.max":             errTooLong,
	"RecordClockEventRequest.TaskName.required_with": errNameWithoutID,
	"RecordClockEventRequest.TaskName.max":           errTooLong,
	"RecordClockEventRequest.Latitude.gte":           errInvalidLatitude,
	"RecordClockEventRequest.Latitude.lte":           errInvalidLatitude,
	"RecordClockEventRequest.Longitude.gte":          errInvalidLong,
	"RecordClockEventRequest.Longitude.lte":          errInvalidLong,
	"RecordClockEventRequest.Address.max":            errTooLong,
	"ExportRequest.Format.required":                  errRequired,
	"ExportRequest.Format.oneof":                     errUnknownFormat,
	"ExportRequest.Period.oneof":                     errUnknownPeriod,
	"ExportRequest.Query.max":                        errTooLong,
}

// EventKindValidator accepts only the four built-in clock actions.
var EventKindValidator = func(fl validator.FieldLevel) bool {
	return models.EventKind(fl.Field().String()).Known()
}

// NewValidator returns a validator with the custom rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("eventkind", EventKindValidator); err != nil {
		panic(fmt.Sprintf("register eventkind validator: %v", err))
	}
	return v
}

// CustomValidationError converts validator errors into a list of
// field-to-message maps. Other errors produce an empty list.
func CustomValidationError(err error) []map[string]string {
	errList := make([]map[string]string, 0)

	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		for _, e := range validationErr {
			field := e.StructNamespace()
			key := field + "." + e.Tag()

			errMsg := fmt.Sprintf("%s is invalid", field)
			if v, ok := customErrors[key]; ok {
				errMsg = v.Error()
			}

			errList = append(errList, map[string]string{e.Field(): errMsg})
		}
	}
	return errList
}
