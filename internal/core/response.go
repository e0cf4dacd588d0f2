// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(body)
}

func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// JSON writes a success envelope with an explicit status.
func JSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func Created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: data})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func BadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, envelope{
		Error: &errorBody{Code: "BAD_REQUEST", Message: message},
	})
}

func Unauthorized(w http.ResponseWriter, message string) {
	JSONError(w, UnauthorizedError(message))
}

func Forbidden(w http.ResponseWriter, message string) {
	JSONError(w, ForbiddenError(message))
}

func NotFound(w http.ResponseWriter, resource string) {
	JSONError(w, NotFoundError(resource))
}

// UnprocessableEntity writes a 422 carrying the per-field violation map.
func UnprocessableEntity(w http.ResponseWriter, fields map[string][]string) {
	JSONError(w, ValidationError(fields))
}

// JSONError resolves any error to its transport form. AppErrors keep their
// message; bare sentinels get a generic one for their status.
func JSONError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Status, envelope{
			Error: &errorBody{
				Code:    appErr.Code,
				Message: appErr.Message,
				Fields:  appErr.Fields,
			},
		})
		return
	}

	status := StatusForError(err)
	if status == http.StatusInternalServerError {
		InternalServerError(w, err)
		return
	}

	writeJSON(w, status, envelope{
		Error: &errorBody{
			Code:    http.StatusText(status),
			Message: http.StatusText(status),
		},
	})
}

// InternalServerError logs the cause and suppresses it from the client.
func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("unhandled error", "error", err)
	writeJSON(w, http.StatusInternalServerError, envelope{
		Error: &errorBody{
			Code:    "INTERNAL_ERROR",
			Message: "an unexpected error occurred",
		},
	})
}

// FormatValidationError turns validator violations into a field -> messages
// map keyed by the struct's json field names (lowercased field as fallback).
func FormatValidationError(err error) map[string][]string {
	fields := make(map[string][]string)

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		fields["_"] = []string{"invalid request"}
		return fields
	}

	for _, fieldErr := range validationErrs {
		name := fieldErr.Field()
		fields[name] = append(fields[name], validationMessage(fieldErr))
	}

	return fields
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	default:
		return "is invalid"
	}
}
