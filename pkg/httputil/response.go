package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/INOCcent-afk/productly-server/pkg/errors"
	"github.com/INOCcent-afk/productly-server/pkg/logger"
	"github.com/INOCcent-afk/productly-server/pkg/validator"
)

// Response is the standard success envelope: {"status":"success","data":{...}}.
// Results carries the row count on listing endpoints.
type Response struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorEnvelope is the standard error envelope.
type ErrorEnvelope struct {
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error"`
}

// ErrorResponse represents an error in the standard response format.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Success builds a success envelope around the given data.
func Success(data any) Response {
	return Response{Status: "success", Data: data}
}

// SuccessWithResults builds a success envelope with a results count,
// used by listing endpoints.
func SuccessWithResults(count int, data any) Response {
	return Response{Status: "success", Results: &count, Data: data}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a standardized error response based on the error type.
// AppError maps directly to its status; wrapped sentinels map through
// apperrors.HTTPStatus; anything else is a 500 with a generic message.
// Internal errors are logged with the request-scoped logger when present.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	requestID := logger.CorrelationIDFromContext(r.Context())

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status == http.StatusInternalServerError {
			logInternal(r, l, err)
		}
		WriteJSON(w, appErr.Status, ErrorEnvelope{
			Status: "error",
			Error:  &ErrorResponse{Code: appErr.Code, Message: appErr.Message, RequestID: requestID},
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code = "NOT_FOUND"
		message = "resource not found"
	case errors.Is(err, apperrors.ErrAlreadyExists):
		code = "ALREADY_EXISTS"
		message = "resource already exists"
	case errors.Is(err, apperrors.ErrInvalidInput):
		code = "INVALID_INPUT"
		message = err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		code = "UNAUTHORIZED"
		message = "unauthorized"
	case errors.Is(err, apperrors.ErrForbidden):
		code = "FORBIDDEN"
		message = "forbidden"
	}

	if status == http.StatusInternalServerError {
		logInternal(r, l, err)
	}

	WriteJSON(w, status, ErrorEnvelope{
		Status: "error",
		Error:  &ErrorResponse{Code: code, Message: message, RequestID: requestID},
	})
}

func logInternal(r *http.Request, l *slog.Logger, err error) {
	l.ErrorContext(r.Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
}

// WriteValidationError writes a standardized validation error response with
// field-level details when the error comes from the validator package.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, ErrorEnvelope{
			Status: "error",
			Error: &ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, ErrorEnvelope{
		Status: "error",
		Error:  &ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}
