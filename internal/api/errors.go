package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/parkvault/pv-backend/internal/domain"
	"github.com/parkvault/pv-backend/internal/middleware"
)

const (
	CodeValidationError  = "VALIDATION_ERROR"
	CodeAuthRequired     = "AUTHENTICATION_REQUIRED"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeResourceNotFound = "RESOURCE_NOT_FOUND"
	CodeAlreadyEnded     = "ALREADY_ENDED"
	CodeConflict         = "CONFLICT"
	CodeRateLimited      = "RATE_LIMITED"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeInternalError    = "INTERNAL_ERROR"
)

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// additional error context
type ErrorContext map[string]interface{}

type errorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
	Context ErrorContext  `json:"context,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// builder pattern
type ErrorBuilder struct {
	Code    string
	Message string
	Details []ErrorDetail
	Context ErrorContext
}

func NewError(code, message string) *ErrorBuilder {
	return &ErrorBuilder{Code: code, Message: message}
}

func (e *ErrorBuilder) WithDetails(details []ErrorDetail) *ErrorBuilder {
	e.Details = details
	return e
}

func (e *ErrorBuilder) WithContext(context ErrorContext) *ErrorBuilder {
	e.Context = context
	return e
}

func (e *ErrorBuilder) Write(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: errorBody{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Context: e.Context,
	}})
}

// builder pattern extensions

func Unauthorized(msg string) *ErrorBuilder {
	return NewError(CodeAuthRequired, msg)
}

func PermissionDenied(msg string) *ErrorBuilder {
	return NewError(CodePermissionDenied, msg)
}

func NotFound(resource string) *ErrorBuilder {
	return NewError(CodeResourceNotFound, resource+" not found")
}

func ValidationErr(msg string, details []ErrorDetail) *ErrorBuilder {
	return NewError(CodeValidationError, msg).WithDetails(details)
}

func InternalError(msg string) *ErrorBuilder {
	return NewError(CodeInternalError, msg)
}

func ConflictErr(msg string) *ErrorBuilder {
	return NewError(CodeConflict, msg)
}

// writeServiceError maps the shared error taxonomy onto HTTP statuses.
// NotFound and PermissionDenied stay distinct so a denied caller still
// learns the resource exists once existence checks have passed.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		NotFound(nf.Kind).Write(w, http.StatusNotFound)
		return
	}

	var ua *domain.UnauthorizedError
	if errors.As(err, &ua) {
		PermissionDenied("Insufficient permissions to " + ua.Action).Write(w, http.StatusForbidden)
		return
	}

	if errors.Is(err, domain.ErrAlreadyEnded) {
		NewError(CodeAlreadyEnded, "Booking has already ended").Write(w, http.StatusConflict)
		return
	}

	var cf *domain.ConflictError
	if errors.As(err, &cf) {
		ConflictErr(cf.Error()).Write(w, http.StatusConflict)
		return
	}

	if errors.Is(err, domain.ErrUnavailable) {
		NewError(CodeUnavailable, "Service temporarily unavailable").Write(w, http.StatusServiceUnavailable)
		return
	}

	middleware.GetLoggerFromContext(r.Context()).Error("request failed", "error", err)
	InternalError("An unexpected error occurred").Write(w, http.StatusInternalServerError)
}
