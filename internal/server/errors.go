package server

import (
	"errors"

	"github.com/localrivet/vocabprep/internal/errortypes"
)

// ErrorResponse is the error part of a tool response
type ErrorResponse struct {
	Status  string                 `json:"status"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error response codes
const (
	StatusCodeValidationError = "VALIDATION_ERROR"
	StatusCodeIOError         = "IO_ERROR"
	StatusCodeFormatError     = "FORMAT_ERROR"
	StatusCodeConfigError     = "CONFIG_ERROR"
	StatusCodeInternalError   = "INTERNAL_ERROR"
	StatusCodeUnknownError    = "UNKNOWN_ERROR"
)

// errorToResponse converts an error to a standardized ErrorResponse
func errorToResponse(err error) ErrorResponse {
	code := StatusCodeUnknownError
	var details map[string]interface{}

	var appErr *errortypes.AppError
	if errors.As(err, &appErr) {
		details = appErr.Fields

		switch appErr.Type {
		case errortypes.ErrorTypeValidation:
			code = StatusCodeValidationError
		case errortypes.ErrorTypeIO:
			code = StatusCodeIOError
		case errortypes.ErrorTypeFormat:
			code = StatusCodeFormatError
		case errortypes.ErrorTypeConfig:
			code = StatusCodeConfigError
		case errortypes.ErrorTypeInternal:
			code = StatusCodeInternalError
		}
	}

	return ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: err.Error(),
		Details: details,
	}
}
