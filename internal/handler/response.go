package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/radionhq/revshare-engine/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

func RespondDomainError(w http.ResponseWriter, err error) {
	var appErr *AppError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		appErr = ErrResourceNotFound
	case errors.Is(err, domain.ErrForbidden):
		appErr = ErrForbidden
	case errors.Is(err, domain.ErrInvalidAmount):
		appErr = ErrInvalidAmount
	case errors.Is(err, domain.ErrInvalidMonth):
		appErr = ErrInvalidMonth
	case errors.Is(err, domain.ErrInvalidTransition):
		appErr = ErrInvalidTransition
	case errors.Is(err, domain.ErrMissingDocuments):
		appErr = ErrMissingDocuments
	case errors.Is(err, domain.ErrApplicationExists):
		appErr = ErrApplicationExists
	case errors.Is(err, domain.ErrApplicationNotApproved):
		appErr = ErrApplicationNotApproved
	case errors.Is(err, domain.ErrTierNotSelected):
		appErr = ErrTierNotSelected
	case errors.Is(err, domain.ErrTierNotFound):
		appErr = ErrTierNotFound
	case errors.Is(err, domain.ErrTierAlreadySelected):
		appErr = ErrTierAlreadySelected
	case errors.Is(err, domain.ErrRoundNotPublished):
		appErr = ErrRoundNotPublished
	case errors.Is(err, domain.ErrRoundFullySubscribed):
		appErr = ErrRoundFullySubscribed
	case errors.Is(err, domain.ErrCountryNotSupported):
		appErr = ErrCountryNotSupported
	case errors.Is(err, domain.ErrDuplicateReport):
		appErr = ErrDuplicateReport
	case errors.Is(err, domain.ErrContractNotActive):
		appErr = ErrContractNotActive
	case errors.Is(err, domain.ErrMinHoldNotMet):
		appErr = ErrMinHoldNotMet
	case errors.Is(err, domain.ErrAlreadySettled):
		appErr = ErrAlreadySettled
	case errors.Is(err, domain.ErrExitPending):
		appErr = ErrExitPending
	case errors.Is(err, domain.ErrEmailExists):
		appErr = ErrEmailExists
	case errors.Is(err, domain.ErrInvalidRequest):
		appErr = ErrInvalidRequest
	default:
		slog.Error("unhandled domain error", "error", err)
		appErr = ErrInternalError
	}

	RespondAppError(w, appErr, nil)
}
