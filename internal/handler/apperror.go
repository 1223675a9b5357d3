package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrForbidden          = &AppError{http.StatusForbidden, "FORBIDDEN", "You do not have access to this resource"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidAmount          = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrInvalidMonth           = &AppError{http.StatusBadRequest, "INVALID_MONTH", "Month must be formatted YYYY-MM"}
	ErrInvalidTransition      = &AppError{http.StatusConflict, "INVALID_TRANSITION", "Operation not allowed in current state"}
	ErrMissingDocuments       = &AppError{http.StatusUnprocessableEntity, "MISSING_DOCUMENTS", "Mandatory documents are missing"}
	ErrApplicationExists      = &AppError{http.StatusConflict, "APPLICATION_ALREADY_EXISTS", "Startup already has an application"}
	ErrApplicationNotApproved = &AppError{http.StatusUnprocessableEntity, "APPLICATION_NOT_APPROVED", "Application is not approved"}
	ErrTierNotSelected        = &AppError{http.StatusUnprocessableEntity, "TIER_NOT_SELECTED", "Round has no committed tier selection"}
	ErrTierNotFound           = &AppError{http.StatusUnprocessableEntity, "TIER_NOT_FOUND", "Tier not proposed for this round"}
	ErrTierAlreadySelected    = &AppError{http.StatusConflict, "TIER_ALREADY_SELECTED", "Tier selection is one-time"}
	ErrRoundNotPublished      = &AppError{http.StatusUnprocessableEntity, "ROUND_NOT_PUBLISHED", "Round is not open for investment"}
	ErrRoundFullySubscribed   = &AppError{http.StatusUnprocessableEntity, "ROUND_FULLY_SUBSCRIBED", "Round cannot accept that amount"}
	ErrCountryNotSupported    = &AppError{http.StatusUnprocessableEntity, "COUNTRY_NOT_SUPPORTED", "Country is not supported"}
	ErrDuplicateReport        = &AppError{http.StatusConflict, "DUPLICATE_REPORT", "Revenue already reported for this month"}
	ErrContractNotActive      = &AppError{http.StatusUnprocessableEntity, "CONTRACT_NOT_ACTIVE", "Contract is not active"}
	ErrMinHoldNotMet          = &AppError{http.StatusUnprocessableEntity, "MIN_HOLD_NOT_MET", "Minimum holding period not satisfied"}
	ErrAlreadySettled         = &AppError{http.StatusConflict, "ALREADY_SETTLED", "Exit request is no longer pending"}
	ErrExitPending            = &AppError{http.StatusConflict, "EXIT_PENDING", "Contract already has a pending exit request"}
	ErrEmailExists            = &AppError{http.StatusConflict, "EMAIL_ALREADY_EXISTS", "Email already registered"}

	ErrMissingIdempotencyKey = &AppError{http.StatusBadRequest, "MISSING_IDEMPOTENCY_KEY", "Idempotency-Key header is required"}
	ErrIdempotencyConflict   = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
)
