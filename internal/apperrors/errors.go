package apperrors

import (
	"errors"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates a missing or invalid session.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller is authenticated but not allowed to perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates a stored aggregate changed between read and write.
var ErrConflict = errors.New("version conflict")

// ErrInvalidTransition indicates a filing step change that is not the next step in the workflow.
var ErrInvalidTransition = errors.New("invalid filing transition")

// ErrPaymentRequired indicates a transition is gated by a payment that has not been made.
var ErrPaymentRequired = errors.New("payment required")

// ErrDocumentsRequired indicates the calculation step was requested before any document was uploaded.
var ErrDocumentsRequired = errors.New("at least one document is required")

// ErrGatewayNotConfigured indicates the payment gateway has no credentials.
var ErrGatewayNotConfigured = errors.New("payment gateway not configured")

// ErrPaymentFailed indicates the gateway rejected the operation (card declined, invalid session, ...).
var ErrPaymentFailed = errors.New("payment failed")

// AppError carries an HTTP status code along with a client-safe message.
type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError with the given status code.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrValidation)
}

func NewUnauthorizedError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, ErrUnauthorized)
}

func NewInternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, message, nil)
}

// StatusCode maps an error from the service layer onto an HTTP status code.
func StatusCode(err error) int {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr) && appErr.Code != 0:
		return appErr.Code
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrPaymentRequired),
		errors.Is(err, ErrDocumentsRequired):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrPaymentFailed):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
