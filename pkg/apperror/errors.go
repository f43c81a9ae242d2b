package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Escrow Lifecycle (ESC) ----

func ErrEscrowNotFound(transactionID string) *AppError {
	return New("ESC_001", fmt.Sprintf("Escrow transaction %s not found", transactionID), http.StatusNotFound)
}

// ErrInvalidTransition reports an operation attempted from a status that does
// not permit it. The attempted transition is named in the message.
func ErrInvalidTransition(from, to string) *AppError {
	return New("ESC_002", fmt.Sprintf("Illegal escrow transition %s -> %s", from, to), http.StatusUnprocessableEntity)
}

func ErrDepositAmountMismatch(expected, actual int64) *AppError {
	return New("ESC_003", fmt.Sprintf("Deposit amount %d does not match escrow amount %d", actual, expected), http.StatusUnprocessableEntity)
}

func ErrSettlementExists(transactionID string) *AppError {
	return New("ESC_004", fmt.Sprintf("Settlement already exists for transaction %s", transactionID), http.StatusConflict)
}

func ErrSettlementNotFound(transactionID string) *AppError {
	return New("ESC_005", fmt.Sprintf("No settlement found for transaction %s", transactionID), http.StatusNotFound)
}

func ErrDisputeNotFound(disputeID string) *AppError {
	return New("ESC_006", fmt.Sprintf("Dispute %s not found", disputeID), http.StatusNotFound)
}

func ErrDisputeAlreadyResolved(disputeID string) *AppError {
	return New("ESC_007", fmt.Sprintf("Dispute %s is already resolved", disputeID), http.StatusConflict)
}

// ErrConcurrentUpdate reports a mutation that raced another writer and lost.
// Retryable: the caller should re-read the escrow and decide again.
func ErrConcurrentUpdate(transactionID string) *AppError {
	return New("ESC_008", fmt.Sprintf("Concurrent update on transaction %s, retry", transactionID), http.StatusConflict)
}

func ErrInvalidAmount() *AppError {
	return New("ESC_009", "Invalid amount", http.StatusBadRequest)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("ESC_010", message, http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_004", "Operation requires admin role", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
