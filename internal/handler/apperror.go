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
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInsufficientFunds    = &AppError{http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", "Insufficient funds"}
	ErrLimitExceeded        = &AppError{http.StatusUnprocessableEntity, "DAILY_LIMIT_EXCEEDED", "Daily limit exceeded"}
	ErrSelfTransfer         = &AppError{http.StatusUnprocessableEntity, "SELF_TRANSFER_NOT_ALLOWED", "Cannot transfer to the same account"}
	ErrSameCurrency         = &AppError{http.StatusUnprocessableEntity, "SAME_CURRENCY", "Source and target currency must differ"}
	ErrAccountNotFound      = &AppError{http.StatusUnprocessableEntity, "ACCOUNT_NOT_FOUND", "Account not found"}
	ErrAccountClosed        = &AppError{http.StatusUnprocessableEntity, "ACCOUNT_CLOSED", "Account is closed"}
	ErrNoBalance            = &AppError{http.StatusUnprocessableEntity, "NO_BALANCE", "Account does not hold a balance"}
	ErrInvalidCurrency      = &AppError{http.StatusBadRequest, "INVALID_CURRENCY", "Invalid currency"}
	ErrInvalidAmount        = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrBelowMinimum         = &AppError{http.StatusUnprocessableEntity, "BELOW_MINIMUM", "Principal is below the minimum loan amount"}
	ErrInvalidTerm          = &AppError{http.StatusUnprocessableEntity, "INVALID_TERM", "Term is not available for this principal"}
	ErrDuplicateOngoingLoan = &AppError{http.StatusConflict, "DUPLICATE_ONGOING_LOAN", "An ongoing loan of this category already exists"}
	ErrExceedsRemaining     = &AppError{http.StatusUnprocessableEntity, "EXCEEDS_REMAINING", "Repayment exceeds the remaining loan amount"}
	ErrCustomerExists       = &AppError{http.StatusConflict, "CUSTOMER_ALREADY_EXISTS", "A customer with this email already exists"}
	ErrVersionConflict      = &AppError{http.StatusConflict, "VERSION_CONFLICT", "Resource was modified concurrently, please retry"}
)
