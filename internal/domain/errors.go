package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidCurrency      = errors.New("invalid currency")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrLimitExceeded        = errors.New("daily limit exceeded")
	ErrSameAccount          = errors.New("cannot transfer to same account")
	ErrSameCurrency         = errors.New("cannot convert to same currency")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountClosed        = errors.New("account closed")
	ErrBelowMinimum         = errors.New("amount below minimum")
	ErrInvalidTerm          = errors.New("invalid loan term")
	ErrDuplicateOngoingLoan = errors.New("ongoing loan of this category already exists")
	ErrExceedsRemaining     = errors.New("payment exceeds remaining loan amount")
	ErrNoBalance            = errors.New("account kind carries no balance")
	ErrVersionConflict      = errors.New("optimistic lock conflict")
	ErrCustomerExists       = errors.New("customer already exists for this email")
)
