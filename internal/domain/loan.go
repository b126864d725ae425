package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LoanCategory string

const (
	LoanCategoryPersonal LoanCategory = "personal"
	LoanCategoryCar      LoanCategory = "car"
	LoanCategoryStudy    LoanCategory = "study"
	LoanCategoryHome     LoanCategory = "home"
)

func (c LoanCategory) IsValid() bool {
	switch c {
	case LoanCategoryPersonal, LoanCategoryCar, LoanCategoryStudy, LoanCategoryHome:
		return true
	}
	return false
}

type LoanStatus string

const (
	LoanStatusOngoing   LoanStatus = "ongoing"
	LoanStatusCompleted LoanStatus = "completed"
)

type Loan struct {
	ID              uuid.UUID
	AccountID       uuid.UUID
	Category        LoanCategory
	Status          LoanStatus
	Principal       int64
	TermYears       int
	InterestRate    decimal.Decimal // annual rate, e.g. 0.08
	MonthlyPayment  int64
	TotalPayment    int64
	RemainingAmount int64
	CreatedAt       time.Time
}

// Installments is the amortization term in months.
func (l *Loan) Installments() int {
	return l.TermYears * 12
}
