package domain

import (
	"time"

	"github.com/google/uuid"
)

type AccountKind string

const (
	AccountKindSavings    AccountKind = "savings"
	AccountKindFX         AccountKind = "fx"
	AccountKindLoan       AccountKind = "loan"
	AccountKindCreditCard AccountKind = "credit_card"
	AccountKindInsurance  AccountKind = "insurance"
)

func (k AccountKind) IsValid() bool {
	switch k {
	case AccountKindSavings, AccountKindFX, AccountKindLoan, AccountKindCreditCard, AccountKindInsurance:
		return true
	}
	return false
}

// HasBalance reports whether accounts of this kind carry a monetary balance.
// Loan, credit card and insurance accounts hold kind-specific state instead.
func (k AccountKind) HasBalance() bool {
	return k == AccountKindSavings || k == AccountKindFX
}

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusClosed AccountStatus = "closed"
)

type Account struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Kind       AccountKind
	Status     AccountStatus
	Balance    Balance
	Version    int64
	CreatedAt  time.Time
}
