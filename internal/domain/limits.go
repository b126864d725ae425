package domain

import "github.com/google/uuid"

// Limits holds per-currency daily ceilings for one savings or FX account.
// Remaining headroom is never stored; it is derived from the day's ledger
// entries on every check.
type Limits struct {
	AccountID       uuid.UUID
	WithdrawCeiling Balance
	TransferCeiling Balance
}

type LimitScope string

const (
	LimitScopeWithdraw LimitScope = "withdraw"
	LimitScopeTransfer LimitScope = "transfer"
)

func (s LimitScope) IsValid() bool {
	return s == LimitScopeWithdraw || s == LimitScopeTransfer
}
