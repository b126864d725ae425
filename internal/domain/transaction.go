package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionKind string

const (
	TransactionKindDeposit        TransactionKind = "deposit"
	TransactionKindWithdraw       TransactionKind = "withdraw"
	TransactionKindTransfer       TransactionKind = "transfer"
	TransactionKindConversion     TransactionKind = "conversion"
	TransactionKindLoanRepayment  TransactionKind = "loan_repayment"
	TransactionKindPolicyPurchase TransactionKind = "policy_purchase"
	TransactionKindPolicyCancel   TransactionKind = "policy_cancel"
)

// LimitedKinds are the transaction kinds netted against daily ceilings.
var LimitedKinds = []TransactionKind{TransactionKindWithdraw, TransactionKindTransfer}

// Transaction is one append-only ledger entry. Amounts holds only the
// currencies touched by the entry; for conversions the source leg is
// negative and the credited leg positive, for every other kind amounts
// are positive magnitudes and the kind conveys direction.
//
// Seq is assigned by the store on insert and breaks timestamp ties in
// chronological queries.
type Transaction struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Kind        TransactionKind
	Amounts     Balance
	FeeAmount   int64
	FeeCurrency Currency
	Seq         int64
	CreatedAt   time.Time
}
