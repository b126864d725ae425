package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sunshinebank/sunshine-ledger/internal/auth"
	"github.com/sunshinebank/sunshine-ledger/internal/domain"
)

type accountGetter interface {
	GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
}

func authedCustomer(r *http.Request) (uuid.UUID, *AppError) {
	customerID, ok := auth.CustomerIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, ErrMissingToken
	}
	return customerID, nil
}

// ownedAccount resolves the {id} path segment to an account owned by the
// authenticated customer. Accounts belonging to someone else look like
// they do not exist.
func ownedAccount(r *http.Request, accounts accountGetter) (*domain.Account, *AppError) {
	customerID, appErr := authedCustomer(r)
	if appErr != nil {
		return nil, appErr
	}

	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, ErrResourceNotFound
	}

	account, err := accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, ErrInternalError
	}

	if account.CustomerID != customerID {
		return nil, ErrResourceNotFound
	}

	return account, nil
}
