package users

import (
	"context"

	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

// AccountLoader resolves the acting user of a request.
type AccountLoader interface {
	LoadAccount(ctx context.Context, userID uuid.UUID) (*Account, error)
}

// RequireCustomer loads userID and fails with 403 unless it is a customer.
func RequireCustomer(ctx context.Context, loader AccountLoader, userID uuid.UUID) (*models.Customer, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "usuarioId is required")
	}
	account, err := loader.LoadAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	customer, ok := account.Customer()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only customers can perform this action")
	}
	return customer, nil
}

// RequireMerchant loads userID and fails with 403 unless it is a merchant.
func RequireMerchant(ctx context.Context, loader AccountLoader, userID uuid.UUID) (*models.Merchant, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "usuarioId is required")
	}
	account, err := loader.LoadAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	merchant, ok := account.Merchant()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only merchants can perform this action")
	}
	return merchant, nil
}
