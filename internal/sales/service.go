package sales

import (
	"context"
	"fmt"

	"github.com/baxeinwear/storefront-backend/internal/users"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
)

// Service builds merchant sales reports.
type Service interface {
	History(ctx context.Context, query HistoryQuery) (*History, error)
}

type service struct {
	repo     *Repository
	accounts users.AccountLoader
}

// NewService constructs the sales service.
func NewService(repo *Repository, accounts users.AccountLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account loader required")
	}
	return &service{repo: repo, accounts: accounts}, nil
}

func (s *service) History(ctx context.Context, query HistoryQuery) (*History, error) {
	merchant, err := users.RequireMerchant(ctx, s.accounts, query.UserID)
	if err != nil {
		return nil, err
	}
	orders, err := s.repo.OrdersForMerchant(ctx, merchant.ID, query.Range)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sales history")
	}
	return Aggregate(orders, query.CategoryID), nil
}
