package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/baxeinwear/storefront-backend/internal/cartstore"
	"github.com/baxeinwear/storefront-backend/internal/users"
	"github.com/baxeinwear/storefront-backend/internal/variants"
	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
	"github.com/baxeinwear/storefront-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SaveLocker serializes saves of the same customer. TryLock never waits.
type SaveLocker interface {
	TryLock(ctx context.Context, id string) (func(context.Context) error, bool, error)
}

// Service exposes the persisted cart of a customer.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	Save(ctx context.Context, req SaveCartRequest) (*CartDTO, error)
}

// ServiceParams bundles the cart service dependencies.
type ServiceParams struct {
	Repo     *Repository
	DB       txRunner
	Accounts users.AccountLoader
	Locker   SaveLocker
	Metrics  *metrics.StoreMetrics
	Logger   *logger.Logger
}

type service struct {
	repo     *Repository
	db       txRunner
	accounts users.AccountLoader
	locker   SaveLocker
	metrics  *metrics.StoreMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("account loader required")
	}
	return &service{
		repo:     params.Repo,
		db:       params.DB,
		accounts: params.Accounts,
		locker:   params.Locker,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	customer, err := users.RequireCustomer(ctx, s.accounts, userID)
	if err != nil {
		return nil, err
	}
	cart, err := s.repo.FindLatestByCustomer(ctx, customer.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyCart(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return NewCartDTO(cart), nil
}

func (s *service) Save(ctx context.Context, req SaveCartRequest) (*CartDTO, error) {
	customer, err := users.RequireCustomer(ctx, s.accounts, req.UserID)
	if err != nil {
		return nil, err
	}

	if s.locker != nil {
		release, acquired, err := s.locker.TryLock(ctx, customer.ID.String())
		if err != nil {
			s.metrics.CartSave(metrics.CartSaveFailed)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire cart lock")
		}
		if !acquired {
			s.metrics.CartSave(metrics.CartSaveDropped)
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a cart save is already in progress")
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil && s.logg != nil {
				s.logg.Error(ctx, "cart.lock_release_failed", err)
			}
		}()
	}

	items, removed, err := s.buildItems(ctx, req.Items)
	if err != nil {
		s.metrics.CartSave(metrics.CartSaveFailed)
		return nil, err
	}
	s.reportRemoved(ctx, removed)

	var cartID uuid.UUID
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.FindLatestByCustomer(ctx, customer.ID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			cart = &models.Cart{CustomerID: customer.ID}
			if err := repo.Create(ctx, cart); err != nil {
				return err
			}
		case err != nil:
			return err
		}
		cartID = cart.ID
		if err := repo.ReplaceItems(ctx, cart.ID, items); err != nil {
			return err
		}
		return repo.Touch(ctx, cart.ID, s.now())
	})
	if err != nil {
		s.metrics.CartSave(metrics.CartSaveFailed)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart")
	}
	s.metrics.CartSave(metrics.CartSaveStored)

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"cart_id":    cartID.String(),
			"item_count": len(items),
		})
		s.logg.Debug(logCtx, "cart.saved")
	}

	cart, err := s.repo.FindLatestByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload cart")
	}
	dto := NewCartDTO(cart)
	dto.Removed = removed
	return dto, nil
}

// buildItems checks every requested line against the live catalog and merges
// lines pointing at the same product variant. Lines that can no longer be
// bought are dropped and reported instead of failing the save.
func (s *service) buildItems(ctx context.Context, lines []CartLineInput) ([]models.CartItem, []RemovedLineDTO, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.repo.ProductsByID(ctx, ids)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart products")
	}

	items := make([]models.CartItem, 0, len(lines))
	var removed []RemovedLineDTO
	index := map[string]int{}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
				WithDetails(map[string]any{"productId": line.ProductID})
		}
		color := trimmed(line.SelectedColor)
		size := trimmed(line.SelectedSize)
		drop := RemovedLineDTO{
			ID:            cartstore.ItemID(line.ProductID, deref(size), deref(color)),
			ProductID:     line.ProductID,
			Quantity:      line.Quantity,
			SelectedColor: color,
			SelectedSize:  size,
		}

		product, ok := products[line.ProductID]
		if !ok || !product.Active {
			drop.Reason = RemovedUnavailable
			removed = append(removed, drop)
			continue
		}
		if color != nil && size != nil {
			resolver := variants.New(product.Colors, product.Sizes, product.StockByVariant)
			if !resolver.HasStock(*color, *size) {
				drop.Reason = RemovedOutOfStock
				removed = append(removed, drop)
				continue
			}
		}

		key := fmt.Sprintf("%s|%s|%s", line.ProductID, deref(color), deref(size))
		if pos, seen := index[key]; seen {
			items[pos].Quantity += line.Quantity
			continue
		}
		index[key] = len(items)
		items = append(items, models.CartItem{
			ProductID:     line.ProductID,
			Quantity:      line.Quantity,
			SelectedColor: color,
			SelectedSize:  size,
		})
	}
	return items, removed, nil
}

func (s *service) reportRemoved(ctx context.Context, removed []RemovedLineDTO) {
	for _, line := range removed {
		s.metrics.CartSave(metrics.CartSaveLinePruned)
		if s.logg == nil {
			continue
		}
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"product_id": line.ProductID.String(),
			"reason":     line.Reason,
		})
		s.logg.Warn(logCtx, "cart.line_pruned")
	}
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
