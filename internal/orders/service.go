package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/baxeinwear/storefront-backend/internal/cart"
	"github.com/baxeinwear/storefront-backend/internal/users"
	"github.com/baxeinwear/storefront-backend/pkg/checkout"
	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	"github.com/baxeinwear/storefront-backend/pkg/enums"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
	"github.com/baxeinwear/storefront-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes order creation and lookups.
type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (*OrderDTO, error)
	List(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	Detail(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
}

// ServiceParams bundles the order service dependencies.
type ServiceParams struct {
	Repo     *Repository
	Carts    *cart.Repository
	DB       txRunner
	Accounts users.AccountLoader
	Metrics  *metrics.StoreMetrics
	Logger   *logger.Logger
}

type service struct {
	repo     *Repository
	carts    *cart.Repository
	db       txRunner
	accounts users.AccountLoader
	metrics  *metrics.StoreMetrics
	logg     *logger.Logger
}

// NewService constructs the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Carts == nil {
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
		carts:    params.Carts,
		db:       params.DB,
		accounts: params.Accounts,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

// Create turns the customer's persisted cart into a PENDING_PAYMENT order and
// empties the cart in the same transaction.
func (s *service) Create(ctx context.Context, req CreateOrderRequest) (*OrderDTO, error) {
	customer, err := users.RequireCustomer(ctx, s.accounts, req.UserID)
	if err != nil {
		return nil, err
	}

	address := checkout.NormalizeDeliveryAddress(req.Address)
	if err := checkout.ValidateDeliveryAddress(address); err != nil {
		return nil, err
	}

	userCart, err := s.carts.FindLatestByCustomer(ctx, customer.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if userCart == nil || len(userCart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	merchantIDs := make([]uuid.UUID, 0, len(userCart.Items))
	items := make([]models.OrderItem, 0, len(userCart.Items))
	total := decimal.Zero
	for _, line := range userCart.Items {
		product := line.Product
		if product == nil || !product.Active {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "product %s is no longer available", line.ProductID).
				WithDetails(map[string]any{"productId": line.ProductID})
		}
		merchantIDs = append(merchantIDs, product.MerchantID)
		item := models.OrderItem{
			ProductID:     product.ID,
			Quantity:      line.Quantity,
			UnitPrice:     product.Price,
			SelectedColor: line.SelectedColor,
			SelectedSize:  line.SelectedSize,
		}
		total = total.Add(item.Subtotal())
		items = append(items, item)
	}

	merchantID, err := checkout.ResolveSingleMerchant(merchantIDs)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		CustomerID:      customer.ID,
		MerchantID:      merchantID,
		Status:          enums.OrderStatusPendingPayment,
		ShippingAddress: address,
		Items:           items,
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		return s.carts.WithTx(tx).DeleteItems(ctx, userCart.ID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}

	s.metrics.OrderCreated(total)
	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, order.ID.String())
		logCtx = s.logg.WithField(logCtx, "total", total.StringFixed(2))
		s.logg.Info(logCtx, "order.created")
	}

	created, err := s.repo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
	}
	return NewOrderDTO(created), nil
}

// List returns the orders of a customer, or the orders received by a merchant.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "usuarioId is required")
	}
	account, err := s.accounts.LoadAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	var rows []models.Order
	if customer, ok := account.Customer(); ok {
		rows, err = s.repo.ListByCustomer(ctx, customer.ID)
	} else if merchant, ok := account.Merchant(); ok {
		rows, err = s.repo.ListByMerchant(ctx, merchant.ID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewOrderDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Detail(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "usuarioId is required")
	}
	account, err := s.accounts.LoadAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if !CanView(account, order) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
	}
	return NewOrderDTO(order), nil
}

// CanView reports whether the account is the order's customer or merchant.
func CanView(account *users.Account, order *models.Order) bool {
	if customer, ok := account.Customer(); ok {
		return customer.ID == order.CustomerID
	}
	if merchant, ok := account.Merchant(); ok {
		return merchant.ID == order.MerchantID
	}
	return false
}
