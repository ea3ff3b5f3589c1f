package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/baxeinwear/storefront-backend/internal/orders"
	"github.com/baxeinwear/storefront-backend/internal/users"
	"github.com/baxeinwear/storefront-backend/pkg/config"
	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	"github.com/baxeinwear/storefront-backend/pkg/enums"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
	"github.com/baxeinwear/storefront-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service confirms payments of pending orders.
type Service interface {
	Confirm(ctx context.Context, input ConfirmInput) (*ConfirmResult, error)
}

// ServiceParams bundles the payment service dependencies.
type ServiceParams struct {
	Repo     *Repository
	Orders   *orders.Repository
	DB       txRunner
	Accounts users.AccountLoader
	Checkout config.CheckoutConfig
	Metrics  *metrics.StoreMetrics
	Logger   *logger.Logger
}

type service struct {
	repo        *Repository
	orders      *orders.Repository
	db          txRunner
	accounts    users.AccountLoader
	shippingFee decimal.Decimal
	tolerance   decimal.Decimal
	metrics     *metrics.StoreMetrics
	logg        *logger.Logger
}

// NewService constructs the payment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("account loader required")
	}
	return &service{
		repo:        params.Repo,
		orders:      params.Orders,
		db:          params.DB,
		accounts:    params.Accounts,
		shippingFee: params.Checkout.DefaultShippingFee(),
		tolerance:   params.Checkout.Tolerance(),
		metrics:     params.Metrics,
		logg:        params.Logger,
	}, nil
}

// Confirm records a PAID payment and moves the order to IN_TRANSIT. The amount
// must match the frozen subtotal plus shipping within the configured tolerance.
func (s *service) Confirm(ctx context.Context, input ConfirmInput) (*ConfirmResult, error) {
	customer, err := users.RequireCustomer(ctx, s.accounts, input.UserID)
	if err != nil {
		return nil, err
	}
	paymentType, err := enums.ParsePaymentType(input.PaymentType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tipoPagamento")
	}
	fee := s.shippingFee
	if input.ShippingFee != nil {
		fee = *input.ShippingFee
	}
	if fee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "frete must not be negative")
	}

	order, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order.CustomerID != customer.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
	}
	if order.Status != enums.OrderStatusPendingPayment {
		s.metrics.PaymentRejected("status")
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict,
			"order is %s (%s); only %s orders can be paid",
			order.Status, order.Status.Label(), enums.OrderStatusPendingPayment).
			WithDetails(map[string]any{"status": order.Status})
	}

	expected := orders.Subtotal(order.Items).Add(fee)
	if input.Amount.Sub(expected).Abs().GreaterThan(s.tolerance) {
		s.metrics.PaymentRejected("amount_mismatch")
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict,
			"payment amount %s does not match expected total %s",
			input.Amount.StringFixed(2), expected.StringFixed(2)).
			WithDetails(map[string]any{
				"valor":         input.Amount.StringFixed(2),
				"valorEsperado": expected.StringFixed(2),
			})
	}

	payment := &models.Payment{
		OrderID:     order.ID,
		CustomerID:  customer.ID,
		Amount:      input.Amount.Round(2),
		Status:      enums.PaymentStatusPaid,
		PaymentType: paymentType,
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.orders.WithTx(tx).TransitionStatus(ctx, order.ID, enums.OrderStatusPendingPayment, enums.OrderStatusInTransit)
		if err != nil {
			return err
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer awaiting payment")
		}
		return s.repo.WithTx(tx).Create(ctx, payment)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirm payment")
	}

	s.metrics.PaymentConfirmed(paymentType.String())
	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, order.ID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"payment_id":   payment.ID.String(),
			"payment_type": paymentType.String(),
			"amount":       payment.Amount.StringFixed(2),
		})
		s.logg.Info(logCtx, "payment.confirmed")
	}

	return &ConfirmResult{
		OrderID:     order.ID,
		Status:      enums.OrderStatusInTransit,
		StatusLabel: enums.OrderStatusInTransit.Label(),
		PaymentID:   payment.ID,
		Amount:      payment.Amount,
		Expected:    expected,
	}, nil
}
