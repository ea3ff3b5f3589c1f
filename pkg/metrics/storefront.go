package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Cart save outcomes.
const (
	CartSaveStored     = "stored"
	CartSaveDropped    = "dropped"
	CartSaveFailed     = "failed"
	CartSaveLinePruned = "line_pruned"
)

// StoreMetrics counts checkout and cart activity. A nil *StoreMetrics is a no-op.
type StoreMetrics struct {
	ordersCreated     prometheus.Counter
	orderValue        prometheus.Histogram
	paymentsConfirmed *prometheus.CounterVec
	paymentsRejected  *prometheus.CounterVec
	cartSaves         *prometheus.CounterVec
}

// NewStoreMetrics registers the storefront metrics on the provided registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created from carts.",
	})
	orderValue := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_value",
		Help:    "Order totals at creation, before shipping.",
		Buckets: []float64{25, 50, 100, 200, 400, 800, 1600},
	})
	paymentsConfirmed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_confirmed_total",
		Help: "Payments accepted, by payment type.",
	}, []string{"payment_type"})
	paymentsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_rejected_total",
		Help: "Payment confirmations refused, by reason.",
	}, []string{"reason"})
	cartSaves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_saves_total",
		Help: "Cart save attempts, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(ordersCreated, orderValue, paymentsConfirmed, paymentsRejected, cartSaves)
	return &StoreMetrics{
		ordersCreated:     ordersCreated,
		orderValue:        orderValue,
		paymentsConfirmed: paymentsConfirmed,
		paymentsRejected:  paymentsRejected,
		cartSaves:         cartSaves,
	}
}

// OrderCreated records a new order and its total.
func (m *StoreMetrics) OrderCreated(total decimal.Decimal) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
	m.orderValue.Observe(total.InexactFloat64())
}

// PaymentConfirmed increments the accepted payment counter.
func (m *StoreMetrics) PaymentConfirmed(paymentType string) {
	if m == nil || m.paymentsConfirmed == nil {
		return
	}
	m.paymentsConfirmed.WithLabelValues(normalizeLabel(paymentType)).Inc()
}

// PaymentRejected increments the rejected payment counter.
func (m *StoreMetrics) PaymentRejected(reason string) {
	if m == nil || m.paymentsRejected == nil {
		return
	}
	m.paymentsRejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// CartSave records the outcome of a cart save.
func (m *StoreMetrics) CartSave(outcome string) {
	if m == nil || m.cartSaves == nil {
		return
	}
	m.cartSaves.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
