package enums

import "slices"

// OrderStatus tracks an order from checkout to delivery.
type OrderStatus string

const (
	OrderStatusPendingPayment  OrderStatus = "PENDING_PAYMENT"
	OrderStatusPendingShipment OrderStatus = "PENDING_SHIPMENT"
	// OrderStatusInTransit is also the status set once a payment is confirmed.
	OrderStatusInTransit       OrderStatus = "IN_TRANSIT"
	OrderStatusDelivered       OrderStatus = "DELIVERED"
	OrderStatusCanceled        OrderStatus = "CANCELED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendingPayment,
	OrderStatusPendingShipment,
	OrderStatusInTransit,
	OrderStatusDelivered,
	OrderStatusCanceled,
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPendingPayment:  "Aguardando pagamento",
	OrderStatusPendingShipment: "Aguardando envio",
	OrderStatusInTransit:       "Em trânsito",
	OrderStatusDelivered:       "Entregue",
	OrderStatusCanceled:        "Cancelado",
}

func (s OrderStatus) String() string { return string(s) }

// Label returns the storefront display text for the status.
func (s OrderStatus) Label() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

func (s OrderStatus) IsValid() bool { return slices.Contains(validOrderStatuses, s) }

func ParseOrderStatus(value string) (OrderStatus, error) {
	return lookup(validOrderStatuses, value, "order status", value)
}
