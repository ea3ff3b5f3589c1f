package enums

import "slices"

// PaymentStatus is the state of the payment row recorded for an order.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusCanceled PaymentStatus = "CANCELED"
)

var paymentStatuses = []PaymentStatus{PaymentStatusPending, PaymentStatusPaid, PaymentStatusCanceled}

func (p PaymentStatus) String() string { return string(p) }

func (p PaymentStatus) IsValid() bool { return slices.Contains(paymentStatuses, p) }

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	return lookup(paymentStatuses, value, "payment status", value)
}
