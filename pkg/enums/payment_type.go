package enums

import (
	"slices"
	"strings"
)

// PaymentType is the simulated payment method picked at checkout.
type PaymentType string

const (
	PaymentTypePix        PaymentType = "PIX"
	PaymentTypeCreditCard PaymentType = "CARTAO_CREDITO"
	PaymentTypeDebitCard  PaymentType = "CARTAO_DEBITO"
	PaymentTypeBoleto     PaymentType = "BOLETO"
)

var paymentTypes = []PaymentType{PaymentTypePix, PaymentTypeCreditCard, PaymentTypeDebitCard, PaymentTypeBoleto}

func (p PaymentType) String() string { return string(p) }

func (p PaymentType) IsValid() bool { return slices.Contains(paymentTypes, p) }

var paymentTypeSeparators = strings.NewReplacer("-", "_", " ", "_")

// ParsePaymentType accepts the client spellings ("pix", "cartao-credito",
// "Cartao Debito") of each type.
func ParsePaymentType(value string) (PaymentType, error) {
	normalized := paymentTypeSeparators.Replace(strings.ToUpper(strings.TrimSpace(value)))
	return lookup(paymentTypes, normalized, "payment type", value)
}
