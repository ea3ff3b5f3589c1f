package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserRoleAcceptsFormLabels(t *testing.T) {
	role, err := ParseUserRole("cliente")
	require.NoError(t, err)
	assert.Equal(t, UserRoleCustomer, role)

	role, err = ParseUserRole(" LOJISTA ")
	require.NoError(t, err)
	assert.Equal(t, UserRoleMerchant, role)
	assert.Equal(t, "lojista", role.ProfileType())

	role, err = ParseUserRole("merchant")
	require.NoError(t, err)
	assert.Equal(t, UserRoleMerchant, role)

	_, err = ParseUserRole("admin")
	assert.Error(t, err)
}

func TestOrderStatusLabels(t *testing.T) {
	assert.Equal(t, "Aguardando pagamento", OrderStatusPendingPayment.Label())
	assert.Equal(t, "Em trânsito", OrderStatusInTransit.Label())
	assert.Equal(t, "UNKNOWN", OrderStatus("UNKNOWN").Label())
	assert.False(t, OrderStatus("UNKNOWN").IsValid())

	status, err := ParseOrderStatus("DELIVERED")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusDelivered, status)
}

func TestParsePaymentType(t *testing.T) {
	pt, err := ParsePaymentType("cartao-credito")
	require.NoError(t, err)
	assert.Equal(t, PaymentTypeCreditCard, pt)

	pt, err = ParsePaymentType("pix")
	require.NoError(t, err)
	assert.True(t, pt.IsValid())

	_, err = ParsePaymentType("cheque")
	assert.Error(t, err)
}

func TestParsePaymentStatus(t *testing.T) {
	status, err := ParsePaymentStatus("PAID")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, status)
	_, err = ParsePaymentStatus("paid")
	assert.Error(t, err)
}
