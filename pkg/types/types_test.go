package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryAddressRoundTrip(t *testing.T) {
	addr := DeliveryAddress{
		Address: Address{
			PostalCode: "01310100",
			Street:     "Av. Paulista",
			Number:     "1000",
			District:   "Bela Vista",
			City:       "São Paulo",
			State:      "SP",
		},
		FullName: "Ana Souza",
		Email:    "ana@example.com",
		Phone:    "11999990000",
	}

	raw, err := addr.Value()
	require.NoError(t, err)
	assert.Contains(t, raw, `"nomeCompleto":"Ana Souza"`)
	assert.Contains(t, raw, `"cep":"01310100"`)

	var decoded DeliveryAddress
	require.NoError(t, decoded.Scan([]byte(raw.(string))))
	assert.Equal(t, addr, decoded)
}

func TestVariantStockScanHandlesNullAndText(t *testing.T) {
	var stock VariantStock
	require.NoError(t, stock.Scan(nil))
	assert.Nil(t, stock)

	require.NoError(t, stock.Scan(`{"Preto-M":3,"Branco-M":0}`))
	assert.Equal(t, 3, stock["Preto-M"])
	assert.Equal(t, 3, stock.Total())

	value, err := VariantStock(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, value)

	assert.Error(t, stock.Scan(42))
}

func TestStringListDefaultsToEmptyArray(t *testing.T) {
	value, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", value)

	var list StringList
	require.NoError(t, list.Scan([]byte(`["P","M","G"]`)))
	assert.Equal(t, StringList{"P", "M", "G"}, list)
}

func TestAddressIsZero(t *testing.T) {
	assert.True(t, Address{}.IsZero())
	assert.False(t, Address{City: "Recife"}.IsZero())
}
