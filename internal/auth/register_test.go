package auth

import (
	"context"
	"testing"

	"github.com/baxeinwear/storefront-backend/internal/users"
	"github.com/baxeinwear/storefront-backend/pkg/db/dbtest"
	"github.com/baxeinwear/storefront-backend/pkg/enums"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/security"
	"github.com/baxeinwear/storefront-backend/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string { return &v }

func TestRegisterCustomerCreatesUserAndProfile(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: client, PasswordConfig: testPasswordConfig()})
	require.NoError(t, err)

	dto, err := svc.Register(context.Background(), RegisterRequest{
		FullName:        "Carla Souza",
		Email:           "Carla@Example.com",
		Password:        "segredo1",
		ConfirmPassword: "segredo1",
		AccountType:     "cliente",
		Address: &types.Address{
			PostalCode: "01310-100",
			Street:     "Av. Paulista",
			Number:     "900",
			District:   "Bela Vista",
			City:       "São Paulo",
			State:      "sp",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "carla@example.com", dto.Email)
	assert.Equal(t, enums.UserRoleCustomer, dto.Role)

	account, err := users.NewRepository(client.DB()).LoadAccount(context.Background(), dto.ID)
	require.NoError(t, err)
	customer, ok := account.Customer()
	require.True(t, ok)
	assert.Equal(t, "SP", customer.Address.State)

	ok, err = security.VerifyPassword("segredo1", account.User.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterMerchantRequiresCompany(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: client, PasswordConfig: testPasswordConfig()})
	require.NoError(t, err)

	req := RegisterRequest{
		FullName:        "Diego Lima",
		Email:           "diego@loja.com",
		Password:        "segredo1",
		ConfirmPassword: "segredo1",
		AccountType:     "lojista",
	}
	_, err = svc.Register(context.Background(), req)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	req.CompanyName = strPtr("  Diego Modas ")
	dto, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, dto.CompanyName)
	assert.Equal(t, "Diego Modas", *dto.CompanyName)
}

func TestRegisterRejectsDuplicateEmailAndBadInput(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: client, PasswordConfig: testPasswordConfig()})
	require.NoError(t, err)

	req := RegisterRequest{
		FullName:        "Eva",
		Email:           "eva@example.com",
		Password:        "segredo1",
		ConfirmPassword: "segredo1",
		AccountType:     "cliente",
	}
	_, err = svc.Register(context.Background(), req)
	require.NoError(t, err)

	req.Email = "EVA@example.com"
	_, err = svc.Register(context.Background(), req)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	mismatch := req
	mismatch.Email = "outra@example.com"
	mismatch.ConfirmPassword = "diferente"
	_, err = svc.Register(context.Background(), mismatch)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	badType := req
	badType.Email = "tipo@example.com"
	badType.AccountType = "admin"
	_, err = svc.Register(context.Background(), badType)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
