package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupPayload struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

func TestDecodeJSONBodyReportsFirstFieldByJSONName(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"x","password":"123456","confirmPassword":"123456"}`))
	var dest signupPayload
	err := DecodeJSONBody(req, &dest)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "email must be a valid email", typed.Message())
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.co","password":"123456","confirmPassword":"123456","admin":true}`))
	var dest signupPayload
	err := DecodeJSONBody(req, &dest)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestQueryUUIDHelpers(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest("GET", "/?usuarioId="+id.String()+"&categoriaId=nope", nil)

	got, err := ParseQueryUUID(req, "usuarioId")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, *got)

	_, err = ParseQueryUUID(req, "categoriaId")
	assert.Error(t, err)

	missing, err := ParseQueryUUID(req, "other")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "xlsx", SanitizeString("  xlsx ", 8))
	assert.Equal(t, "abc", SanitizeString("abcdef", 3))
	assert.Equal(t, "confirm_payment", SanitizeString("\tconfirm_\x00payment\n", 64))
	assert.Equal(t, "ção", SanitizeString("çãozinho", 3), "cuts on runes, not bytes")
}

func TestDecodeJSONBodyRejectsEmptyAndTrailingInput(t *testing.T) {
	var dest signupPayload

	err := DecodeJSONBody(httptest.NewRequest("POST", "/", strings.NewReader("")), &dest)
	require.Error(t, err)
	assert.Equal(t, "request body is empty", pkgerrors.As(err).Message())

	body := `{"email":"a@b.co","password":"123456","confirmPassword":"123456"} {"email":"x"}`
	err = DecodeJSONBody(httptest.NewRequest("POST", "/", strings.NewReader(body)), &dest)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestValidateStructCollectsAllFields(t *testing.T) {
	err := ValidateStruct(&signupPayload{Password: "123", ConfirmPassword: "456"})
	require.Error(t, err)

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["email"])
	assert.Equal(t, "must be at least 6", details["password"])
	assert.Equal(t, "must match Password", details["confirmPassword"])
}
