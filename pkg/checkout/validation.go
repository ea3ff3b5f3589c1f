package checkout

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/types"
)

var (
	emailValidator = validator.New()
	postalCodeRe   = regexp.MustCompile(`^\d{8}$`)
	stateRe        = regexp.MustCompile(`^[A-Za-z]{2}$`)
	postalSepRe    = regexp.MustCompile(`[\s.\-]`)
)

// NormalizeDeliveryAddress trims every field, strips postal code separators and
// upper-cases the state.
func NormalizeDeliveryAddress(addr types.DeliveryAddress) types.DeliveryAddress {
	addr.PostalCode = postalSepRe.ReplaceAllString(addr.PostalCode, "")
	addr.Street = strings.TrimSpace(addr.Street)
	addr.Number = strings.TrimSpace(addr.Number)
	addr.District = strings.TrimSpace(addr.District)
	addr.City = strings.TrimSpace(addr.City)
	addr.State = strings.ToUpper(strings.TrimSpace(addr.State))
	addr.FullName = strings.TrimSpace(addr.FullName)
	addr.Email = strings.TrimSpace(addr.Email)
	addr.Phone = strings.TrimSpace(addr.Phone)
	if addr.Complement != nil {
		trimmed := strings.TrimSpace(*addr.Complement)
		if trimmed == "" {
			addr.Complement = nil
		} else {
			addr.Complement = &trimmed
		}
	}
	return addr
}

// ValidateDeliveryAddress checks a normalized address. Fields are checked in a
// fixed order and the first violation is returned.
func ValidateDeliveryAddress(addr types.DeliveryAddress) error {
	checks := []struct {
		field string
		ok    bool
		msg   string
	}{
		{"cep", postalCodeRe.MatchString(addr.PostalCode), "postal code (cep) must have 8 digits"},
		{"rua", addr.Street != "", "street (rua) is required"},
		{"numero", addr.Number != "", "number (numero) is required"},
		{"bairro", addr.District != "", "district (bairro) is required"},
		{"cidade", addr.City != "", "city (cidade) is required"},
		{"estado", stateRe.MatchString(addr.State), "state (estado) must be a 2-letter code"},
		{"nomeCompleto", addr.FullName != "", "full name (nomeCompleto) is required"},
		{"email", addr.Email != "" && emailValidator.Var(addr.Email, "email") == nil, "email must be a valid address"},
		{"telefone", addr.Phone != "", "phone (telefone) is required"},
	}
	for _, check := range checks {
		if !check.ok {
			return pkgerrors.New(pkgerrors.CodeValidation, check.msg).WithDetails(map[string]any{
				"field": check.field,
			})
		}
	}
	return nil
}

// ResolveSingleMerchant returns the only merchant referenced by a cart. Carts
// spanning more than one merchant are rejected, never split.
func ResolveSingleMerchant(merchantIDs []uuid.UUID) (uuid.UUID, error) {
	distinct := map[uuid.UUID]struct{}{}
	var first uuid.UUID
	for _, id := range merchantIDs {
		if id == uuid.Nil {
			continue
		}
		if _, seen := distinct[id]; !seen && len(distinct) == 0 {
			first = id
		}
		distinct[id] = struct{}{}
	}
	switch len(distinct) {
	case 0:
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot identify merchant")
	case 1:
		return first, nil
	default:
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "cart mixes multiple merchants; split before continuing").WithDetails(map[string]any{
			"merchant_count": len(distinct),
		})
	}
}
