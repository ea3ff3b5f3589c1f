package enums

import (
	"slices"
	"strings"
)

// UserRole selects which profile a user owns.
type UserRole string

const (
	UserRoleCustomer UserRole = "CUSTOMER"
	UserRoleMerchant UserRole = "MERCHANT"
)

var userRoles = []UserRole{UserRoleCustomer, UserRoleMerchant}

// signupLabels maps the account type names used by the signup form.
var signupLabels = map[string]UserRole{
	"CLIENTE": UserRoleCustomer,
	"LOJISTA": UserRoleMerchant,
	"LOJA":    UserRoleMerchant,
}

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool { return slices.Contains(userRoles, r) }

// ProfileType returns the lowercase profile name sent to clients as tipoPerfil.
func (r UserRole) ProfileType() string {
	switch r {
	case UserRoleCustomer:
		return "cliente"
	case UserRoleMerchant:
		return "lojista"
	default:
		return ""
	}
}

// ParseUserRole accepts role names and signup form labels, case-insensitively.
func ParseUserRole(value string) (UserRole, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	if role, ok := signupLabels[normalized]; ok {
		return role, nil
	}
	return lookup(userRoles, normalized, "user role", value)
}
