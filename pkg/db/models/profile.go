package models

import (
	"github.com/google/uuid"

	"github.com/baxeinwear/storefront-backend/pkg/enums"
)

// Profile is implemented only by *Customer and *Merchant, so a user's profile
// is always exactly one of the two kinds.
type Profile interface {
	ProfileID() uuid.UUID
	ProfileRole() enums.UserRole
	sealedProfile()
}

func (c *Customer) ProfileID() uuid.UUID {
	return c.ID
}

func (*Customer) ProfileRole() enums.UserRole {
	return enums.UserRoleCustomer
}

func (*Customer) sealedProfile() {}

func (m *Merchant) ProfileID() uuid.UUID {
	return m.ID
}

func (*Merchant) ProfileRole() enums.UserRole {
	return enums.UserRoleMerchant
}

func (*Merchant) sealedProfile() {}
