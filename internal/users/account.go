package users

import (
	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	"github.com/baxeinwear/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

// Profile is the customer or merchant half of an account.
type Profile = models.Profile

// Account is a user together with its single profile.
type Account struct {
	User    *models.User
	Profile Profile
}

// Role returns the role carried by the profile.
func (a *Account) Role() enums.UserRole {
	return a.Profile.ProfileRole()
}

// ProfileID returns the customer or merchant id.
func (a *Account) ProfileID() uuid.UUID {
	return a.Profile.ProfileID()
}

// Customer returns the customer profile when the account is a customer.
func (a *Account) Customer() (*models.Customer, bool) {
	c, ok := a.Profile.(*models.Customer)
	return c, ok
}

// Merchant returns the merchant profile when the account is a merchant.
func (a *Account) Merchant() (*models.Merchant, bool) {
	m, ok := a.Profile.(*models.Merchant)
	return m, ok
}

// UserDTO is the public shape of a user, returned as "usuario".
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"nome"`
	Email       string         `json:"email"`
	Role        enums.UserRole `json:"role"`
	ProfileID   uuid.UUID      `json:"perfilId"`
	CompanyName *string        `json:"empresa,omitempty"`
}

// FromAccount maps an account to its transport shape.
func FromAccount(a *Account) *UserDTO {
	if a == nil || a.User == nil {
		return nil
	}
	dto := &UserDTO{
		ID:        a.User.ID,
		Name:      a.User.Name,
		Email:     a.User.Email,
		Role:      a.User.Role,
		ProfileID: a.ProfileID(),
	}
	if m, ok := a.Merchant(); ok {
		company := m.CompanyName
		dto.CompanyName = &company
	}
	return dto
}
