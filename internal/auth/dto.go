package auth

import (
	"github.com/baxeinwear/storefront-backend/internal/users"
	"github.com/baxeinwear/storefront-backend/pkg/types"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	User         *users.UserDTO `json:"usuario"`
	ProfileType  string         `json:"tipoPerfil"`
	Token        string         `json:"token"`
	RefreshToken string         `json:"refreshToken"`
}

// RegisterRequest is the signup form payload.
type RegisterRequest struct {
	FullName        string         `json:"fullName" validate:"required"`
	Email           string         `json:"email" validate:"required,email"`
	Password        string         `json:"password" validate:"required,min=6"`
	ConfirmPassword string         `json:"confirmPassword" validate:"required"`
	AccountType     string         `json:"accountType" validate:"required"`
	Address         *types.Address `json:"endereco,omitempty"`
	CompanyName     *string        `json:"empresa,omitempty"`
}
