package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/baxeinwear/storefront-backend/internal/users"
	"github.com/baxeinwear/storefront-backend/pkg/config"
	"github.com/baxeinwear/storefront-backend/pkg/db"
	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	"github.com/baxeinwear/storefront-backend/pkg/enums"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/security"
	"github.com/baxeinwear/storefront-backend/pkg/types"
	"gorm.io/gorm"
)

const duplicateEmailMessage = "email already registered"

// RegisterService handles the signup transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             txRunner
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          txRunner
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// Register creates the user and its customer or merchant profile in one
// transaction.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fullName is required")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if req.Password != req.ConfirmPassword {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "passwords do not match")
	}
	role, err := enums.ParseUserRole(req.AccountType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "accountType must be cliente or lojista")
	}

	var companyName string
	if role == enums.UserRoleMerchant {
		if req.CompanyName != nil {
			companyName = strings.TrimSpace(*req.CompanyName)
		}
		if companyName == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "empresa is required for merchant accounts")
		}
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var account *users.Account
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, duplicateEmailMessage)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user := &models.User{
			Name:         name,
			Email:        email,
			PasswordHash: passwordHash,
			Role:         role,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, duplicateEmailMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		switch role {
		case enums.UserRoleMerchant:
			merchant := &models.Merchant{UserID: user.ID, CompanyName: companyName}
			if err := userRepo.CreateMerchant(ctx, merchant); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create merchant profile")
			}
			account = &users.Account{User: user, Profile: merchant}
		default:
			customer := &models.Customer{UserID: user.ID}
			if req.Address != nil {
				customer.Address = normalizeAddress(*req.Address)
			}
			if err := userRepo.CreateCustomer(ctx, customer); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer profile")
			}
			account = &users.Account{User: user, Profile: customer}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users.FromAccount(account), nil
}

func normalizeAddress(addr types.Address) types.Address {
	addr.PostalCode = strings.TrimSpace(addr.PostalCode)
	addr.Street = strings.TrimSpace(addr.Street)
	addr.Number = strings.TrimSpace(addr.Number)
	addr.District = strings.TrimSpace(addr.District)
	addr.City = strings.TrimSpace(addr.City)
	addr.State = strings.ToUpper(strings.TrimSpace(addr.State))
	return addr
}
