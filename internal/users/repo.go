package users

import (
	"context"
	"errors"

	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	"github.com/baxeinwear/storefront-backend/pkg/enums"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes user and profile persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// CreateCustomer inserts the customer profile of a user.
func (r *Repository) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// CreateMerchant inserts the merchant profile of a user.
func (r *Repository) CreateMerchant(ctx context.Context, merchant *models.Merchant) error {
	return r.db.WithContext(ctx).Create(merchant).Error
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Merchant").
		Where("email = ?", email).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user with both profile associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Merchant").
		First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// LoadAccount returns the user and its profile, or a not-found error.
func (r *Repository) LoadAccount(ctx context.Context, userID uuid.UUID) (*Account, error) {
	user, err := r.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return AccountFromUser(user)
}

// AccountFromUser pairs a loaded user with the profile matching its role.
func AccountFromUser(user *models.User) (*Account, error) {
	switch {
	case user.Role == enums.UserRoleCustomer && user.Customer != nil:
		return &Account{User: user, Profile: user.Customer}, nil
	case user.Role == enums.UserRoleMerchant && user.Merchant != nil:
		return &Account{User: user, Profile: user.Merchant}, nil
	}
	return nil, pkgerrors.Newf(pkgerrors.CodeInternal, "user %s has no %s profile", user.ID, user.Role)
}
