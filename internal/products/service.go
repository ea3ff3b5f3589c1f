package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baxeinwear/storefront-backend/internal/users"
	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Service exposes catalog and merchant product management operations.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]ProductDTO, error)
	Register(ctx context.Context, req RegisterProductRequest) (*ProductDTO, error)
	Update(ctx context.Context, req UpdateProductRequest) (*ProductDTO, error)
	Delete(ctx context.Context, req DeleteProductRequest) (*DeleteProductResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type categoryLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// ServiceParams bundles the product service dependencies.
type ServiceParams struct {
	Repo       *Repository
	DB         txRunner
	Accounts   users.AccountLoader
	Categories categoryLoader
	Logger     *logger.Logger
}

type service struct {
	repo       *Repository
	db         txRunner
	accounts   users.AccountLoader
	categories categoryLoader
	logg       *logger.Logger
}

// NewService constructs a product service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("account loader required")
	}
	if params.Categories == nil {
		return nil, fmt.Errorf("category loader required")
	}
	return &service{
		repo:       params.Repo,
		db:         params.DB,
		accounts:   params.Accounts,
		categories: params.Categories,
		logg:       params.Logger,
	}, nil
}

// List returns the merchant's own products when userID is a merchant and the
// active catalog otherwise.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]ProductDTO, error) {
	var (
		rows []models.Product
		err  error
	)
	merchantID, err := s.merchantFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if merchantID != uuid.Nil {
		rows, err = s.repo.ListByMerchant(ctx, merchantID)
	} else {
		rows, err = s.repo.ListActive(ctx)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewProductDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) merchantFor(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	if userID == uuid.Nil {
		return uuid.Nil, nil
	}
	account, err := s.accounts.LoadAccount(ctx, userID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}
	if merchant, ok := account.Merchant(); ok {
		return merchant.ID, nil
	}
	return uuid.Nil, nil
}

// Register creates an active product for the acting merchant.
func (s *service) Register(ctx context.Context, req RegisterProductRequest) (*ProductDTO, error) {
	merchant, err := users.RequireMerchant(ctx, s.accounts, req.UserID)
	if err != nil {
		return nil, err
	}

	var errs error
	errs = multierr.Append(errs, validateName(req.Name))
	errs = multierr.Append(errs, validatePrice(req.Price))
	if req.CategoryID == uuid.Nil {
		errs = multierr.Append(errs, fmt.Errorf("categoriaId is required"))
	}
	errs = multierr.Append(errs, validateStock(req.Stock))
	set, variantErrs := normalizeVariants(req.Colors, req.Sizes, req.StockByVariant)
	errs = multierr.Append(errs, variantErrs)
	if err := validationError(errs); err != nil {
		return nil, err
	}

	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:           strings.TrimSpace(req.Name),
		Price:          req.Price.Round(2),
		CategoryID:     req.CategoryID,
		MerchantID:     merchant.ID,
		Description:    trimmedOrNil(req.Description),
		Active:         true,
		Colors:         set.colors,
		Sizes:          set.sizes,
		StockByVariant: set.stock,
		Images:         buildImages(uuid.Nil, req.Images),
	}
	product.Stock = resolveStock(set, req.Stock, 0)

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return s.reload(ctx, product.ID)
}

// Update applies a partial change. Setting ativo=false behaves like Delete and
// ativo=true reactivates the listing.
func (s *service) Update(ctx context.Context, req UpdateProductRequest) (*ProductDTO, error) {
	merchant, err := users.RequireMerchant(ctx, s.accounts, req.UserID)
	if err != nil {
		return nil, err
	}
	product, err := s.loadOwned(ctx, req.ProductID, merchant.ID)
	if err != nil {
		return nil, err
	}

	var errs error
	if req.Name != nil {
		errs = multierr.Append(errs, validateName(*req.Name))
	}
	if req.Price != nil {
		errs = multierr.Append(errs, validatePrice(*req.Price))
	}
	errs = multierr.Append(errs, validateStock(req.Stock))

	colors, sizes, stock := []string(product.Colors), []string(product.Sizes), map[string]int(product.StockByVariant)
	if req.Colors != nil {
		colors = *req.Colors
	}
	if req.Sizes != nil {
		sizes = *req.Sizes
	}
	if req.StockByVariant != nil {
		stock = *req.StockByVariant
	}
	set, variantErrs := normalizeVariants(colors, sizes, stock)
	errs = multierr.Append(errs, variantErrs)
	if err := validationError(errs); err != nil {
		return nil, err
	}

	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		product.Price = req.Price.Round(2)
	}
	if req.Description != nil {
		product.Description = trimmedOrNil(req.Description)
	}
	product.Colors = set.colors
	product.Sizes = set.sizes
	product.StockByVariant = set.stock

	deactivating := false
	if req.Active != nil {
		deactivating = product.Active && !*req.Active
		product.Active = *req.Active
	}
	product.Stock = resolveStock(set, req.Stock, product.Stock)
	if !product.Active {
		product.Stock = 0
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, product); err != nil {
			return err
		}
		if req.Images != nil {
			if _, err := repo.ReplaceImages(ctx, product.ID, *req.Images); err != nil {
				return err
			}
		}
		if deactivating {
			if _, err := repo.PurgeCartItems(ctx, product.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	return s.reload(ctx, product.ID)
}

// Delete deactivates the product, zeroes its stock and purges it from every
// cart in one transaction. Order history keeps referencing the row.
func (s *service) Delete(ctx context.Context, req DeleteProductRequest) (*DeleteProductResult, error) {
	merchant, err := users.RequireMerchant(ctx, s.accounts, req.UserID)
	if err != nil {
		return nil, err
	}
	product, err := s.loadOwned(ctx, req.ProductID, merchant.ID)
	if err != nil {
		return nil, err
	}

	result := &DeleteProductResult{ProductID: product.ID}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Deactivate(ctx, product.ID); err != nil {
			return err
		}
		removed, err := repo.PurgeCartItems(ctx, product.ID)
		if err != nil {
			return err
		}
		result.CartItemsRemoved = removed
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate product")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"product_id":         product.ID.String(),
			"cart_items_removed": result.CartItemsRemoved,
		})
		s.logg.Info(logCtx, "product.deactivated")
	}
	return result, nil
}

func (s *service) loadOwned(ctx context.Context, productID, merchantID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "produtoId is required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product.MerchantID != merchantID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another merchant")
	}
	return product, nil
}

func (s *service) ensureCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	return nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload product")
	}
	return NewProductDTO(product), nil
}

// resolveStock prefers the variant total, then an explicit value, then fallback.
func resolveStock(set variantSet, explicit *int, fallback int) int {
	if len(set.stock) > 0 {
		return set.stock.Total()
	}
	if explicit != nil {
		return *explicit
	}
	return fallback
}
