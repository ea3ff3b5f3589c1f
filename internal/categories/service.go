package categories

import (
	"context"
	"fmt"
	"strings"

	"github.com/baxeinwear/storefront-backend/pkg/db"
	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

const duplicateNameMessage = "category already exists"

// CategoryDTO is the transport shape of a category.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"nome"`
	Description *string   `json:"descricao,omitempty"`
}

// CreateCategoryRequest is the payload of categories/create.
type CreateCategoryRequest struct {
	Name        string  `json:"nome" validate:"required"`
	Description *string `json:"descricao,omitempty"`
}

type repository interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// Service manages the category catalog.
type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	Create(ctx context.Context, req CreateCategoryRequest) (*CategoryDTO, error)
}

type service struct {
	repo repository
}

// NewService builds a category service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nome is required").
			WithDetails(map[string]any{"field": "nome"})
	}

	exists, err := s.repo.ExistsByName(ctx, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category name")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, duplicateNameMessage)
	}

	category := &models.Category{Name: name, Description: trimmedOrNil(req.Description)}
	if err := s.repo.Create(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, duplicateNameMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}
	dto := FromModel(category)
	return &dto, nil
}

// FromModel maps a category row.
func FromModel(c *models.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, Description: c.Description}
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
