package controllers

import (
	"net/http"

	"github.com/baxeinwear/storefront-backend/api/responses"
	"github.com/baxeinwear/storefront-backend/api/validators"
	"github.com/baxeinwear/storefront-backend/internal/categories"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
)

func CategoriesList(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("category"))
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Categorias carregadas", items)
	}
}

func CategoriesCreate(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("category"))
			return
		}

		var body categories.CreateCategoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "Categoria criada com sucesso", created)
	}
}
