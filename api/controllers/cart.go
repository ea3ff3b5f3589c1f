package controllers

import (
	"net/http"

	"github.com/baxeinwear/storefront-backend/api/responses"
	"github.com/baxeinwear/storefront-backend/api/validators"
	"github.com/baxeinwear/storefront-backend/internal/cart"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
)

// CartList returns the customer's server-side cart, empty when none exists.
func CartList(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("cart"))
			return
		}

		userID, err := queryUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Carrinho carregado", result)
	}
}

// CartSave replaces the stored cart with the submitted lines.
func CartSave(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("cart"))
			return
		}

		var body cart.SaveCartRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Save(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Carrinho salvo com sucesso", result)
	}
}
