package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baxeinwear/storefront-backend/api/responses"
	"github.com/baxeinwear/storefront-backend/api/validators"
	"github.com/baxeinwear/storefront-backend/internal/orders"
	"github.com/baxeinwear/storefront-backend/internal/payments"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
)

// OrdersCreate turns the customer's cart into a pending order.
func OrdersCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("order"))
			return
		}

		var body orders.CreateOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "Pedido criado com sucesso", order)
	}
}

func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("order"))
			return
		}

		userID, err := queryUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Pedidos carregados", list)
	}
}

func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("order"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := queryUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Detail(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Pedido carregado", order)
	}
}

// OrderAction dispatches PATCH /orders/{id}. confirm_payment is the only action.
func OrderAction(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("payment"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body payments.OrderActionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		action := strings.ToLower(validators.SanitizeString(body.Action, 64))
		if action != payments.ActionConfirmPayment {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported action %q", body.Action))
			return
		}

		result, err := svc.Confirm(r.Context(), payments.ConfirmInput{
			UserID:      body.UserID,
			OrderID:     orderID,
			Amount:      body.Payment.Amount,
			PaymentType: body.Payment.PaymentType,
			ShippingFee: body.Payment.ShippingFee,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Pagamento confirmado com sucesso", result)
	}
}
