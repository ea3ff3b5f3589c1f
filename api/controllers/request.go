package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/baxeinwear/storefront-backend/api/middleware"
	"github.com/baxeinwear/storefront-backend/api/validators"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
)

const userIDParam = "usuarioId"

// optionalUserID reads ?usuarioId=, falling back to the authenticated user.
// Anonymous requests yield uuid.Nil.
func optionalUserID(r *http.Request) (uuid.UUID, error) {
	value, err := validators.ParseQueryUUID(r, userIDParam)
	if err != nil {
		return uuid.Nil, err
	}
	if value != nil {
		return *value, nil
	}
	subject := middleware.UserIDFromContext(r.Context())
	if subject == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token subject")
	}
	return id, nil
}

func queryUserID(r *http.Request) (uuid.UUID, error) {
	id, err := optionalUserID(r)
	if err != nil {
		return uuid.Nil, err
	}
	if id == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "usuarioId is required").WithDetails(map[string]any{"field": userIDParam})
	}
	return id, nil
}

func unavailable(name string) error {
	return pkgerrors.Newf(pkgerrors.CodeInternal, "%s service unavailable", name)
}
