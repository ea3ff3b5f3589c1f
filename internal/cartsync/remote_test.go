package cartsync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baxeinwear/storefront-backend/internal/cartstore"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRemoteFetchCart(t *testing.T) {
	productID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cart/list", r.URL.Path)
		assert.Equal(t, "user-1", r.URL.Query().Get("usuarioId"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Carrinho carregado","data":{"items":[{"id":"x","productId":"` + productID.String() + `","quantity":2,"selectedColor":"Preto","selectedSize":"M","product":{"id":"` + productID.String() + `","nome":"Bone","preco":"49.90"}}]}}`))
	}))
	defer srv.Close()

	remote, err := NewHTTPRemote(srv.URL, WithBearerToken("tok"))
	require.NoError(t, err)

	items, err := remote.FetchCart(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, cartstore.ItemID(productID, "M", "Preto"), items[0].ID)
	assert.Equal(t, "Bone", items[0].Product.Name)
	assert.True(t, items[0].Product.Price.Equal(decimal.RequireFromString("49.90")))
}

func TestHTTPRemoteSaveCart(t *testing.T) {
	var got savePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/cart/create", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	remote, err := NewHTTPRemote(srv.URL + "/")
	require.NoError(t, err)

	p := cartstore.Product{ID: uuid.New()}
	err = remote.SaveCart(context.Background(), "user-1", []cartstore.Item{{Product: p, Quantity: 3, SelectedSize: "G"}})
	require.NoError(t, err)

	assert.Equal(t, "user-1", got.UserID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)
	assert.Nil(t, got.Items[0].SelectedColor)
	require.NotNil(t, got.Items[0].SelectedSize)
	assert.Equal(t, "G", *got.Items[0].SelectedSize)
}

func TestHTTPRemoteMapsStatuses(t *testing.T) {
	status := http.StatusConflict
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	remote, err := NewHTTPRemote(srv.URL)
	require.NoError(t, err)

	err = remote.SaveCart(context.Background(), "user-1", nil)
	assert.ErrorIs(t, err, ErrSaveInProgress)

	status = http.StatusInternalServerError
	err = remote.SaveCart(context.Background(), "user-1", nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Contains(t, errors.Unwrap(err).Error(), "status 500")

	_, err = remote.FetchCart(context.Background(), "user-1")
	require.Error(t, err)
}

func TestNewHTTPRemoteRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPRemote("  ")
	assert.Error(t, err)
}
