package cartsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/baxeinwear/storefront-backend/internal/cartstore"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

const errorBodyReadLimit int64 = 1024

// HTTPRemote talks to the storefront cart endpoints.
type HTTPRemote struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option configures optional remote behavior.
type Option func(*HTTPRemote)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *HTTPRemote) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithBearerToken sends token in the Authorization header.
func WithBearerToken(token string) Option {
	return func(r *HTTPRemote) {
		r.token = strings.TrimSpace(token)
	}
}

// NewHTTPRemote builds a remote rooted at baseURL (for example
// "http://localhost:8080").
func NewHTTPRemote(baseURL string, opts ...Option) (*HTTPRemote, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("cart remote base url is required")
	}
	remote := &HTTPRemote{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(remote)
		}
	}
	return remote, nil
}

// Line is one cart item on the wire.
type Line struct {
	ID            string             `json:"id,omitempty"`
	ProductID     uuid.UUID          `json:"productId"`
	Quantity      int                `json:"quantity"`
	SelectedColor *string            `json:"selectedColor"`
	SelectedSize  *string            `json:"selectedSize"`
	Product       *cartstore.Product `json:"product,omitempty"`
}

type savePayload struct {
	UserID string `json:"usuarioId"`
	Items  []Line `json:"items"`
}

type listEnvelope struct {
	Message string `json:"message"`
	Data    struct {
		Items []Line `json:"items"`
	} `json:"data"`
}

// FetchCart reads the persisted cart of userID.
func (r *HTTPRemote) FetchCart(ctx context.Context, userID string) ([]cartstore.Item, error) {
	endpoint := fmt.Sprintf("%s/api/cart/list?usuarioId=%s", r.baseURL, url.QueryEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build cart list request")
	}
	r.authorize(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute cart list request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "cart list request failed")
	}

	var body listEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode cart list response")
	}
	return linesToItems(body.Data.Items), nil
}

// SaveCart replaces the persisted cart of userID with items.
func (r *HTTPRemote) SaveCart(ctx context.Context, userID string, items []cartstore.Item) error {
	payload, err := json.Marshal(savePayload{UserID: userID, Items: itemsToLines(items)})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal cart save request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/cart/create", bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build cart save request")
	}
	req.Header.Set("Content-Type", "application/json")
	r.authorize(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute cart save request")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return ErrSaveInProgress
	case resp.StatusCode >= 300:
		return statusError(resp, "cart save request failed")
	}
	return nil
}

func (r *HTTPRemote) authorize(req *http.Request) {
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
}

func statusError(resp *http.Response, message string) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), message)
}

func itemsToLines(items []cartstore.Item) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{
			ProductID:     item.Product.ID,
			Quantity:      item.Quantity,
			SelectedColor: optional(item.SelectedColor),
			SelectedSize:  optional(item.SelectedSize),
		})
	}
	return lines
}

func linesToItems(lines []Line) []cartstore.Item {
	items := make([]cartstore.Item, 0, len(lines))
	for _, line := range lines {
		product := cartstore.Product{ID: line.ProductID}
		if line.Product != nil {
			product = *line.Product
		}
		color := deref(line.SelectedColor)
		size := deref(line.SelectedSize)
		items = append(items, cartstore.Item{
			ID:            cartstore.ItemID(product.ID, size, color),
			Product:       product,
			Quantity:      line.Quantity,
			SelectedColor: color,
			SelectedSize:  size,
		})
	}
	return items
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
