package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/baxeinwear/storefront-backend/api/middleware"
	"github.com/baxeinwear/storefront-backend/internal/auth"
	"github.com/baxeinwear/storefront-backend/internal/cart"
	"github.com/baxeinwear/storefront-backend/internal/orders"
	"github.com/baxeinwear/storefront-backend/internal/payments"
	"github.com/baxeinwear/storefront-backend/internal/sales"
	"github.com/baxeinwear/storefront-backend/internal/users"
	"github.com/baxeinwear/storefront-backend/pkg/config"
	"github.com/baxeinwear/storefront-backend/pkg/enums"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
)

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var out envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type stubAuthService struct {
	resp    *auth.LoginResponse
	err     error
	revoked string
	lastReq auth.LoginRequest
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.lastReq = req
	return s.resp, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.revoked = accessID
	return s.err
}

type stubRegisterService struct {
	user *users.UserDTO
	err  error
}

func (s stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	return s.user, s.err
}

func TestAuthLoginReturnsSessionPayload(t *testing.T) {
	svc := &stubAuthService{resp: &auth.LoginResponse{
		User:         &users.UserDTO{ID: uuid.New(), Name: "Ana", Email: "ana@example.com", Role: enums.UserRoleCustomer},
		ProfileType:  "cliente",
		Token:        "access-token",
		RefreshToken: "refresh-token",
	}}

	resp := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(resp, jsonRequest(http.MethodPost, "/api/login", `{"email":"ana@example.com","password":"secret1"}`))

	require.Equal(t, http.StatusOK, resp.Code)
	body := decodeEnvelope(t, resp)
	assert.NotEmpty(t, body.Message)

	var data struct {
		User        users.UserDTO `json:"usuario"`
		ProfileType string        `json:"tipoPerfil"`
		Token       string        `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, "cliente", data.ProfileType)
	assert.Equal(t, "access-token", data.Token)
	assert.Equal(t, "ana@example.com", data.User.Email)
	assert.Equal(t, "ana@example.com", svc.lastReq.Email)
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}

	resp := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(resp, jsonRequest(http.MethodPost, "/api/login", `{"email":"ana@example.com","password":"wrong"}`))

	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "invalid credentials", decodeEnvelope(t, resp).Error)
}

func TestAuthLoginValidatesBody(t *testing.T) {
	resp := httptest.NewRecorder()
	AuthLogin(&stubAuthService{}, nil).ServeHTTP(resp, jsonRequest(http.MethodPost, "/api/login", `{"email":"not-an-email","password":"x"}`))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "email must be a valid email", decodeEnvelope(t, resp).Error)
}

func TestAuthRegisterReturnsCreated(t *testing.T) {
	user := &users.UserDTO{ID: uuid.New(), Name: "Loja", Email: "loja@example.com", Role: enums.UserRoleMerchant}
	body := `{"fullName":"Loja","email":"loja@example.com","password":"secret1","confirmPassword":"secret1","accountType":"lojista","empresa":"Loja LTDA"}`

	resp := httptest.NewRecorder()
	AuthRegister(stubRegisterService{user: user}, nil).ServeHTTP(resp, jsonRequest(http.MethodPost, "/api/cadastro", body))

	require.Equal(t, http.StatusCreated, resp.Code)
	var data users.UserDTO
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &data))
	assert.Equal(t, user.ID, data.ID)
}

func TestAuthRegisterSurfacesDuplicateEmail(t *testing.T) {
	svc := stubRegisterService{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	body := `{"fullName":"Ana","email":"ana@example.com","password":"secret1","confirmPassword":"secret1","accountType":"cliente"}`

	resp := httptest.NewRecorder()
	AuthRegister(svc, nil).ServeHTTP(resp, jsonRequest(http.MethodPost, "/api/cadastro", body))

	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestAuthLogoutRevokesContextSession(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req = req.WithContext(middleware.WithAccessID(req.Context(), "jti-123"))

	resp := httptest.NewRecorder()
	AuthLogout(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "jti-123", svc.revoked)
}

type stubCartService struct {
	getUser uuid.UUID
	saved   cart.SaveCartRequest
	err     error
}

func (s *stubCartService) Get(ctx context.Context, userID uuid.UUID) (*cart.CartDTO, error) {
	s.getUser = userID
	return &cart.CartDTO{Items: []cart.CartLineDTO{}}, s.err
}

func (s *stubCartService) Save(ctx context.Context, req cart.SaveCartRequest) (*cart.CartDTO, error) {
	s.saved = req
	return &cart.CartDTO{Items: []cart.CartLineDTO{}}, s.err
}

func TestCartListRequiresUser(t *testing.T) {
	resp := httptest.NewRecorder()
	CartList(&stubCartService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/cart/list", nil))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "usuarioId is required", decodeEnvelope(t, resp).Error)
}

func TestCartListFallsBackToTokenSubject(t *testing.T) {
	svc := &stubCartService{}
	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/cart/list", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))

	resp := httptest.NewRecorder()
	CartList(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, userID, svc.getUser)
}

func TestCartSaveDecodesLines(t *testing.T) {
	svc := &stubCartService{}
	userID := uuid.New()
	productID := uuid.New()
	body := `{"usuarioId":"` + userID.String() + `","items":[{"productId":"` + productID.String() + `","quantity":2,"selectedColor":"Preto","selectedSize":"M"}]}`

	resp := httptest.NewRecorder()
	CartSave(svc, nil).ServeHTTP(resp, jsonRequest(http.MethodPost, "/api/cart/create", body))

	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, svc.saved.Items, 1)
	assert.Equal(t, productID, svc.saved.Items[0].ProductID)
	assert.Equal(t, 2, svc.saved.Items[0].Quantity)
	require.NotNil(t, svc.saved.Items[0].SelectedColor)
	assert.Equal(t, "Preto", *svc.saved.Items[0].SelectedColor)
}

func TestCartSaveRejectsZeroQuantity(t *testing.T) {
	body := `{"usuarioId":"` + uuid.NewString() + `","items":[{"productId":"` + uuid.NewString() + `","quantity":0}]}`

	resp := httptest.NewRecorder()
	CartSave(&stubCartService{}, nil).ServeHTTP(resp, jsonRequest(http.MethodPost, "/api/cart/create", body))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

type stubOrderService struct {
	detailUser  uuid.UUID
	detailOrder uuid.UUID
	err         error
}

func (s *stubOrderService) Create(ctx context.Context, req orders.CreateOrderRequest) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: uuid.New(), Status: enums.OrderStatusPendingPayment}, s.err
}

func (s *stubOrderService) List(ctx context.Context, userID uuid.UUID) ([]orders.OrderDTO, error) {
	return []orders.OrderDTO{}, s.err
}

func (s *stubOrderService) Detail(ctx context.Context, userID, orderID uuid.UUID) (*orders.OrderDTO, error) {
	s.detailUser = userID
	s.detailOrder = orderID
	return &orders.OrderDTO{ID: orderID}, s.err
}

type stubPaymentService struct {
	input payments.ConfirmInput
	err   error
}

func (s *stubPaymentService) Confirm(ctx context.Context, input payments.ConfirmInput) (*payments.ConfirmResult, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return &payments.ConfirmResult{OrderID: input.OrderID, Status: enums.OrderStatusInTransit}, nil
}

func orderRouter(orderSvc orders.Service, paySvc payments.Service) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/orders/{id}", OrderDetail(orderSvc, nil))
	r.Patch("/api/orders/{id}", OrderAction(paySvc, nil))
	return r
}

func TestOrderDetailParsesPathAndQuery(t *testing.T) {
	svc := &stubOrderService{}
	orderID := uuid.New()
	userID := uuid.New()

	resp := httptest.NewRecorder()
	orderRouter(svc, &stubPaymentService{}).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/orders/"+orderID.String()+"?usuarioId="+userID.String(), nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, orderID, svc.detailOrder)
	assert.Equal(t, userID, svc.detailUser)
}

func TestOrderDetailRejectsMalformedID(t *testing.T) {
	resp := httptest.NewRecorder()
	orderRouter(&stubOrderService{}, &stubPaymentService{}).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/orders/not-a-uuid?usuarioId="+uuid.NewString(), nil))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestOrderActionConfirmsPayment(t *testing.T) {
	paySvc := &stubPaymentService{}
	orderID := uuid.New()
	userID := uuid.New()
	body := `{"usuarioId":"` + userID.String() + `","action":"confirm_payment","payment":{"valor":115,"tipoPagamento":"PIX","frete":15}}`

	resp := httptest.NewRecorder()
	orderRouter(&stubOrderService{}, paySvc).ServeHTTP(resp, jsonRequest(http.MethodPatch, "/api/orders/"+orderID.String(), body))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, orderID, paySvc.input.OrderID)
	assert.Equal(t, userID, paySvc.input.UserID)
	assert.True(t, paySvc.input.Amount.Equal(decimal.NewFromInt(115)))
	require.NotNil(t, paySvc.input.ShippingFee)
	assert.True(t, paySvc.input.ShippingFee.Equal(decimal.NewFromInt(15)))
}

func TestOrderActionRejectsUnknownAction(t *testing.T) {
	paySvc := &stubPaymentService{}
	body := `{"usuarioId":"` + uuid.NewString() + `","action":"refund","payment":{"valor":10,"tipoPagamento":"PIX"}}`

	resp := httptest.NewRecorder()
	orderRouter(&stubOrderService{}, paySvc).ServeHTTP(resp, jsonRequest(http.MethodPatch, "/api/orders/"+uuid.NewString(), body))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, uuid.Nil, paySvc.input.OrderID)
}

func TestOrderActionSurfacesStateConflict(t *testing.T) {
	paySvc := &stubPaymentService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "order is IN_TRANSIT (Em trânsito); only PENDING_PAYMENT orders can be paid")}
	body := `{"usuarioId":"` + uuid.NewString() + `","action":"confirm_payment","payment":{"valor":10,"tipoPagamento":"PIX"}}`

	resp := httptest.NewRecorder()
	orderRouter(&stubOrderService{}, paySvc).ServeHTTP(resp, jsonRequest(http.MethodPatch, "/api/orders/"+uuid.NewString(), body))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, decodeEnvelope(t, resp).Error, "PENDING_PAYMENT")
}

type stubSalesService struct {
	query   sales.HistoryQuery
	history *sales.History
}

func (s *stubSalesService) History(ctx context.Context, query sales.HistoryQuery) (*sales.History, error) {
	s.query = query
	return s.history, nil
}

func sampleHistory() *sales.History {
	return &sales.History{
		Products: []sales.ProductSales{{
			ProductID:    uuid.New(),
			Name:         "Camiseta",
			CategoryName: "Camisetas",
			UnitsSold:    3,
			Revenue:      decimal.RequireFromString("150.00"),
			OrderCount:   2,
			AveragePrice: decimal.RequireFromString("50.00"),
		}},
		Summary: sales.Summary{UnitsSold: 3, Revenue: decimal.RequireFromString("150.00"), OrderCount: 2},
	}
}

func TestSalesHistoryParsesFilters(t *testing.T) {
	svc := &stubSalesService{history: sampleHistory()}
	userID := uuid.New()
	categoryID := uuid.New()
	target := "/api/sales/history?usuarioId=" + userID.String() + "&categoriaId=" + categoryID.String() + "&dataInicio=2024-01-01&dataFim=2024-01-31"

	resp := httptest.NewRecorder()
	SalesHistory(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, userID, svc.query.UserID)
	require.NotNil(t, svc.query.CategoryID)
	assert.Equal(t, categoryID, *svc.query.CategoryID)
	require.NotNil(t, svc.query.Range.End)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC), *svc.query.Range.End)
}

func TestSalesHistoryRejectsInvertedRange(t *testing.T) {
	target := "/api/sales/history?usuarioId=" + uuid.NewString() + "&dataInicio=2024-02-01&dataFim=2024-01-01"

	resp := httptest.NewRecorder()
	SalesHistory(&stubSalesService{history: sampleHistory()}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSalesHistoryRejectsUnknownFormat(t *testing.T) {
	target := "/api/sales/history?usuarioId=" + uuid.NewString() + "&formato=pdf"

	resp := httptest.NewRecorder()
	SalesHistory(&stubSalesService{history: sampleHistory()}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSalesHistoryStreamsSpreadsheet(t *testing.T) {
	target := "/api/sales/history?usuarioId=" + uuid.NewString() + "&formato=xlsx"

	resp := httptest.NewRecorder()
	SalesHistory(&stubSalesService{history: sampleHistory()}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, sales.XLSXContentType, resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), ".xlsx")

	file, err := xlsx.OpenBinary(resp.Body.Bytes())
	require.NoError(t, err)
	require.NotEmpty(t, file.Sheets)
	assert.Equal(t, "Camiseta", file.Sheets[0].Rows[1].Cells[0].Value)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func TestHealthReadyReportsDependencyFailure(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	resp := httptest.NewRecorder()
	HealthReady(cfg, stubPinger{}, stubPinger{err: errors.New("redis down")}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)

	resp = httptest.NewRecorder()
	HealthReady(cfg, stubPinger{}, stubPinger{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "dev", resp.Header().Get("X-Baxeinwear-Env"))
}
