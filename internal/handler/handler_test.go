package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/HasanSh18/lotus-leaf-shop/internal/middleware"
	"github.com/HasanSh18/lotus-leaf-shop/internal/model"
	"github.com/HasanSh18/lotus-leaf-shop/internal/repository"
	"github.com/HasanSh18/lotus-leaf-shop/internal/service"
)

type stubService struct {
	products    []model.Product
	productsErr error

	product    *model.Product
	productErr error

	order       *model.Order
	orders      []model.Order
	orderErr    error
	whatsappURL string

	user    *model.User
	userErr error

	forgotErr error
	verifyErr error
	resetErr  error
}

func (s *stubService) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	return s.products, s.productsErr
}

func (s *stubService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return s.product, s.productErr
}

func (s *stubService) CreateProduct(ctx context.Context, in service.ProductInput) (*model.Product, error) {
	return s.product, s.productErr
}

func (s *stubService) UpdateProduct(ctx context.Context, id string, in service.ProductInput) (*model.Product, error) {
	return s.product, s.productErr
}

func (s *stubService) DeleteProduct(ctx context.Context, id string) (*model.Product, error) {
	return s.product, s.productErr
}

func (s *stubService) PlaceOrder(ctx context.Context, in service.PlaceOrderInput) (*model.Order, string, error) {
	return s.order, s.whatsappURL, s.orderErr
}

func (s *stubService) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.orders, s.orderErr
}

func (s *stubService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return s.order, s.orderErr
}

func (s *stubService) GetOrderByShortID(ctx context.Context, shortID string) (*model.Order, error) {
	return s.order, s.orderErr
}

func (s *stubService) UpdateOrderState(ctx context.Context, id string, status *model.OrderStatus, isPaid *bool) (*model.Order, error) {
	return s.order, s.orderErr
}

func (s *stubService) RegisterUser(ctx context.Context, name, email, password string) (*model.User, error) {
	return s.user, s.userErr
}

func (s *stubService) AuthenticateUser(ctx context.Context, email, password string) (*model.User, error) {
	return s.user, s.userErr
}

func (s *stubService) GoogleLogin(ctx context.Context, credential string) (*model.User, error) {
	return s.user, s.userErr
}

func (s *stubService) ForgotPassword(ctx context.Context, email string) error {
	return s.forgotErr
}

func (s *stubService) VerifyResetCode(ctx context.Context, email, code string) error {
	return s.verifyErr
}

func (s *stubService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return s.resetErr
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	auth := middleware.NewAuthMiddleware("test-secret")

	return NewHandler(svc, logger, auth, nil)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func testProduct() *model.Product {
	return &model.Product{
		ID:         "p1",
		Name:       "Lotus Hoodie",
		Gender:     model.GenderUnisex,
		Category:   "Hoodie unisex",
		PriceCents: 2500,
		Stock:      5,
		Variants:   []model.Variant{{Color: "black", Size: "M", Stock: 5}},
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
}

func TestUnitsToCents_RoundsToNearestCent(t *testing.T) {
	tests := []struct {
		name  string
		units float64
		cents int64
	}{
		{
			name:  "exact value",
			units: 25.0,
			cents: 2500,
		},
		{
			name:  "product below float representation",
			units: 19.99,
			cents: 1999,
		},
		{
			name:  "small amount",
			units: 0.29,
			cents: 29,
		},
		{
			name:  "large amount",
			units: 1099.99,
			cents: 109999,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := unitsToCents(tt.units)
			if got != tt.cents {
				t.Fatalf("unitsToCents(%v) = %d, want %d", tt.units, got, tt.cents)
			}
			back := centsToUnits(tt.cents)
			if unitsToCents(back) != tt.cents {
				t.Fatalf("round trip of %d cents lost precision: %v", tt.cents, back)
			}
		})
	}
}

func TestListProducts_JSONResponse(t *testing.T) {
	svc := &stubService{products: []model.Product{*testProduct()}}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/products?gender=Men&minPrice=10", nil)
	rec := httptest.NewRecorder()

	h.ListProducts(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type = %q, want application/json", ct)
	}

	var resp []productResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 1 || resp[0].Price != 25.0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestListProducts_BadMinPrice(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/products?minPrice=abc", nil)
	rec := httptest.NewRecorder()

	h.ListProducts(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	svc := &stubService{productErr: repository.ErrProductNotFound}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/products/missing", nil)
	req = withURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	h.GetProduct(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreateOrder_Success(t *testing.T) {
	svc := &stubService{
		order: &model.Order{
			ID:            "o1",
			Items:         []model.OrderItem{{ProductID: "p1", Name: "Lotus Hoodie", PriceCents: 2500, Quantity: 2}},
			PaymentMethod: model.PaymentWishNumber,
			TotalCents:    5000,
			Status:        model.OrderStatusPending,
		},
		whatsappURL: "https://api.whatsapp.com/send?phone=1",
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(createOrderRequest{
		Items: []orderItemRequest{{ProductID: "p1", Quantity: 2}},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.CreateOrder(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusCreated)
	}

	var resp createOrderResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Order.Total != 50.0 {
		t.Fatalf("total = %v, want 50.0", resp.Order.Total)
	}
	if resp.WhatsAppURL == "" {
		t.Fatalf("whatsapp url missing in response")
	}
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	svc := &stubService{orderErr: service.ErrEmptyCart}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader([]byte(`{"items":[]}`)))
	rec := httptest.NewRecorder()

	h.CreateOrder(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp messageResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Cart is empty" {
		t.Fatalf("message = %q, want Cart is empty", resp.Message)
	}
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	svc := &stubService{
		orderErr: &repository.InsufficientStockError{
			ProductName: "Lotus Hoodie",
			Color:       "black",
			Size:        "L",
			Available:   0,
		},
	}
	h := newTestHandler(t, svc)

	body := []byte(`{"items":[{"productId":"p1","color":"black","size":"L","quantity":1}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.CreateOrder(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetOrderByShortID_TooShort(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/by-short/ab", nil)
	req = withURLParam(req, "shortID", "ab")
	rec := httptest.NewRecorder()

	h.GetOrderByShortID(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetOrderByShortID_RejectsWildcardCharacters(t *testing.T) {
	// Заказ с адресом в стабе: просочившийся шаблон вернул бы его любому.
	svc := &stubService{
		order: &model.Order{
			ID:              "o1",
			ShippingAddress: model.ShippingAddress{FullName: "Jean Valjean", Phone: "+961111111"},
			Status:          model.OrderStatusPending,
		},
	}
	h := newTestHandler(t, svc)

	for _, shortID := range []string{"________", "%%%%", "ab_d", "12%4"} {
		req := httptest.NewRequest(http.MethodGet, "/api/orders/by-short/"+url.PathEscape(shortID), nil)
		req = withURLParam(req, "shortID", shortID)
		rec := httptest.NewRecorder()

		h.GetOrderByShortID(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("shortID %q: status = %d, want %d", shortID, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestGetOrderByShortID_AcceptsUUIDSuffix(t *testing.T) {
	svc := &stubService{
		order: &model.Order{ID: "o1", Status: model.OrderStatusPending},
	}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/by-short/1a2b-3c4d", nil)
	req = withURLParam(req, "shortID", "1a2b-3c4d")
	rec := httptest.NewRecorder()

	h.GetOrderByShortID(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestUpdateOrder_BadTransition(t *testing.T) {
	svc := &stubService{orderErr: service.ErrStatusTransition}
	h := newTestHandler(t, svc)

	body := []byte(`{"status":"shipped"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/orders/o1", bytes.NewReader(body))
	req = withURLParam(req, "id", "o1")
	rec := httptest.NewRecorder()

	h.UpdateOrder(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRegister_Success(t *testing.T) {
	svc := &stubService{
		user: &model.User{ID: "u1", Name: "User", Email: "user@example.com", Role: model.RoleUser},
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(registerRequest{
		Name:     "User",
		Email:    "user@example.com",
		Password: "Abcdefg1",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusCreated)
	}

	var resp authResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("token missing in response")
	}
	if resp.User.Email != "user@example.com" {
		t.Fatalf("user email = %q, want user@example.com", resp.User.Email)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	body := []byte(`{"name":"User","email":""}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := &stubService{userErr: repository.ErrUserExists}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(registerRequest{
		Name:     "User",
		Email:    "user@example.com",
		Password: "Abcdefg1",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp messageResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Email already registered" {
		t.Fatalf("message = %q, want Email already registered", resp.Message)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := &stubService{userErr: service.ErrInvalidCredentials}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(loginRequest{
		Email:    "user@example.com",
		Password: "Wrong1password",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestGoogleLogin_NoCredential(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/google-login", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	h.GoogleLogin(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestForgotPassword_GenericResponse(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	body := []byte(`{"email":"ghost@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.ForgotPassword(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp messageResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "If that email exists, a reset code was sent." {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestDeleteProduct_ReturnsDeactivated(t *testing.T) {
	p := testProduct()
	p.IsActive = false
	svc := &stubService{product: p}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/products/p1", nil)
	req = withURLParam(req, "id", "p1")
	rec := httptest.NewRecorder()

	h.DeleteProduct(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var resp deleteProductResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Product deactivated" {
		t.Fatalf("message = %q, want Product deactivated", resp.Message)
	}
	if resp.Product.IsActive {
		t.Fatalf("returned product must be inactive")
	}
}
