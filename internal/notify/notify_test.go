package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HasanSh18/lotus-leaf-shop/internal/model"
)

func testOrder() *model.Order {
	return &model.Order{
		ID: "a1b2c3d4-0000-0000-0000-000000000000",
		Items: []model.OrderItem{
			{ProductID: "p1", Name: "Lotus Hoodie", PriceCents: 2500, Color: "black", Size: "M", Quantity: 2},
		},
		ShippingAddress: model.ShippingAddress{
			FullName:    "Jean Valjean",
			Phone:       "+961111111",
			Email:       "jean@example.com",
			AddressLine: "1 Main St",
			City:        "Beirut",
			Country:     "Lebanon",
		},
		PaymentMethod: model.PaymentWishNumber,
		TotalCents:    5000,
		Status:        model.OrderStatusPending,
	}
}

func TestSendOrderEmail_OK(t *testing.T) {
	var got emailRequest
	var auth string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/emails" {
			t.Fatalf("path = %s, want /emails", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key", "shop@lotusleaf.shop", "admin@lotusleaf.shop")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := client.SendOrderEmail(ctx, testOrder()); err != nil {
		t.Fatalf("SendOrderEmail error: %v", err)
	}

	if auth != "Bearer test-key" {
		t.Fatalf("authorization = %q, want Bearer test-key", auth)
	}
	if got.To != "admin@lotusleaf.shop" {
		t.Fatalf("to = %q, want admin@lotusleaf.shop", got.To)
	}
	if got.From != "shop@lotusleaf.shop" {
		t.Fatalf("from = %q, want shop@lotusleaf.shop", got.From)
	}
	if !strings.Contains(got.Text, "Lotus Hoodie (black/M) x 2 = $50.00") {
		t.Fatalf("email text does not contain item line: %q", got.Text)
	}
	if !strings.Contains(got.Text, "Total: $50.00") {
		t.Fatalf("email text does not contain total: %q", got.Text)
	}
}

func TestSendOrderEmail_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key", "shop@lotusleaf.shop", "admin@lotusleaf.shop")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := client.SendOrderEmail(ctx, testOrder()); err == nil {
		t.Fatalf("expected error for non-2xx response")
	}
}

func TestSendEmail_SkippedWithoutAPIKey(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "", "shop@lotusleaf.shop", "admin@lotusleaf.shop")

	if err := client.SendOrderEmail(context.Background(), testOrder()); err != nil {
		t.Fatalf("SendOrderEmail error: %v", err)
	}
	if called {
		t.Fatalf("email must not be sent without an API key")
	}
}

func TestSendPasswordResetEmail_ContainsCode(t *testing.T) {
	var got emailRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key", "shop@lotusleaf.shop", "admin@lotusleaf.shop")

	if err := client.SendPasswordResetEmail(context.Background(), "user@example.com", "123456"); err != nil {
		t.Fatalf("SendPasswordResetEmail error: %v", err)
	}

	if got.To != "user@example.com" {
		t.Fatalf("to = %q, want user@example.com", got.To)
	}
	if !strings.Contains(got.Text, "123456") {
		t.Fatalf("email text does not contain the code: %q", got.Text)
	}
}

func TestOrderURL(t *testing.T) {
	l := NewWhatsAppLinker("https://api.whatsapp.com/send", "+961222222")

	u := l.OrderURL(testOrder())
	if !strings.HasPrefix(u, "https://api.whatsapp.com/send?phone=") {
		t.Fatalf("unexpected url prefix: %q", u)
	}
	if !strings.Contains(u, "%2B961222222") {
		t.Fatalf("url does not contain escaped admin number: %q", u)
	}
	if !strings.Contains(u, "Total%3A+%2450.00") {
		t.Fatalf("url does not contain escaped total: %q", u)
	}
}

func TestOrderURL_EmptyWithoutNumber(t *testing.T) {
	l := NewWhatsAppLinker("https://api.whatsapp.com/send", "")

	if u := l.OrderURL(testOrder()); u != "" {
		t.Fatalf("expected empty url without admin number, got %q", u)
	}
}
