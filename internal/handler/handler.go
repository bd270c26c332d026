// Package handler содержит HTTP-обработчики API магазина Lotus Leaf.
package handler

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/HasanSh18/lotus-leaf-shop/internal/middleware"
	"github.com/HasanSh18/lotus-leaf-shop/internal/model"
	"github.com/HasanSh18/lotus-leaf-shop/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	CreateProduct(ctx context.Context, in service.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, in service.ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) (*model.Product, error)

	PlaceOrder(ctx context.Context, in service.PlaceOrderInput) (*model.Order, string, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	GetOrderByShortID(ctx context.Context, shortID string) (*model.Order, error)
	UpdateOrderState(ctx context.Context, id string, status *model.OrderStatus, isPaid *bool) (*model.Order, error)

	RegisterUser(ctx context.Context, name, email, password string) (*model.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (*model.User, error)
	GoogleLogin(ctx context.Context, credential string) (*model.User, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// Handler реализует HTTP-обработчики API магазина.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	origins        []string
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
// origins — список доменов, которым разрешены кросс-доменные запросы.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, origins []string) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		origins:        origins,
	}
}

// writeJSON сериализует ответ; ошибка кодирования логируется, статус уже отправлен.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

// writeMessage отправляет ответ вида {"message": "..."}.
func (h *Handler) writeMessage(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, messageResponse{Message: msg})
}

// internalError логирует подробности и возвращает клиенту обобщённое сообщение.
func (h *Handler) internalError(w http.ResponseWriter, msg string, err error, fields ...zap.Field) {
	h.logger.Error(msg, append(fields, zap.Error(err))...)
	h.writeMessage(w, http.StatusInternalServerError, "Server error")
}

func centsToUnits(cents int64) float64 {
	return float64(cents) / 100
}

// unitsToCents переводит денежную сумму в центы с округлением до ближайшего
// целого: произведение вроде 19.99*100 в float64 чуть меньше 1999 и при
// усечении потеряло бы цент.
func unitsToCents(units float64) int64 {
	return int64(math.Round(units * 100))
}

type productResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Gender        string          `json:"gender"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Price         float64         `json:"price"`
	DiscountPrice *float64        `json:"discountPrice,omitempty"`
	Stock         int64           `json:"stock"`
	Colors        []string        `json:"colors"`
	Sizes         []string        `json:"sizes"`
	Images        []string        `json:"images"`
	Variants      []model.Variant `json:"variants"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
}

func toProductResponse(p *model.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Gender:      string(p.Gender),
		Category:    p.Category,
		Description: p.Description,
		Price:       centsToUnits(p.PriceCents),
		Stock:       p.Stock,
		Colors:      p.Colors,
		Sizes:       p.Sizes,
		Images:      p.Images,
		Variants:    p.Variants,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
	if p.DiscountPriceCents != nil {
		v := centsToUnits(*p.DiscountPriceCents)
		resp.DiscountPrice = &v
	}
	if resp.Variants == nil {
		resp.Variants = []model.Variant{}
	}
	return resp
}

type orderItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Color     string  `json:"color,omitempty"`
	Size      string  `json:"size,omitempty"`
	Quantity  int64   `json:"quantity"`
}

type orderResponse struct {
	ID              string                `json:"id"`
	Items           []orderItemResponse   `json:"items"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	Total           float64               `json:"total"`
	IsPaid          bool                  `json:"isPaid"`
	Status          string                `json:"status"`
	CreatedAt       string                `json:"createdAt"`
	UpdatedAt       string                `json:"updatedAt"`
}

func toOrderResponse(o *model.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     centsToUnits(item.PriceCents),
			Color:     item.Color,
			Size:      item.Size,
			Quantity:  item.Quantity,
		})
	}

	return orderResponse{
		ID:              o.ID,
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   string(o.PaymentMethod),
		Total:           centsToUnits(o.TotalCents),
		IsPaid:          o.IsPaid,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       o.UpdatedAt.Format(time.RFC3339),
	}
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (h *Handler) writeAuthResponse(w http.ResponseWriter, status int, u *model.User) {
	token, err := h.authMiddleware.IssueToken(u)
	if err != nil {
		h.internalError(w, "issue token", err)
		return
	}

	h.writeJSON(w, status, authResponse{
		Token: token,
		User: userResponse{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
			Role:  string(u.Role),
		},
	})
}
