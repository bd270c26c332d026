package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/HasanSh18/lotus-leaf-shop/internal/model"
	"github.com/HasanSh18/lotus-leaf-shop/internal/repository"
	"github.com/HasanSh18/lotus-leaf-shop/internal/service"
)

type orderItemRequest struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Color     string  `json:"color"`
	Size      string  `json:"size"`
	Quantity  int64   `json:"quantity"`
}

type createOrderRequest struct {
	Items           []orderItemRequest    `json:"items"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
}

type createOrderResponse struct {
	Order       orderResponse `json:"order"`
	WhatsAppURL string        `json:"whatsappUrl,omitempty"`
}

// CreateOrder оформляет заказ из корзины покупателя.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "Invalid order data")
		return
	}

	in := service.PlaceOrderInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   model.PaymentMethod(req.PaymentMethod),
	}
	for _, item := range req.Items {
		in.Lines = append(in.Lines, service.CartLine{
			ProductID:  item.ProductID,
			Name:       item.Name,
			Color:      item.Color,
			Size:       item.Size,
			Quantity:   item.Quantity,
			PriceCents: unitsToCents(item.Price),
		})
	}

	order, whatsappURL, err := h.service.PlaceOrder(r.Context(), in)
	if err != nil {
		var stockErr *repository.InsufficientStockError
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			h.writeMessage(w, http.StatusBadRequest, "Cart is empty")
		case errors.Is(err, service.ErrInvalidQuantity):
			h.writeMessage(w, http.StatusBadRequest, "Invalid quantity")
		case errors.Is(err, service.ErrProductUnavailable),
			errors.Is(err, service.ErrInvalidPaymentMethod):
			h.writeMessage(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &stockErr):
			h.writeMessage(w, http.StatusBadRequest, stockErr.Error())
		default:
			h.internalError(w, "place order", err)
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, createOrderResponse{
		Order:       toOrderResponse(order),
		WhatsAppURL: whatsappURL,
	})
}

// ListOrders возвращает все заказы (только администратор).
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		h.internalError(w, "list orders", err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// GetOrder возвращает заказ по полному идентификатору (только администратор).
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			h.writeMessage(w, http.StatusNotFound, "Order not found")
			return
		}
		h.internalError(w, "get order", err, zap.String("orderID", id))
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// isValidShortID проверяет суффикс идентификатора заказа: длина от 4 до 16
// символов и только алфавит UUID. Всё прочее отклоняется до запроса к БД.
func isValidShortID(shortID string) bool {
	if len(shortID) < 4 || len(shortID) > 16 {
		return false
	}
	for _, ch := range shortID {
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		case ch == '-':
		default:
			return false
		}
	}
	return true
}

// GetOrderByShortID возвращает заказ по последним символам идентификатора.
// Используется покупателем для отслеживания без личного кабинета.
func (h *Handler) GetOrderByShortID(w http.ResponseWriter, r *http.Request) {
	shortID := chi.URLParam(r, "shortID")

	if !isValidShortID(shortID) {
		h.writeMessage(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	order, err := h.service.GetOrderByShortID(r.Context(), shortID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			h.writeMessage(w, http.StatusNotFound, "Order not found")
			return
		}
		h.internalError(w, "get order by short id", err, zap.String("shortID", shortID))
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

type updateOrderRequest struct {
	Status *string `json:"status"`
	IsPaid *bool   `json:"isPaid"`
}

// UpdateOrder меняет статус и/или признак оплаты заказа (только администратор).
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "Invalid order data")
		return
	}

	var status *model.OrderStatus
	if req.Status != nil {
		s := model.OrderStatus(*req.Status)
		status = &s
	}

	order, err := h.service.UpdateOrderState(r.Context(), id, status, req.IsPaid)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			h.writeMessage(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrStatusTransition):
			h.writeMessage(w, http.StatusBadRequest, err.Error())
		default:
			h.internalError(w, "update order", err, zap.String("orderID", id))
		}
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderResponse(order))
}
