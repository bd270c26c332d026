package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HasanSh18/lotus-leaf-shop/internal/model"
	"github.com/HasanSh18/lotus-leaf-shop/internal/repository"
)

// CartLine описывает позицию корзины от клиента. Цена и имя носят
// справочный характер: при оформлении используются данные каталога.
type CartLine struct {
	ProductID  string
	Name       string
	Color      string
	Size       string
	Quantity   int64
	PriceCents int64
}

// PlaceOrderInput содержит данные оформления заказа.
type PlaceOrderInput struct {
	Lines           []CartLine
	ShippingAddress model.ShippingAddress
	PaymentMethod   model.PaymentMethod
}

// PlaceOrder проверяет корзину против актуальных остатков каталога, считает
// сумму по серверным ценам, сохраняет снимок заказа и списывает остатки.
// Валидация всей корзины выполняется до каких-либо изменений: при отказе
// любой позиции ни один остаток не списывается и заказ не создаётся.
// Возвращает заказ и WhatsApp-ссылку с уведомлением.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*model.Order, string, error) {
	if len(in.Lines) == 0 {
		return nil, "", ErrEmptyCart
	}

	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = model.PaymentWishNumber
	}
	if !model.IsValidPaymentMethod(paymentMethod) {
		return nil, "", fmt.Errorf("%w: %s", ErrInvalidPaymentMethod, paymentMethod)
	}

	ids := make([]string, 0, len(in.Lines))
	for _, line := range in.Lines {
		ids = append(ids, line.ProductID)
	}

	products, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, "", err
	}

	byID := make(map[string]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	var totalCents int64
	items := make([]model.OrderItem, 0, len(in.Lines))
	decs := make([]repository.StockDecrement, 0, len(in.Lines))

	for _, line := range in.Lines {
		product, ok := byID[line.ProductID]
		if !ok || !product.IsActive {
			name := line.Name
			if name == "" {
				name = line.ProductID
			}
			return nil, "", fmt.Errorf("%w: %s", ErrProductUnavailable, name)
		}

		if line.Quantity <= 0 {
			return nil, "", ErrInvalidQuantity
		}

		// Остаток берётся из точного варианта, если варианты есть и заданы
		// цвет с размером; отсутствующий вариант равен нулю.
		fromVariant := len(product.Variants) > 0 && line.Color != "" && line.Size != ""

		var available int64
		if fromVariant {
			available = product.VariantStock(line.Color, line.Size)
		} else {
			available = product.Stock
		}

		if available < line.Quantity {
			return nil, "", &repository.InsufficientStockError{
				ProductName: product.Name,
				Color:       line.Color,
				Size:        line.Size,
				Available:   available,
			}
		}

		totalCents += product.PriceCents * line.Quantity

		items = append(items, model.OrderItem{
			ProductID:  product.ID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			Color:      line.Color,
			Size:       line.Size,
			Quantity:   line.Quantity,
		})

		decs = append(decs, repository.StockDecrement{
			ProductID:   product.ID,
			ProductName: product.Name,
			Color:       line.Color,
			Size:        line.Size,
			Quantity:    line.Quantity,
			FromVariant: fromVariant,
		})
	}

	order := &model.Order{
		ID:              uuid.NewString(),
		Items:           items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   paymentMethod,
		TotalCents:      totalCents,
		IsPaid:          false,
		Status:          model.OrderStatusPending,
	}

	if err := s.repo.CreateOrder(ctx, order, decs); err != nil {
		return nil, "", err
	}

	s.dispatchOrderEmail(ctx, order)

	var whatsappURL string
	if s.whatsapp != nil {
		whatsappURL = s.whatsapp.OrderURL(order)
	}

	return order, whatsappURL, nil
}

// dispatchOrderEmail отправляет письмо о заказе в фоне. Ошибка отправки
// логируется и не влияет на успешный ответ об оформлении.
func (s *Service) dispatchOrderEmail(ctx context.Context, order *model.Order) {
	if s.mailer == nil {
		return
	}

	emailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)

	go func() {
		defer cancel()
		if err := s.mailer.SendOrderEmail(emailCtx, order); err != nil {
			s.logger.Error("send order email", zap.Error(err), zap.String("orderID", order.ID))
		}
	}()
}

// ListOrders возвращает все заказы от новых к старым.
func (s *Service) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.repo.ListOrders(ctx)
}

// GetOrder возвращает заказ по идентификатору.
func (s *Service) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

// GetOrderByShortID возвращает заказ по суффиксу идентификатора.
func (s *Service) GetOrderByShortID(ctx context.Context, shortID string) (*model.Order, error) {
	return s.repo.GetOrderByShortID(ctx, shortID)
}

// UpdateOrderState меняет статус и признак оплаты заказа. Статус обязан
// входить в фиксированный набор и быть достижимым из текущего; переход
// в delivered принудительно помечает заказ оплаченным.
func (s *Service) UpdateOrderState(ctx context.Context, id string, status *model.OrderStatus, isPaid *bool) (*model.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newStatus := order.Status
	if status != nil {
		if !model.IsValidOrderStatus(*status) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, *status)
		}
		if !order.Status.CanTransitionTo(*status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrStatusTransition, order.Status, *status)
		}
		newStatus = *status
	}

	newPaid := order.IsPaid
	if isPaid != nil {
		newPaid = *isPaid
	}
	if newStatus == model.OrderStatusDelivered {
		newPaid = true
	}

	return s.repo.UpdateOrderState(ctx, id, newStatus, newPaid)
}
