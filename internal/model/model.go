// Package model содержит доменные сущности магазина Lotus Leaf.
package model

import "time"

// Role определяет роль пользователя в системе.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Provider описывает способ регистрации пользователя.
type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
)

// User представляет зарегистрированного пользователя магазина.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Provider     Provider
	GoogleID     string
	Role         Role
	ResetCode    string
	ResetExpires *time.Time
	CreatedAt    time.Time
}

// Gender описывает целевую аудиторию товара.
type Gender string

const (
	GenderMen    Gender = "Men"
	GenderWomen  Gender = "Women"
	GenderUnisex Gender = "Unisex"
)

// IsValidGender проверяет принадлежность значения к допустимым аудиториям.
func IsValidGender(g Gender) bool {
	switch g {
	case GenderMen, GenderWomen, GenderUnisex:
		return true
	}
	return false
}

// Categories перечисляет фиксированный набор категорий каталога.
var Categories = []string{
	"Hoodie unisex",
	"Oversized unisex",
	"Sweater unisex",
	"Pants men",
	"Pants women",
	"Special set",
}

// IsValidCategory проверяет принадлежность категории к фиксированному набору.
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Variant описывает остаток товара для конкретной комбинации цвета и размера.
type Variant struct {
	Color string `json:"color"`
	Size  string `json:"size"`
	Stock int64  `json:"stock"`
}

// Product представляет товар каталога.
type Product struct {
	ID                 string
	Name               string
	Gender             Gender
	Category           string
	Description        string
	PriceCents         int64
	DiscountPriceCents *int64
	Stock              int64
	Colors             []string
	Sizes              []string
	Images             []string
	Variants           []Variant
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// VariantStock возвращает остаток точного варианта {color, size}.
// Отсутствующий вариант считается нулевым остатком.
func (p *Product) VariantStock(color, size string) int64 {
	for _, v := range p.Variants {
		if v.Color == color && v.Size == size {
			return v.Stock
		}
	}
	return 0
}

// VariantStockSum возвращает суммарный остаток по всем вариантам.
func VariantStockSum(variants []Variant) int64 {
	var sum int64
	for _, v := range variants {
		sum += v.Stock
	}
	return sum
}

// PaymentMethod описывает способ оплаты заказа.
type PaymentMethod string

const (
	PaymentWishNumber  PaymentMethod = "wish-number"
	PaymentWhatsAppPay PaymentMethod = "whatsapp-pay"
	PaymentCOD         PaymentMethod = "cod"
)

// IsValidPaymentMethod проверяет принадлежность способа оплаты к фиксированному набору.
func IsValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentWishNumber, PaymentWhatsAppPay, PaymentCOD:
		return true
	}
	return false
}

// OrderStatus описывает статус обработки заказа.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsValidOrderStatus проверяет принадлежность статуса к фиксированному набору.
func IsValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// allowedTransitions задаёт машину состояний заказа:
// pending → processing → shipped → delivered, отмена возможна
// только из pending и processing.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransitionTo сообщает, допустим ли переход статуса заказа.
// Переход в текущий статус считается допустимым (повторное сохранение).
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem представляет позицию заказа — снимок данных каталога
// на момент оформления. Цена фиксируется серверной стороной.
type OrderItem struct {
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Color      string `json:"color,omitempty"`
	Size       string `json:"size,omitempty"`
	Quantity   int64  `json:"quantity"`
}

// ShippingAddress содержит адрес доставки заказа.
type ShippingAddress struct {
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	AddressLine string `json:"addressLine"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Notes       string `json:"notes,omitempty"`
	IsDefault   bool   `json:"isDefault"`
}

// Order представляет оформленный заказ.
type Order struct {
	ID              string
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
	TotalCents      int64
	IsPaid          bool
	Status          OrderStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ProductFilter описывает необязательные параметры выборки каталога.
// Нулевое значение поля означает отсутствие ограничения.
type ProductFilter struct {
	Query         string
	Gender        Gender
	Category      string
	Color         string
	Size          string
	MinPriceCents *int64
	MaxPriceCents *int64
}
