// Package service реализует бизнес-логику магазина Lotus Leaf.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/HasanSh18/lotus-leaf-shop/internal/googleid"
	"github.com/HasanSh18/lotus-leaf-shop/internal/model"
	"github.com/HasanSh18/lotus-leaf-shop/internal/repository"
)

// ErrEmptyCart возвращается при попытке оформить заказ с пустой корзиной.
var (
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidQuantity возвращается при неположительном количестве в позиции заказа.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrProductUnavailable возвращается, если товар из корзины не найден или скрыт.
	ErrProductUnavailable = errors.New("product not available")
	// ErrInvalidPaymentMethod возвращается при неизвестном способе оплаты.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	// ErrInvalidStatus возвращается при статусе вне фиксированного набора.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrStatusTransition возвращается при недопустимом переходе статуса заказа.
	ErrStatusTransition = errors.New("status transition not allowed")
	// ErrInvalidCredentials возвращается при неверной паре email/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWeakPassword возвращается, если пароль не проходит правило стойкости.
	ErrWeakPassword = errors.New("password must be at least 8 characters and include uppercase, lowercase and a number")
	// ErrInvalidResetCode возвращается единым сообщением для отсутствующего
	// пользователя, неверного и просроченного кода — чтобы не раскрывать,
	// какие адреса зарегистрированы.
	ErrInvalidResetCode = errors.New("invalid or expired code")
	// ErrResetCodeExpired возвращается на финальном шаге восстановления пароля.
	ErrResetCodeExpired = errors.New("code has expired, request a new one")
	// ErrNoGoogleEmail возвращается, если токен Google не содержит email.
	ErrNoGoogleEmail = errors.New("no email returned from google")
	// ErrGoogleEmailNotVerified возвращается для неподтверждённого адреса Google.
	ErrGoogleEmailNotVerified = errors.New("google email is not verified")
	// ErrInvalidProduct возвращается при некорректных данных товара.
	ErrInvalidProduct = errors.New("invalid product data")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	GetProductByID(ctx context.Context, id string) (*model.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	CreateProduct(ctx context.Context, p *model.Product) error
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeactivateProduct(ctx context.Context, id string) error

	CreateOrder(ctx context.Context, order *model.Order, decs []repository.StockDecrement) error
	ListOrders(ctx context.Context) ([]model.Order, error)
	GetOrderByID(ctx context.Context, id string) (*model.Order, error)
	GetOrderByShortID(ctx context.Context, shortID string) (*model.Order, error)
	UpdateOrderState(ctx context.Context, id string, status model.OrderStatus, isPaid bool) (*model.Order, error)

	CreateUser(ctx context.Context, u *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserRole(ctx context.Context, userID string, role model.Role) error
	SetResetCode(ctx context.Context, userID, code string, expires time.Time) error
	UpdatePassword(ctx context.Context, userID string, passwordHash []byte) error
}

// Mailer описывает контракт отправки писем.
type Mailer interface {
	SendOrderEmail(ctx context.Context, order *model.Order) error
	SendPasswordResetEmail(ctx context.Context, email, code string) error
}

// WhatsAppLinker описывает построение WhatsApp-ссылки для заказа.
type WhatsAppLinker interface {
	OrderURL(order *model.Order) string
}

// GoogleVerifier описывает проверку Google ID-токена федеративного входа.
type GoogleVerifier interface {
	Verify(ctx context.Context, credential string) (*googleid.Claims, error)
}

// Service содержит бизнес-логику магазина.
type Service struct {
	repo       Repository
	mailer     Mailer
	whatsapp   WhatsAppLinker
	google     GoogleVerifier
	adminEmail string
	logger     *zap.Logger
}

// NewService создаёт новый сервис. adminEmail — адрес, которому назначается
// роль администратора; задаётся при конструировании, а не читается глобально.
func NewService(repo Repository, mailer Mailer, whatsapp WhatsAppLinker, google GoogleVerifier, adminEmail string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:       repo,
		mailer:     mailer,
		whatsapp:   whatsapp,
		google:     google,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}
