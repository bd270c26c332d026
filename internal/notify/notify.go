// Package notify отправляет уведомления о заказах и кодах восстановления
// через почтовый сервис Resend и формирует WhatsApp-ссылки.
package notify

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

	"github.com/HasanSh18/lotus-leaf-shop/internal/model"
)

// Client инкапсулирует HTTP-взаимодействие с почтовым сервисом Resend.
type Client struct {
	baseURL    string
	apiKey     string
	from       string
	adminEmail string
	httpClient *http.Client
}

// NewClient создаёт почтовый клиент. При пустом ключе API отправка писем
// пропускается без ошибки — сервис работает и без настроенной почты.
func NewClient(baseURL, apiKey, from, adminEmail string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		from:       from,
		adminEmail: adminEmail,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type emailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (c *Client) sendEmail(ctx context.Context, to, subject, text string) error {
	if c == nil || c.apiKey == "" || c.from == "" {
		return nil
	}

	body, err := json.Marshal(emailRequest{
		From:    c.from,
		To:      to,
		Subject: subject,
		Text:    text,
	})
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// SendOrderEmail отправляет администратору письмо о новом заказе.
// Ошибка отправки не должна отменять уже созданный заказ: вызывающая
// сторона логирует её и продолжает работу.
func (c *Client) SendOrderEmail(ctx context.Context, order *model.Order) error {
	if order == nil {
		return nil
	}

	var items strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&items, "- %s (%s/%s) x %d = $%.2f\n",
			item.Name, item.Color, item.Size, item.Quantity,
			float64(item.PriceCents*item.Quantity)/100)
	}

	addr := order.ShippingAddress
	text := fmt.Sprintf(`New order placed:

Customer: %s
Phone: %s
Email: %s
Address: %s, %s, %s

Items:
%s
Total: $%.2f
Payment Method: %s
Status: %s

Order ID: %s
`,
		addr.FullName, addr.Phone, addr.Email,
		addr.AddressLine, addr.City, addr.Country,
		items.String(),
		float64(order.TotalCents)/100, order.PaymentMethod, order.Status, order.ID,
	)

	subject := fmt.Sprintf("New order from %s", addr.FullName)

	return c.sendEmail(ctx, c.adminEmail, subject, text)
}

// SendPasswordResetEmail отправляет пользователю код восстановления пароля.
// В отличие от письма о заказе, ошибка отправки возвращается вызывающей
// стороне: без письма пользователь не сможет завершить восстановление.
func (c *Client) SendPasswordResetEmail(ctx context.Context, email, code string) error {
	text := fmt.Sprintf(`You requested to reset your Lotus Leaf account password.

Your reset code is: %s

This code will expire in 15 minutes.

If you did not request this, you can ignore this email.
`, code)

	return c.sendEmail(ctx, email, "Reset your Lotus Leaf password", text)
}

// WhatsAppLinker формирует ссылку для отправки уведомления о заказе в WhatsApp.
type WhatsAppLinker struct {
	apiURL      string
	adminNumber string
}

// NewWhatsAppLinker создаёт построитель WhatsApp-ссылок.
func NewWhatsAppLinker(apiURL, adminNumber string) *WhatsAppLinker {
	return &WhatsAppLinker{
		apiURL:      strings.TrimRight(apiURL, "/"),
		adminNumber: adminNumber,
	}
}

// OrderURL возвращает ссылку с предзаполненным сообщением о заказе.
// При ненастроенном номере администратора возвращается пустая строка.
func (l *WhatsAppLinker) OrderURL(order *model.Order) string {
	if l == nil || l.adminNumber == "" || order == nil {
		return ""
	}

	msg := fmt.Sprintf("New Lotus Leaf order\nOrder ID: %s\nCustomer: %s\nPhone: %s\nTotal: $%.2f",
		order.ID, order.ShippingAddress.FullName, order.ShippingAddress.Phone,
		float64(order.TotalCents)/100)

	return l.apiURL + "?phone=" + url.QueryEscape(l.adminNumber) + "&text=" + url.QueryEscape(msg)
}
