// Package googleid проверяет подписанные Google ID-токены федеративного входа.
package googleid

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// Claims содержит проверенные утверждения Google ID-токена.
type Claims struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}

// Verifier проверяет подпись и аудиторию ID-токена через сертификаты Google.
type Verifier struct {
	clientID string
}

// NewVerifier создаёт верификатор для указанного OAuth client ID.
func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID}
}

// Verify валидирует токен и возвращает его утверждения.
func (v *Verifier) Verify(ctx context.Context, credential string) (*Claims, error) {
	payload, err := idtoken.Validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("validate id token: %w", err)
	}

	claims := &Claims{Subject: payload.Subject}

	if email, ok := payload.Claims["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		claims.Name = name
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		claims.EmailVerified = verified
	}

	return claims, nil
}
