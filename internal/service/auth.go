package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/HasanSh18/lotus-leaf-shop/internal/model"
	"github.com/HasanSh18/lotus-leaf-shop/internal/repository"
	"github.com/HasanSh18/lotus-leaf-shop/internal/validation"
)

const resetCodeTTL = 15 * time.Minute

// deriveRole выводит роль из настроенного адреса администратора.
// Роль пересчитывается при каждом входе и не берётся на веру из хранилища.
func (s *Service) deriveRole(email string) model.Role {
	if s.adminEmail != "" && email == s.adminEmail {
		return model.RoleAdmin
	}
	return model.RoleUser
}

// RegisterUser регистрирует нового пользователя с локальным паролем.
func (s *Service) RegisterUser(ctx context.Context, name, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)

	if !validation.IsStrongPassword(password) {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Provider:     model.ProviderLocal,
		Role:         s.deriveRole(email),
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// AuthenticateUser проверяет email и пароль и возвращает пользователя.
// Роль пересчитывается по адресу администратора при каждом успешном входе.
func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.reconcileRole(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) reconcileRole(ctx context.Context, u *model.User) error {
	desired := s.deriveRole(u.Email)
	if u.Role == desired {
		return nil
	}
	if err := s.repo.UpdateUserRole(ctx, u.ID, desired); err != nil {
		return err
	}
	u.Role = desired
	return nil
}

// GoogleLogin проверяет Google ID-токен и возвращает локального пользователя,
// создавая его при первом входе.
func (s *Service) GoogleLogin(ctx context.Context, credential string) (*model.User, error) {
	if s.google == nil {
		return nil, errors.New("google login is not configured")
	}

	claims, err := s.google.Verify(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, err)
	}

	if claims.Email == "" {
		return nil, ErrNoGoogleEmail
	}
	if !claims.EmailVerified {
		return nil, ErrGoogleEmailNotVerified
	}

	u, err := s.repo.GetUserByEmail(ctx, claims.Email)
	if err == nil {
		if err := s.reconcileRole(ctx, u); err != nil {
			return nil, err
		}
		return u, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	// Первый вход через Google: локальный пароль не используется,
	// вместо него сохраняется хеш случайного значения.
	placeholder := make([]byte, 16)
	if _, err := rand.Read(placeholder); err != nil {
		return nil, fmt.Errorf("generate placeholder password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(placeholder)), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash placeholder password: %w", err)
	}

	name := claims.Name
	if name == "" {
		name, _, _ = strings.Cut(claims.Email, "@")
	}

	u = &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        claims.Email,
		PasswordHash: hash,
		Provider:     model.ProviderGoogle,
		GoogleID:     claims.Subject,
		Role:         s.deriveRole(claims.Email),
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// ForgotPassword выпускает шестизначный код восстановления на 15 минут и
// отправляет его письмом. Для незарегистрированного адреса возвращается nil —
// наружу уходит одинаковый ответ, чтобы не раскрывать список адресов.
// Ошибка отправки письма возвращается вызывающей стороне.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}

	code, err := generateResetCode()
	if err != nil {
		return err
	}

	// Предыдущий код перезаписывается: действителен только последний.
	expires := time.Now().Add(resetCodeTTL)
	if err := s.repo.SetResetCode(ctx, u.ID, code, expires); err != nil {
		return err
	}

	if s.mailer == nil {
		return nil
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, u.Email, code); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	return nil
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// VerifyResetCode проверяет код восстановления. Любой отказ — отсутствующий
// пользователь, неверный или просроченный код — возвращает одинаковую ошибку.
func (s *Service) VerifyResetCode(ctx context.Context, email, code string) error {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidResetCode
		}
		return err
	}

	if u.ResetCode == "" || u.ResetExpires == nil {
		return ErrInvalidResetCode
	}
	if u.ResetCode != strings.TrimSpace(code) {
		return ErrInvalidResetCode
	}
	if u.ResetExpires.Before(time.Now()) {
		return ErrInvalidResetCode
	}

	return nil
}

// ResetPassword завершает восстановление: проверяет код, применяет правило
// стойкости и сохраняет новый пароль, инвалидируя код. Просроченный код
// здесь отличим от неверного — поведение исходного потока сохранено.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidResetCode
		}
		return err
	}

	if u.ResetCode == "" || u.ResetExpires == nil {
		return ErrInvalidResetCode
	}
	if u.ResetCode != strings.TrimSpace(code) {
		return ErrInvalidResetCode
	}
	if u.ResetExpires.Before(time.Now()) {
		return ErrResetCodeExpired
	}

	if !validation.IsStrongPassword(newPassword) {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, u.ID, hash)
}
