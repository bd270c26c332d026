package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/HasanSh18/lotus-leaf-shop/internal/model"
)

// CreateUser создаёт нового пользователя. Email уникален без учёта регистра.
func (r *PostgresRepository) CreateUser(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, email, password_hash, provider, google_id, role)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Provider), u.GoogleID, string(u.Role),
	).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrUserExists, u.Email)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByEmail возвращает пользователя по email без учёта регистра.
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, provider, google_id, role, reset_code, reset_expires, created_at
		 FROM users
		 WHERE lower(email) = lower($1)`,
		email,
	)

	var u model.User
	var provider, role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &provider, &u.GoogleID,
		&role, &u.ResetCode, &u.ResetExpires, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	u.Provider = model.Provider(provider)
	u.Role = model.Role(role)

	return &u, nil
}

// UpdateUserRole сохраняет роль пользователя.
func (r *PostgresRepository) UpdateUserRole(ctx context.Context, userID string, role model.Role) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = now() WHERE id = $1`,
		userID, string(role),
	)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return nil
}

// SetResetCode сохраняет код восстановления пароля и срок его действия.
// Предыдущий код перезаписывается: действителен только последний.
func (r *PostgresRepository) SetResetCode(ctx context.Context, userID, code string, expires time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET reset_code = $2, reset_expires = $3, updated_at = now() WHERE id = $1`,
		userID, code, expires,
	)
	if err != nil {
		return fmt.Errorf("set reset code: %w", err)
	}
	return nil
}

// UpdatePassword сохраняет новый хеш пароля и сбрасывает код восстановления.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, userID string, passwordHash []byte) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET password_hash = $2, reset_code = '', reset_expires = NULL, updated_at = now()
		 WHERE id = $1`,
		userID, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
