package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/HasanSh18/lotus-leaf-shop/internal/repository"
	"github.com/HasanSh18/lotus-leaf-shop/internal/service"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register обрабатывает регистрацию нового пользователя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		h.writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	user, err := h.service.RegisterUser(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserExists):
			h.writeMessage(w, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, service.ErrWeakPassword):
			h.writeMessage(w, http.StatusBadRequest, err.Error())
		default:
			h.internalError(w, "register user", err)
		}
		return
	}

	h.writeAuthResponse(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login выполняет аутентификацию пользователя по email и паролю.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		h.writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.internalError(w, "login user", err)
		return
	}

	h.writeAuthResponse(w, http.StatusOK, user)
}

type googleLoginRequest struct {
	Credential string `json:"credential"`
}

// GoogleLogin выполняет федеративный вход по Google ID-токену.
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Credential == "" {
		h.writeMessage(w, http.StatusBadRequest, "No credential provided")
		return
	}

	user, err := h.service.GoogleLogin(r.Context(), req.Credential)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoGoogleEmail), errors.Is(err, service.ErrGoogleEmailNotVerified):
			h.writeMessage(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidCredentials):
			h.writeMessage(w, http.StatusUnauthorized, "Google login failed")
		default:
			h.internalError(w, "google login", err)
		}
		return
	}

	h.writeAuthResponse(w, http.StatusOK, user)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword выпускает код восстановления. Ответ одинаков для
// зарегистрированного и незнакомого адреса.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" {
		h.writeMessage(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		h.logger.Error("forgot password", zap.Error(err))
		h.writeMessage(w, http.StatusInternalServerError, "Failed to send reset email")
		return
	}

	h.writeMessage(w, http.StatusOK, "If that email exists, a reset code was sent.")
}

type verifyResetCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyResetCode проверяет код восстановления пароля.
func (h *Handler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req verifyResetCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Code == "" {
		h.writeMessage(w, http.StatusBadRequest, "Email and code are required")
		return
	}

	if err := h.service.VerifyResetCode(r.Context(), req.Email, req.Code); err != nil {
		if errors.Is(err, service.ErrInvalidResetCode) {
			h.writeMessage(w, http.StatusBadRequest, "Invalid or expired code")
			return
		}
		h.internalError(w, "verify reset code", err)
		return
	}

	h.writeMessage(w, http.StatusOK, "Code verified. You can reset your password now.")
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword завершает восстановление пароля.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		h.writeMessage(w, http.StatusBadRequest, "Email, code, and new password are required")
		return
	}

	err := h.service.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetCode),
			errors.Is(err, service.ErrResetCodeExpired),
			errors.Is(err, service.ErrWeakPassword):
			h.writeMessage(w, http.StatusBadRequest, err.Error())
		default:
			h.internalError(w, "reset password", err)
		}
		return
	}

	h.writeMessage(w, http.StatusOK, "Password updated. You can now log in with your new password.")
}
