// Package validation содержит функции валидации входных данных.
package validation

import "unicode"

// IsStrongPassword проверяет пароль по правилу стойкости:
// не менее 8 символов, хотя бы одна строчная и одна заглавная буква и цифра.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasLower, hasUpper, hasDigit bool

	for _, ch := range password {
		switch {
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	return hasLower && hasUpper && hasDigit
}
