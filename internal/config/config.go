// Package config содержит логику чтения конфигурации магазина Lotus Leaf.
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса.
type Config struct {
	RunAddress          string `env:"RUN_ADDRESS"`
	DatabaseURI         string `env:"DATABASE_URI"`
	JWTSecret           string `env:"JWT_SECRET"`
	AdminEmail          string `env:"ADMIN_EMAIL"`
	GoogleClientID      string `env:"GOOGLE_CLIENT_ID"`
	ResendAPIKey        string `env:"RESEND_API_KEY"`
	ResendBaseURL       string `env:"RESEND_BASE_URL"`
	EmailFrom           string `env:"EMAIL_FROM"`
	WhatsAppAPIURL      string `env:"WHATSAPP_API_URL"`
	WhatsAppAdminNumber string `env:"WHATSAPP_ADMIN_NUMBER"`
	AllowedOrigins      string `env:"ALLOWED_ORIGINS"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fromEnv := *cfg

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.JWTSecret, "s", "", "JWT signing secret")
	flag.StringVar(&cfg.AdminEmail, "admin-email", "", "email granted the admin role")
	flag.StringVar(&cfg.GoogleClientID, "google-client-id", "", "Google OAuth client ID")
	flag.StringVar(&cfg.AllowedOrigins, "origins", "", "comma-separated allowed CORS origins")

	flag.Parse()

	if fromEnv.RunAddress != "" {
		cfg.RunAddress = fromEnv.RunAddress
	}
	if fromEnv.DatabaseURI != "" {
		cfg.DatabaseURI = fromEnv.DatabaseURI
	}
	if fromEnv.JWTSecret != "" {
		cfg.JWTSecret = fromEnv.JWTSecret
	}
	if fromEnv.AdminEmail != "" {
		cfg.AdminEmail = fromEnv.AdminEmail
	}
	if fromEnv.GoogleClientID != "" {
		cfg.GoogleClientID = fromEnv.GoogleClientID
	}
	if fromEnv.AllowedOrigins != "" {
		cfg.AllowedOrigins = fromEnv.AllowedOrigins
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.ResendBaseURL == "" {
		cfg.ResendBaseURL = "https://api.resend.com"
	}
	if cfg.WhatsAppAPIURL == "" {
		cfg.WhatsAppAPIURL = "https://api.whatsapp.com/send"
	}

	return cfg, nil
}

// Origins возвращает список разрешённых CORS-доменов.
func (c *Config) Origins() []string {
	if c.AllowedOrigins == "" {
		return nil
	}

	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			origins = append(origins, v)
		}
	}
	return origins
}
