// Package main запускает HTTP-сервер магазина Lotus Leaf.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HasanSh18/lotus-leaf-shop/internal/config"
	"github.com/HasanSh18/lotus-leaf-shop/internal/googleid"
	"github.com/HasanSh18/lotus-leaf-shop/internal/handler"
	"github.com/HasanSh18/lotus-leaf-shop/internal/middleware"
	"github.com/HasanSh18/lotus-leaf-shop/internal/notify"
	"github.com/HasanSh18/lotus-leaf-shop/internal/repository"
	"github.com/HasanSh18/lotus-leaf-shop/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer repo.Close()

	mailer := notify.NewClient(cfg.ResendBaseURL, cfg.ResendAPIKey, cfg.EmailFrom, cfg.AdminEmail)
	whatsapp := notify.NewWhatsAppLinker(cfg.WhatsAppAPIURL, cfg.WhatsAppAdminNumber)

	var verifier *googleid.Verifier
	if cfg.GoogleClientID != "" {
		verifier = googleid.NewVerifier(cfg.GoogleClientID)
	}

	var google service.GoogleVerifier
	if verifier != nil {
		google = verifier
	}

	svc := service.NewService(repo, mailer, whatsapp, google, cfg.AdminEmail, logger)
	defer svc.Close()

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)
	h := handler.NewHandler(svc, logger, authMiddleware, cfg.Origins())

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting lotus leaf server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
