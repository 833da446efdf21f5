package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/taskit/taskit-go/internal/config"
	"github.com/taskit/taskit-go/internal/email"
	"github.com/taskit/taskit-go/internal/handler"
	"github.com/taskit/taskit-go/internal/middleware"
	"github.com/taskit/taskit-go/internal/repository"
	"github.com/taskit/taskit-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	mailer := email.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailFrom, cfg.SMTPUsername, cfg.SMTPPassword)

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Hourly sweep of session rows whose tokens have expired anyway. Purely
	// housekeeping; token validation never depends on it.
	go func() {
		ticker := time.NewTicker(time.Hour)
		for range ticker.C {
			if err := sessionRepo.RemoveExpired(context.Background()); err != nil {
				slog.Warn("session sweep failed", "error", err)
			}
		}
	}()

	authService := service.NewAuthService(userRepo, sessionRepo, taskRepo, mailer, cfg.JWTSecret, cfg.TokenTTL)
	taskService := service.NewTaskService(taskRepo)

	userHandler := handler.NewUserHandler(authService)
	taskHandler := handler.NewTaskHandler(taskService)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Public routes: registration, login and avatar reads need no session.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Post("/users", userHandler.HandleRegister)
		r.Post("/users/login", userHandler.HandleLogin)
	})
	r.Get("/users/{id}/avatar", userHandler.HandleGetAvatar)

	// Everything else requires a live session token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(authService))

		r.Post("/users/logout", userHandler.HandleLogout)
		r.Post("/users/logout-all", userHandler.HandleLogoutAll)
		r.Get("/users/me", userHandler.HandleGetProfile)
		r.Patch("/users/me", userHandler.HandleUpdateProfile)
		r.Delete("/users/me", userHandler.HandleDeleteAccount)
		r.Post("/users/me/avatar", userHandler.HandleUploadAvatar)
		r.Delete("/users/me/avatar", userHandler.HandleDeleteAvatar)

		r.Get("/tasks", taskHandler.HandleList)
		r.Get("/tasks/{id}", taskHandler.HandleGet)
		r.Patch("/tasks/{id}", taskHandler.HandleUpdate)
		r.Delete("/tasks/{id}", taskHandler.HandleDelete)

		r.Group(func(r chi.Router) {
			r.Use(middleware.DuplicateTask(taskService))
			r.Post("/tasks", taskHandler.HandleCreate)
		})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
