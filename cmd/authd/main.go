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
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/zhaoeryu/eu-authd/internal/auth"
	"github.com/zhaoeryu/eu-authd/internal/config"
	"github.com/zhaoeryu/eu-authd/internal/database"
	"github.com/zhaoeryu/eu-authd/internal/geo"
	"github.com/zhaoeryu/eu-authd/internal/handlers"
	"github.com/zhaoeryu/eu-authd/internal/kvstore"
	"github.com/zhaoeryu/eu-authd/internal/middleware"
	"github.com/zhaoeryu/eu-authd/internal/repositories"
	"github.com/zhaoeryu/eu-authd/internal/routes"
	"github.com/zhaoeryu/eu-authd/internal/services"
	pkghttp "github.com/zhaoeryu/eu-authd/pkg/http"
	pkglogger "github.com/zhaoeryu/eu-authd/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	redisClient, err := kvstore.Connect(redisCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	redisCancel()
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()

	store := kvstore.NewRedisStore(redisClient)

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	deptRepo := repositories.NewDeptRepository(db)

	// Crypto
	decryptor, err := auth.NewRSADecryptor(cfg.Auth.RSAPrivateKey)
	if err != nil {
		logger.Error("failed to load RSA private key", slog.Any("error", err))
		os.Exit(1)
	}
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	geoResolver, err := geo.NewMaxMindResolver(cfg.Geo.MMDBPath, logger)
	if err != nil {
		logger.Error("failed to open geoip database", slog.Any("error", err))
		os.Exit(1)
	}
	defer geoResolver.Close()

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Services
	challengeService := services.NewChallengeService(store, cfg.Auth.ChallengeTTL, logger)
	lockoutService := services.NewLockoutService(store, services.LockoutConfig{
		MaxFailures:     cfg.Auth.MaxLoginFailures,
		FailureWindow:   cfg.Auth.FailureWindow,
		LockoutDuration: cfg.Auth.LockoutDuration,
	}, logger)
	sessionService := services.NewSessionService(store, tokenManager, roleRepo, deptRepo, geoResolver, logger)
	loginService := services.NewLoginService(
		userRepo,
		challengeService,
		lockoutService,
		sessionService,
		auth.NewCredentialVerifier(decryptor, auth.BcryptComparator{}),
		logger,
		auditLogger,
	)

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(loginService, challengeService, ipConfig)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.SecureLogger(logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(30 * time.Second))

	routes.RegisterRoutes(router, authHandler)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
