package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gptteam/seathub/internal/chatgpt"
	"gptteam/seathub/internal/config"
	"gptteam/seathub/internal/handler"
	"gptteam/seathub/internal/model"
	"gptteam/seathub/internal/repository"
	"gptteam/seathub/internal/service"
	jwtpkg "gptteam/seathub/pkg/jwt"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger with a runtime-adjustable level
	var zapCfg zap.Config
	if cfg.Log.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if lvl, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
		zapCfg.Level.SetLevel(lvl)
	}
	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 3. Connect to PostgreSQL
	db, err := config.NewPostgresDB(cfg.Database.Postgres)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}

	// 4. Auto-migrate if enabled
	if cfg.Database.Postgres.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			logger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		logger.Info("database migration completed")
	}

	// 5. Initialize state store (Redis or in-memory)
	var stateStore repository.StateStore
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		stateStore = repository.NewRedisStateStore(redisClient)
		logger.Info("using Redis state store")
	case "memory":
		stateStore = repository.NewMemoryStateStore()
		logger.Info("using in-memory state store")
	default:
		logger.Fatal("unknown state backend", zap.String("backend", cfg.State.Backend))
	}

	// 6. Initialize repositories
	teamRepo := repository.NewPGTeamRepository(db)
	codeRepo := repository.NewPGCodeRepository(db)
	recordRepo := repository.NewPGRecordRepository(db)
	settingRepo := repository.NewPGSettingRepository(db)

	// 7. Initialize JWT manager
	jwtManager := jwtpkg.NewManager(
		cfg.JWT.SigningKey,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
	)

	// 8. Initialize the upstream ChatGPT client
	upstreamClient := chatgpt.New(chatgpt.Config{
		BaseURL:    cfg.Upstream.BaseURL,
		OriginURL:  cfg.Upstream.OriginURL,
		SessionURL: cfg.Upstream.SessionURL,
		TokenURL:   cfg.Upstream.TokenURL,
	}, service.NewSolverSource(settingRepo), logger)
	defer upstreamClient.Close()

	// 9. Initialize services
	authService := service.NewAuthService(cfg.Admin.Username, cfg.Admin.PasswordHash, stateStore, jwtManager)
	settingsService := service.NewSettingsService(settingRepo, upstreamClient, zapCfg.Level)
	teamService := service.NewTeamService(teamRepo, upstreamClient, cfg.Upstream.OAuthClientID, logger)
	codeService := service.NewCodeService(codeRepo, recordRepo, teamRepo, upstreamClient, logger)

	// 10. Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	teamHandler := handler.NewTeamHandler(teamService)
	codeHandler := handler.NewCodeHandler(codeService)
	settingsHandler := handler.NewSettingsHandler(settingsService)

	// 11. Setup router
	router := handler.SetupRouter(cfg, logger, jwtManager, authHandler, teamHandler, codeHandler, settingsHandler)

	// 12. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 13. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 14. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}
