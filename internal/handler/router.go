package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gptteam/seathub/internal/config"
	"gptteam/seathub/internal/handler/middleware"
	jwtpkg "gptteam/seathub/pkg/jwt"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	authHandler *AuthHandler,
	teamHandler *TeamHandler,
	codeHandler *CodeHandler,
	settingsHandler *SettingsHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes
	public := r.Group("/api/v1")
	{
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/refresh", authHandler.Refresh)
		public.POST("/redeem", codeHandler.Redeem)
	}

	// Admin routes
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.JWTAuth(jwtManager))
	{
		admin.POST("/auth/logout", authHandler.Logout)

		admin.POST("/teams/import", teamHandler.Import)
		admin.GET("/teams", teamHandler.List)
		admin.GET("/teams/:id", teamHandler.Get)
		admin.PUT("/teams/:id", teamHandler.Update)
		admin.DELETE("/teams/:id", teamHandler.Delete)
		admin.POST("/teams/:id/refresh-credentials", teamHandler.RefreshCredentials)

		admin.GET("/teams/:id/members", teamHandler.ListMembers)
		admin.POST("/teams/:id/members", teamHandler.AddMember)
		admin.DELETE("/teams/:id/members/:user_id", teamHandler.RemoveMember)
		admin.GET("/teams/:id/invites", teamHandler.ListInvites)
		admin.POST("/teams/:id/invites/revoke", teamHandler.RevokeInvite)

		admin.POST("/codes/generate", codeHandler.Generate)
		admin.GET("/codes", codeHandler.List)
		admin.DELETE("/codes/:code", codeHandler.Delete)
		admin.POST("/codes/bulk-delete", codeHandler.BulkDelete)

		admin.GET("/records", codeHandler.ListRecords)
		admin.POST("/records/:id/withdraw", codeHandler.Withdraw)

		admin.GET("/settings", settingsHandler.Get)
		admin.POST("/settings/flaresolverr", settingsHandler.UpdateSolver)
		admin.POST("/settings/log-level", settingsHandler.UpdateLogLevel)
	}

	return r
}
