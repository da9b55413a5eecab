package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cataloghandler "strategy_backend/internal/feature/catalog/transport/handler"
	authhandler "strategy_backend/internal/feature/member/transport/handler"
	strategyhandler "strategy_backend/internal/feature/strategy/transport/handler"
	jwtmw "strategy_backend/internal/platform/jwt"
)

// NewRouter wires every handler onto the Gin engine.
// Route groups:
//   - /auth/*          認証不要（サインアップ・ログイン・リフレッシュなど）
//   - /api/*           認証必須（JWT）
//   - /api/admin/*     認証必須かつADMINロール必須
func NewRouter(authHandler *authhandler.AuthHandler,
	tradingTypes, assetClasses *cataloghandler.CatalogHandler,
	strategies *strategyhandler.StrategyHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 認証不要
	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/check-email", authHandler.CheckEmail)
		auth.GET("/check-nickname", authHandler.CheckNickname)
	}

	// 認証必須のルート
	api := r.Group("/api")
	api.Use(jwtmw.AuthRequired())
	{
		api.GET("/members/me", authHandler.Me)

		api.GET("/strategies", strategies.List)
		api.GET("/strategies/:id", strategies.Get)
		api.GET("/strategies/:id/statistics", strategies.Statistics)
	}

	// 管理者専用のルート
	admin := api.Group("/admin")
	admin.Use(jwtmw.AdminRequired())
	{
		mountCatalog(admin.Group("/trading-types"), tradingTypes)
		mountCatalog(admin.Group("/investment-asset-classes"), assetClasses)

		admin.POST("/strategies", strategies.Create)
		admin.PUT("/strategies/:id", strategies.Update)
		admin.DELETE("/strategies/:id", strategies.Delete)
		admin.POST("/strategies/:id/statistics", strategies.AddStatistic)
		admin.GET("/strategies/:id/statistics/export", strategies.ExportStatistics)
	}

	return r
}

// mountCatalog registers the six catalog operations on a route group.
// Both catalogs expose the same surface; only the handler differs.
func mountCatalog(g *gin.RouterGroup, h *cataloghandler.CatalogHandler) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.SoftDelete)
	g.DELETE("/:id/hard", h.HardDelete)
}
