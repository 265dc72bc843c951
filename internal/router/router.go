package router

import (
	"net/http"
	"time"

	"crimewatch/internal/app"
	"crimewatch/internal/domain"
	"crimewatch/internal/handler"
	"crimewatch/internal/logger"
	"crimewatch/internal/metrics"
	"crimewatch/internal/middleware"
	"crimewatch/internal/ws"

	"github.com/gin-gonic/gin"
)

// Setup builds the gin engine. stop ends the rate limiter sweepers.
func Setup(a *app.App, stop <-chan struct{}) *gin.Engine {
	cfg := a.Config
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.AccessMiddleware(logger.Component("http")))

	global := middleware.NewKeyedLimiter(cfg.RateLimit.GlobalPerMinute, cfg.RateLimit.GlobalPerMinute)
	pings := middleware.NewKeyedLimiter(cfg.RateLimit.LocationPerMinute, cfg.RateLimit.LocationBurst)
	go global.RunSweeper(time.Minute, stop)
	go pings.RunSweeper(time.Minute, stop)

	locationHandler := handler.NewLocationHandler(a.Locations)
	zoneHandler := handler.NewZoneHandler(a.Zones, a.Generator)
	notificationHandler := handler.NewNotificationHandler(a.Repos.Notifications)

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := a.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ws_clients": a.Hub.ClientCount()})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/ws/alerts", ws.ServeAlerts(&cfg.JWT, a.Hub, ws.NewUpgrader(cfg.Server.CorsOrigins)))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(global))
	{
		v1.GET("/zones", zoneHandler.ListActive)
		v1.GET("/zones/:id", zoneHandler.Get)
	}

	authed := v1.Group("")
	authed.Use(middleware.AuthRequired(&cfg.JWT))
	{
		authed.POST("/location/check", middleware.UserRateLimit(pings), locationHandler.CheckLocation)
		authed.GET("/location/history", locationHandler.History)

		authed.GET("/me/notifications", notificationHandler.List)
		authed.PUT("/me/notifications/:id/read", notificationHandler.MarkRead)
	}

	admin := authed.Group("")
	admin.Use(middleware.RequireRole(domain.RoleAdmin))
	{
		admin.GET("/admin/zones", zoneHandler.ListAll)
		admin.POST("/zones", zoneHandler.Create)
		admin.PATCH("/zones/:id", zoneHandler.Update)
		admin.DELETE("/zones/:id", zoneHandler.Delete)
		admin.POST("/zones/:id/refresh", zoneHandler.RefreshStats)
		admin.POST("/zones/refresh-stats", zoneHandler.RefreshAllStats)
		admin.POST("/zones/auto-generate", zoneHandler.AutoGenerate)
	}
	return r
}
