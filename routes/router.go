package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/elquelo/elquelo/config"
	"github.com/elquelo/elquelo/controllers"
	"github.com/elquelo/elquelo/middleware"
	"github.com/elquelo/elquelo/resolver"
	"github.com/elquelo/elquelo/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, sweeper *resolver.Sweeper) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Sweep-Secret", "X-Printful-Secret"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	eventController := controllers.NewEventController(db)
	qrController := controllers.NewQRController(db)
	destinationController := controllers.NewDestinationController(db)
	statsController := controllers.NewStatsController(db)
	sweepController := controllers.NewSweepController(sweeper)
	webhookController := controllers.NewWebhookController(db)

	// Public scan redirect, the hot path
	r.GET("/q/:code", qrController.Redirect)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/google/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/google/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// External scheduler trigger and platform webhooks, secret gated
	api.POST("/sweep", sweepController.Run)
	api.POST("/webhooks/printful", webhookController.Printful)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.GET("/events", eventController.ListEvents)
	protected.POST("/events", eventController.CreateEvent)
	protected.GET("/events/:id", eventController.GetEvent)
	protected.PUT("/events/:id", eventController.UpdateEvent)
	protected.DELETE("/events/:id", eventController.DeleteEvent)
	protected.POST("/events/:id/publish", eventController.PublishEvent)
	protected.POST("/events/:id/members", eventController.AddMember)

	protected.GET("/events/:id/destinations", destinationController.ListDestinations)
	protected.POST("/events/:id/destinations", destinationController.CreateDestination)
	protected.PUT("/destinations/:id", destinationController.UpdateDestination)
	protected.PATCH("/destinations/:id", destinationController.PatchDestination)
	protected.DELETE("/destinations/:id", destinationController.DeleteDestination)

	protected.GET("/qrs", qrController.ListQRs)
	protected.POST("/qrs", qrController.CreateQR)
	protected.GET("/qrs/:code", qrController.GetQR)
	protected.GET("/qrs/:code/stats", statsController.GetQRStats)
	protected.GET("/stats", statsController.GetStats)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
