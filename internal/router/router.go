package router

import (
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/config"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/handler"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/middleware"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/session"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/tour"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter wires the gin engine: public auth endpoints plus the
// authenticated API.
func SetupRouter(cfg *config.Config, db *gorm.DB, store *session.Store, log *zap.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")

	tourEngine := tour.NewEngine(db, log)

	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.ExpireHours, cfg.Security.BcryptCost, store, log)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, db, store),
		middleware.AuditMiddleware(db, log),
	)

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/auth/events", authHandler.Events)
	protected.GET("/me", handler.GetMe)

	comprobanteHandler := handler.NewComprobanteHandler(db, log)
	protected.GET("/comprobantes", comprobanteHandler.List)
	protected.POST("/comprobantes", comprobanteHandler.Create)
	protected.PUT("/comprobantes/:id", comprobanteHandler.Update)
	protected.DELETE("/comprobantes/:id", comprobanteHandler.Delete)

	exportHandler := handler.NewExportHandler(db, log)
	protected.GET("/comprobantes/export", exportHandler.ExportXLSX)

	usageHandler := handler.NewUsageHandler(db, log)
	protected.GET("/usage", usageHandler.GetUsage)

	protected.GET("/profile", handler.GetProfile(db))
	protected.PUT("/profile", handler.UpdateProfile(db))
	protected.POST("/profile/password", handler.ChangePassword(db))

	accountHandler := handler.NewBankAccountHandler(db, tourEngine, log)
	protected.GET("/accounts", accountHandler.List)
	protected.POST("/accounts", accountHandler.Create)
	protected.DELETE("/accounts/:id", accountHandler.Delete)

	onboardingHandler := handler.NewOnboardingHandler(db, tourEngine, cfg.Tour, log)
	protected.GET("/onboarding", onboardingHandler.GetState)
	protected.GET("/onboarding/target", onboardingHandler.AwaitTarget)
	protected.POST("/onboarding/advance", onboardingHandler.Advance)
	protected.POST("/onboarding/skip", onboardingHandler.Skip)
	protected.POST("/onboarding/restart", onboardingHandler.Restart)

	protected.GET("/logs", handler.ListLogs(db))

	return r
}
