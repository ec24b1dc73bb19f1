package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kmarube/eventquote-api/internal/config"
	"github.com/kmarube/eventquote-api/internal/presentation/http/handler"
	"github.com/kmarube/eventquote-api/internal/presentation/http/middleware"
	"github.com/kmarube/eventquote-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Quotation *handler.QuotationHandler
	Draft     *handler.DraftHandler
	Dashboard *handler.DashboardHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager *utils.JWTManager
	Cfg        *config.Config
	Logger     *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		rateLimiter := middleware.NewOwnerRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers) {
	// Dashboard
	protected.GET("/dashboard", h.Dashboard.GetSummary)

	// Quotation collection
	quotations := protected.Group("/quotations")
	{
		quotations.GET("", h.Quotation.List)
		quotations.GET("/watch", h.Quotation.Watch)
		quotations.GET("/:id", h.Quotation.Get)
		quotations.GET("/:id/pdf", h.Quotation.PDF)
		quotations.POST("", h.Quotation.Create)
		quotations.PUT("/:id", h.Quotation.Update)
		quotations.DELETE("/:id", h.Quotation.Delete)
	}

	// Draft editor sessions
	drafts := protected.Group("/drafts")
	{
		drafts.POST("", h.Draft.Open)
		drafts.GET("/:id", h.Draft.Get)
		drafts.PATCH("/:id", h.Draft.SetField)
		drafts.POST("/:id/save", h.Draft.Save)
		drafts.DELETE("/:id", h.Draft.Discard)
		drafts.POST("/:id/items", h.Draft.AddItem)
		drafts.PATCH("/:id/items/:itemId", h.Draft.EditItem)
		drafts.DELETE("/:id/items/:itemId", h.Draft.RemoveItem)
	}
}
