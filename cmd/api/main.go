package main

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kmarube/eventquote-api/internal/application/service"
	"github.com/kmarube/eventquote-api/internal/config"
	domainRepo "github.com/kmarube/eventquote-api/internal/domain/repository"
	"github.com/kmarube/eventquote-api/internal/infrastructure/database"
	"github.com/kmarube/eventquote-api/internal/infrastructure/repository"
	"github.com/kmarube/eventquote-api/internal/presentation/http/handler"
	"github.com/kmarube/eventquote-api/internal/presentation/http/routes"
	"github.com/kmarube/eventquote-api/pkg/logger"
	"github.com/kmarube/eventquote-api/pkg/pdf"
	"github.com/kmarube/eventquote-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.Must(logger.New(cfg.App.Debug))
	defer log.Sync()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Select the collection store backend
	var (
		quotationRepo domainRepo.QuotationRepository
		userRepo      domainRepo.UserRepository
	)
	switch cfg.Store.Driver {
	case "file":
		var err error
		quotationRepo, err = repository.NewFileQuotationRepository(cfg.Store.FilePath)
		if err != nil {
			log.Fatal("failed to open file store", zap.Error(err))
		}
		userRepo, err = repository.NewFileUserRepository(filepath.Join(filepath.Dir(cfg.Store.FilePath), "users.json"))
		if err != nil {
			log.Fatal("failed to open user file store", zap.Error(err))
		}
		log.Info("using file store", zap.String("path", cfg.Store.FilePath))
	default:
		db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := database.AutoMigrate(db); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		quotationRepo = repository.NewQuotationRepository(db)
		userRepo = repository.NewUserRepository(db)
		log.Info("using postgres store", zap.String("database", cfg.Database.Name))
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	quotationService := service.NewQuotationService(quotationRepo, cfg.Store.Timeout, logger.Named(log, "quotations"))
	draftService := service.NewDraftService(quotationRepo, cfg.Store.Timeout, logger.Named(log, "drafts"))
	dashboardService := service.NewDashboardService(quotationRepo, cfg.Store.Timeout, logger.Named(log, "dashboard"))

	pdfGenerator := pdf.NewGenerator(cfg.App.Name)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Quotation: handler.NewQuotationHandler(quotationService, draftService, pdfGenerator),
		Draft:     handler.NewDraftHandler(draftService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager: jwtManager,
		Cfg:        cfg,
		Logger:     logger.Named(log, "http"),
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Info("starting server",
		zap.String("service", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", port),
	)

	if err := router.Run(":" + port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
