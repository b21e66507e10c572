package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"backoffice-backend/internal/config"
	"backoffice-backend/internal/handlers"
	"backoffice-backend/internal/middleware"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/pagecontent"
	"backoffice-backend/internal/repository"
	"backoffice-backend/internal/service"
	"backoffice-backend/pkg/cache"
	"backoffice-backend/pkg/logger"
	"backoffice-backend/pkg/validator"
)

type Application struct {
	cfg *config.Config

	db    *gorm.DB
	cache *cache.Cache

	repositories repositoryContainer
	services     serviceContainer
	handlers     handlerContainer

	rateLimits *middleware.RateLimitManager

	router *gin.Engine
	server *http.Server
}

type repositoryContainer struct {
	PageComponent repository.PageComponentRepository
	Page          repository.PageRepository
	PageBlock     repository.PageBlockRepository
	Role          repository.RoleRepository
	AuditLog      repository.AuditLogRepository
}

type serviceContainer struct {
	Audit         *service.AuditService
	PageComponent *service.PageComponentService
	Page          *service.PageService
	Role          *service.RoleService
}

type handlerContainer struct {
	PageComponent *handlers.PageComponentHandler
	Page          *handlers.PageHandler
	Role          *handlers.RoleHandler
	Audit         *handlers.AuditHandler
}

func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	app := &Application{cfg: cfg}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.runMigrations(); err != nil {
		return nil, err
	}

	if err := app.createIndexes(); err != nil {
		return nil, err
	}

	if err := app.initCache(); err != nil {
		return nil, err
	}
	app.initRepositories()
	app.initServices()
	app.initHandlers()
	app.initRouter()

	app.server = &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        app.router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return app, nil
}

func (a *Application) Run() error {
	logger.Info("Server starting", map[string]interface{}{
		"port":        a.cfg.Port,
		"environment": a.cfg.Environment,
	})

	return a.server.ListenAndServe()
}

func (a *Application) Shutdown(ctx context.Context) error {
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return err
		}
	}

	if a.rateLimits != nil {
		if err := a.rateLimits.Shutdown(); err != nil {
			logger.Error(err, "Failed to stop rate limiter", nil)
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Error(err, "Failed to close cache connection", nil)
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	return nil
}

func (a *Application) Router() *gin.Engine {
	return a.router
}

func (a *Application) initDatabase() error {
	logger.Info("Connecting to database", nil)

	db, err := gorm.Open(postgres.Open(a.cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.NewGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	a.db = db
	return nil
}

func (a *Application) runMigrations() error {
	if a.db == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	logger.Info("Running database migrations", nil)

	if err := a.db.AutoMigrate(
		&models.PageComponent{},
		&models.PageComponentField{},
		&models.Page{},
		&models.PageBlock{},
		&models.Role{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Database migration completed", nil)
	return nil
}

func (a *Application) createIndexes() error {
	if a.db == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_page_components_order ON page_components(\"order\" ASC, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_page_component_fields_order ON page_component_fields(component_id, \"order\" ASC)",
		"CREATE INDEX IF NOT EXISTS idx_pages_order ON pages(\"order\" ASC, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_page_blocks_order ON page_blocks(page_id, \"order\" ASC)",
		"CREATE INDEX IF NOT EXISTS idx_roles_order ON roles(\"order\" ASC)",
	}

	for _, stmt := range statements {
		if err := a.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func (a *Application) initCache() error {
	cacheService, err := cache.NewCache(a.cfg.RedisURL, a.cfg.EnableCache, a.cfg.CacheTTL)
	if err != nil {
		return err
	}
	a.cache = cacheService
	return nil
}

func (a *Application) initRepositories() {
	a.repositories = repositoryContainer{
		PageComponent: repository.NewPageComponentRepository(a.db),
		Page:          repository.NewPageRepository(a.db),
		PageBlock:     repository.NewPageBlockRepository(a.db),
		Role:          repository.NewRoleRepository(a.db),
		AuditLog:      repository.NewAuditLogRepository(a.db),
	}
}

func (a *Application) initServices() {
	audit := service.NewAuditService(a.repositories.AuditLog)
	components := service.NewPageComponentService(a.repositories.PageComponent, a.cache, audit)

	var options []pagecontent.Option
	if a.cfg.SanitizeRichText {
		options = append(options, pagecontent.WithRichTextSanitizer(validator.SanitizeHTML))
	}

	a.services = serviceContainer{
		Audit:         audit,
		PageComponent: components,
		Page: service.NewPageService(
			a.repositories.Page,
			a.repositories.PageBlock,
			pagecontent.NewNormalizer(components, options...),
			a.cache,
			audit,
		),
		Role: service.NewRoleService(a.repositories.Role, audit),
	}
}

func (a *Application) initHandlers() {
	a.handlers = handlerContainer{
		PageComponent: handlers.NewPageComponentHandler(a.services.PageComponent),
		Page:          handlers.NewPageHandler(a.services.Page),
		Role:          handlers.NewRoleHandler(a.services.Role),
		Audit:         handlers.NewAuditHandler(a.services.Audit),
	}
}

func (a *Application) initRouter() {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	a.rateLimits = middleware.NewRateLimitManager(context.Background())

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(logger.GinLogger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.SecurityHeadersMiddleware())
	if a.cfg.EnableMetrics {
		router.Use(middleware.MetricsMiddleware())
	}
	router.Use(middleware.RateLimitMiddleware(a.rateLimits, a.cfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	if a.cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api/v1")
	{
		api.GET("/pages/slug/:slug", a.handlers.Page.GetBySlug)

		admin := api.Group("/admin")
		admin.Use(
			middleware.AuthMiddleware(a.cfg.JWTSecret),
			middleware.AdminMiddleware(),
			middleware.MutationRateLimitMiddleware(a.rateLimits, a.cfg),
		)
		{
			admin.GET("/components", a.handlers.PageComponent.List)
			admin.POST("/components", a.handlers.PageComponent.Create)
			admin.GET("/components/:id", a.handlers.PageComponent.Get)
			admin.GET("/components/:id/schema", a.handlers.PageComponent.Schema)
			admin.PUT("/components/:id", a.handlers.PageComponent.Update)
			admin.DELETE("/components/:id", a.handlers.PageComponent.Delete)

			admin.GET("/pages", a.handlers.Page.List)
			admin.POST("/pages", a.handlers.Page.Create)
			admin.PUT("/pages/reorder", a.handlers.Page.Reorder)
			admin.GET("/pages/:id", a.handlers.Page.Get)
			admin.DELETE("/pages/:id", a.handlers.Page.Delete)
			admin.PUT("/pages/:id/blocks/reorder", a.handlers.Page.ReorderBlocks)

			admin.POST("/page-blocks", a.handlers.Page.CreateBlock)
			admin.DELETE("/page-blocks/:id", a.handlers.Page.DeleteBlock)

			admin.GET("/roles", a.handlers.Role.List)
			admin.POST("/roles", a.handlers.Role.Create)
			admin.PUT("/roles/reorder", a.handlers.Role.Reorder)
			admin.GET("/roles/:id", a.handlers.Role.Get)
			admin.PUT("/roles/:id", a.handlers.Role.Update)
			admin.DELETE("/roles/:id", a.handlers.Role.Delete)

			admin.GET("/audit-logs", a.handlers.Audit.List)
			admin.GET("/audit-logs/recent", a.handlers.Audit.Recent)
		}
	}

	a.router = router
}
