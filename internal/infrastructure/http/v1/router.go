// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockhouse/internal/domain/auth"
	"stockhouse/internal/domain/catalogs/category"
	"stockhouse/internal/domain/catalogs/product"
	"stockhouse/internal/domain/catalogs/supplier"
	"stockhouse/internal/domain/documents/entryform"
	"stockhouse/internal/domain/documents/exitform"
	"stockhouse/internal/domain/reports"
	"stockhouse/internal/domain/stock"
	"stockhouse/internal/infrastructure/http/v1/handlers"
	"stockhouse/internal/infrastructure/http/v1/middleware"
	"stockhouse/pkg/logger"
)

// writerRoles may create and mutate catalogs and documents. Viewers get
// read-only access.
var writerRoles = []string{string(auth.RoleAdmin), string(auth.RoleOperator)}

// RouterConfig holds the wired services for the router.
type RouterConfig struct {
	Pool   *pgxpool.Pool
	Logger *logger.Logger

	JWTValidator middleware.JWTValidator

	AuthService     *auth.Service
	CategoryService *category.Service
	SupplierService *supplier.Service
	ProductService  *product.Service
	EntryService    *entryform.Service
	ExitService     *exitform.Service
	StockService    *stock.Service
	ReportService   *reports.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()

	api := router.Group("/api/v1")
	{
		// Auth: login is public, profile endpoints need a token
		authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
		publicAuth := api.Group("/auth")
		protectedAuth := api.Group("/auth")
		protectedAuth.Use(middleware.Auth(cfg.JWTValidator))
		protectedAuth.Use(middleware.RequireRole(string(auth.RoleAdmin)))
		authHandler.RegisterRoutes(publicAuth, protectedAuth)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerCatalogRoutes(protected, base, cfg)
		registerDocumentRoutes(protected, base, cfg)
		registerRegisterRoutes(protected, base, cfg)
		registerReportRoutes(protected, base, cfg)
	}

	return router
}

// registerCatalogRoutes registers catalog endpoints. Writes require a writer
// role; reads are open to any authenticated user.
func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")

	{
		handler := handlers.NewCategoryHandler(base, cfg.CategoryService)
		g := catalogs.Group("/categories")
		g.GET("", handler.List)
		g.GET("/:id", handler.Get)
		w := g.Group("")
		w.Use(middleware.RequireRole(writerRoles...))
		w.POST("", handler.Create)
		w.PUT("/:id", handler.Update)
		w.DELETE("/:id", handler.Delete)
	}

	{
		handler := handlers.NewSupplierHandler(base, cfg.SupplierService)
		g := catalogs.Group("/suppliers")
		g.GET("", handler.List)
		g.GET("/:id", handler.Get)
		w := g.Group("")
		w.Use(middleware.RequireRole(writerRoles...))
		w.POST("", handler.Create)
		w.PUT("/:id", handler.Update)
		w.DELETE("/:id", handler.Delete)
	}

	{
		handler := handlers.NewProductHandler(base, cfg.ProductService)
		g := catalogs.Group("/products")
		g.GET("", handler.List)
		g.GET("/low-stock", handler.ListLowStock)
		g.GET("/:id", handler.Get)
		w := g.Group("")
		w.Use(middleware.RequireRole(writerRoles...))
		w.POST("", handler.Create)
		w.PUT("/:id", handler.Update)
		w.DELETE("/:id", handler.Delete)
	}
}

// registerDocumentRoutes registers entry/exit form endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	docs := rg.Group("/document")

	{
		handler := handlers.NewEntryFormHandler(base, cfg.EntryService)
		g := docs.Group("/entry-forms")
		g.GET("", handler.List)
		g.GET("/period", handler.Period)
		g.POST("/check-duplicates", handler.CheckDuplicates)
		g.GET("/:id", handler.Get)
		g.GET("/:id/history", handler.History)
		w := g.Group("")
		w.Use(middleware.RequireRole(writerRoles...))
		w.POST("", handler.Create)
		w.PUT("/:id", handler.Update)
		w.DELETE("/:id", handler.Delete)
		w.POST("/:id/validate", handler.Validate)
		w.POST("/:id/cancel", handler.Cancel)
	}

	{
		handler := handlers.NewExitFormHandler(base, cfg.ExitService)
		g := docs.Group("/exit-forms")
		g.GET("", handler.List)
		g.GET("/period", handler.Period)
		g.POST("/check-duplicates", handler.CheckDuplicates)
		g.GET("/:id", handler.Get)
		g.GET("/:id/history", handler.History)
		w := g.Group("")
		w.Use(middleware.RequireRole(writerRoles...))
		w.POST("", handler.Create)
		w.PUT("/:id", handler.Update)
		w.DELETE("/:id", handler.Delete)
		w.POST("/:id/validate", handler.Validate)
		w.POST("/:id/cancel", handler.Cancel)
	}
}

// registerRegisterRoutes registers stock ledger endpoints.
func registerRegisterRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewStockHandler(base, cfg.StockService)
	handler.RegisterRoutes(rg.Group("/registers/stock"))
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewReportsHandler(base, cfg.ReportService)
	handler.RegisterRoutes(rg.Group("/reports"))
}
