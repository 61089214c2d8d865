// Package main is the entry point for the stockhouse API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stockhouse/internal/domain/auth"
	"stockhouse/internal/domain/catalogs/category"
	"stockhouse/internal/domain/catalogs/product"
	"stockhouse/internal/domain/catalogs/supplier"
	"stockhouse/internal/domain/documents/entryform"
	"stockhouse/internal/domain/documents/exitform"
	"stockhouse/internal/domain/duplicate"
	"stockhouse/internal/domain/history"
	"stockhouse/internal/domain/reports"
	"stockhouse/internal/domain/stock"
	v1 "stockhouse/internal/infrastructure/http/v1"
	"stockhouse/internal/infrastructure/storage/postgres"
	"stockhouse/internal/infrastructure/storage/postgres/catalog_repo"
	"stockhouse/internal/infrastructure/storage/postgres/document_repo"
	"stockhouse/internal/infrastructure/storage/postgres/duplicate_repo"
	"stockhouse/internal/infrastructure/storage/postgres/history_repo"
	"stockhouse/internal/infrastructure/storage/postgres/register_repo"
	"stockhouse/internal/infrastructure/storage/postgres/report_repo"
	"stockhouse/internal/infrastructure/storage/postgres/sequence_repo"
	"stockhouse/pkg/logger"
	"stockhouse/pkg/refseq"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting stockhouse server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	categoryRepo := catalog_repo.NewCategoryRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	userRepo := catalog_repo.NewUserRepo(txManager)
	entryRepo := document_repo.NewEntryFormRepo(txManager)
	exitRepo := document_repo.NewExitFormRepo(txManager)
	stockRepo := register_repo.NewStockRepo(txManager)
	historyRepo := history_repo.NewHistoryRepo(txManager)
	duplicateRepo := duplicate_repo.NewDuplicateRepo(txManager)
	reportRepo := report_repo.NewReportRepo(txManager)
	seqStore := sequence_repo.NewSeqStore(txManager)

	// --- Domain services ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))
	authService := auth.NewService(userRepo, jwtService, txManager)

	categoryService := category.NewService(categoryRepo, txManager)
	supplierService := supplier.NewService(supplierRepo, txManager)
	productService := product.NewService(productRepo, txManager)

	stockService := stock.NewService(stockRepo)

	historyService, err := history.NewService(historyRepo)
	if err != nil {
		log.Fatalw("failed to create history service", "error", err)
	}

	policy := duplicate.DefaultPolicy()
	if expr := getEnv("DUPLICATE_MATCH_EXPRESSION", ""); expr != "" {
		policy.Expression = expr
	}
	detector, err := duplicate.NewDetector(duplicateRepo, policy)
	if err != nil {
		log.Fatalw("failed to compile duplicate match policy", "error", err)
	}

	refGenerator := refseq.New(seqStore)

	entryService := entryform.NewService(entryRepo, productRepo, supplierRepo,
		stockService, historyService, detector, refGenerator, txManager)
	exitService := exitform.NewService(exitRepo, productRepo,
		stockService, historyService, detector, refGenerator, txManager)

	reportService := reports.NewService(reportRepo)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool.Pool,
		Logger:          log,
		JWTValidator:    jwtService,
		AuthService:     authService,
		CategoryService: categoryService,
		SupplierService: supplierService,
		ProductService:  productService,
		EntryService:    entryService,
		ExitService:     exitService,
		StockService:    stockService,
		ReportService:   reportService,
	})

	// --- HTTP server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
