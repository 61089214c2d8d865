// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"stockhouse/internal/core/id"
	"stockhouse/internal/domain/auth"
	"stockhouse/internal/infrastructure/storage/postgres"
	"stockhouse/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedAdminUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@stockhouse.io"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	// Check if admin already exists
	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1 AND NOT deletion_mark`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	admin, err := auth.NewUser(adminEmail, "System Admin", adminPassword, auth.RoleAdmin)
	if err != nil {
		return fmt.Errorf("build admin user: %w", err)
	}

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (id, email, display_name, role, password_hash, deletion_mark, version)
		VALUES ($1, $2, $3, $4, $5, false, 1)
	`, admin.ID, admin.Email, admin.DisplayName, admin.Role, admin.PasswordHash)
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created",
		"email", adminEmail,
		"user_id", admin.ID,
	)

	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	// 1. Seed Categories
	categories := []struct {
		code        string
		name        string
		description string
	}{
		{"STATIONERY", "Office Stationery", "Paper, pens and desk supplies"},
		{"ELECTRONICS", "Electronics", "Computer hardware and accessories"},
		{"PACKAGING", "Packaging", "Boxes, tape and wrapping material"},
	}

	// Map code -> UUID for product references
	categoryIDs := make(map[string]id.ID)

	for _, cat := range categories {
		catID := id.New()
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO categories (id, code, name, description, deletion_mark, version)
			VALUES ($1, $2, $3, $4, false, 1)
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, catID, cat.code, cat.name, cat.description)
		if err != nil {
			log.Warnw("failed to seed category", "name", cat.name, "error", err)
			continue
		}

		// If inserted, use new ID. If conflict, fetch the existing ID.
		if commandTag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx, `
				SELECT id FROM categories WHERE code = $1 AND deletion_mark = FALSE
			`, cat.code).Scan(&catID)
			if err != nil {
				log.Warnw("failed to fetch existing category id", "code", cat.code, "error", err)
				continue
			}
		}

		categoryIDs[cat.code] = catID
	}

	// 2. Seed Suppliers
	suppliers := []struct {
		name    string
		email   string
		phone   string
		address string
	}{
		{"Paper Trail Ltd", "orders@papertrail.example", "+33 1 40 00 00 01", "12 Rue du Commerce, Paris"},
		{"Volt Supplies", "sales@voltsupplies.example", "+33 1 40 00 00 02", "8 Avenue des Ternes, Paris"},
		{"BoxWorks", "contact@boxworks.example", "+33 4 72 00 00 03", "3 Quai Perrache, Lyon"},
	}

	for i, sup := range suppliers {
		supID := id.New()
		code := fmt.Sprintf("SUP-%03d", i+1)
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO suppliers (id, code, name, email, phone, address, deletion_mark, version)
			VALUES ($1, $2, $3, $4, $5, $6, false, 1)
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, supID, code, sup.name, sup.email, sup.phone, sup.address)
		if err != nil {
			log.Warnw("failed to seed supplier", "name", sup.name, "error", err)
		}
	}

	// 3. Seed Products
	products := []struct {
		reference    string
		name         string
		description  string
		categoryCode string
		unitPrice    string
		minQuantity  int64
	}{
		{"PAP-A4", "A4 Copy Paper (500 sheets)", "80gsm white multipurpose paper", "STATIONERY", "4.90", 50},
		{"PEN-BLU", "Ballpoint Pen Blue", "Medium tip, box of 10", "STATIONERY", "2.30", 20},
		{"STP-001", "Desktop Stapler", "Half strip, metal body", "STATIONERY", "7.50", 5},
		{"USB-C2M", "USB-C Cable 2m", "Braided charging cable", "ELECTRONICS", "9.90", 10},
		{"KBD-105", "Wired Keyboard", "105-key AZERTY layout", "ELECTRONICS", "24.00", 5},
		{"BOX-M", "Shipping Box Medium", "40x30x20 double wall", "PACKAGING", "1.15", 100},
		{"TAPE-50", "Packing Tape 50mm", "Transparent, 66m roll", "PACKAGING", "1.80", 30},
	}

	for _, p := range products {
		categoryID, ok := categoryIDs[p.categoryCode]
		if !ok {
			log.Warnw("category missing for product, skipping", "reference", p.reference, "category", p.categoryCode)
			continue
		}

		prodID := id.New()
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO products (
				id, reference, name, description, category_id,
				unit_price, quantity, min_quantity, deletion_mark, version
			)
			VALUES ($1, $2, $3, $4, $5, $6, 0, $7, false, 1)
			ON CONFLICT (reference) WHERE deletion_mark = FALSE DO NOTHING
		`, prodID, p.reference, p.name, p.description, categoryID, p.unitPrice, p.minQuantity)
		if err != nil {
			log.Warnw("failed to seed product", "reference", p.reference, "error", err)
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}
