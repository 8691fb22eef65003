// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"github.com/your-org/pos-backend/internal/domain/catalog"
	"github.com/your-org/pos-backend/internal/domain/operator"
	"github.com/your-org/pos-backend/internal/domain/sale"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Define all models that need migration in dependency order
	models := []interface{}{
		// Operator domain - Base tables
		&operator.Operator{},

		// Catalog domain - Base tables
		&catalog.Product{},
		&catalog.PaymentMethod{},
		&catalog.Customer{},

		// Sale domain - Dependent tables
		&sale.Sale{},
		&sale.SaleItem{},
		&sale.StockMovement{},
	}

	// Run auto-migration for each model
	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// Operator indexes
		"CREATE INDEX IF NOT EXISTS idx_operators_username_active ON operators(username, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_operators_role ON operators(role)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_barcode_active ON products(barcode, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_name ON products(name)",
		"CREATE INDEX IF NOT EXISTS idx_products_expiry_date ON products(expiry_date)",
		"CREATE INDEX IF NOT EXISTS idx_products_quantity ON products(quantity)",

		// Payment method indexes
		"CREATE INDEX IF NOT EXISTS idx_payment_methods_active_sort ON payment_methods(is_active, sort_order)",

		// Customer indexes
		"CREATE INDEX IF NOT EXISTS idx_customers_document ON customers(document)",
		"CREATE INDEX IF NOT EXISTS idx_customers_name ON customers(name)",

		// Sale indexes
		"CREATE INDEX IF NOT EXISTS idx_sales_operator_status ON sales(operator_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_sales_status_created ON sales(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_sales_customer ON sales(customer_id)",
		"CREATE INDEX IF NOT EXISTS idx_sales_code ON sales(code)",
		"CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales(created_at DESC)",

		// Sale item indexes
		"CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items(sale_id)",
		"CREATE INDEX IF NOT EXISTS idx_sale_items_product ON sale_items(product_id)",

		// Stock movement indexes
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_product ON stock_movements(product_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_sale ON stock_movements(sale_id)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	// Create default payment methods
	if err := m.seedPaymentMethods(); err != nil {
		return fmt.Errorf("failed to seed payment methods: %w", err)
	}

	// Create default admin operator
	if err := m.seedAdminOperator(); err != nil {
		return fmt.Errorf("failed to seed admin operator: %w", err)
	}

	// Create cashier operator for development
	if err := m.seedCashierOperator(); err != nil {
		return fmt.Errorf("failed to seed cashier operator: %w", err)
	}

	// Seed test products for register testing
	if err := m.seedTestProducts(); err != nil {
		return fmt.Errorf("failed to seed test products: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedPaymentMethods creates the default register payment methods
func (m *Migration) seedPaymentMethods() error {
	log.Println("💳 Seeding payment methods...")

	methods := []catalog.PaymentMethod{
		{
			Name:         "Cash",
			Code:         "cash",
			Type:         catalog.PaymentTypeCash,
			AllowsChange: true,
			SortOrder:    1,
			IsActive:     true,
		},
		{
			Name:             "Credit Card",
			Code:             "credit_card",
			Type:             catalog.PaymentTypeCard,
			SurchargePercent: 2.5,
			SortOrder:        2,
			IsActive:         true,
		},
		{
			Name:      "Debit Card",
			Code:      "debit_card",
			Type:      catalog.PaymentTypeCard,
			SortOrder: 3,
			IsActive:  true,
		},
		{
			Name:      "Pix",
			Code:      "pix",
			Type:      catalog.PaymentTypePix,
			SortOrder: 4,
			IsActive:  true,
		},
		{
			Name:      "Voucher",
			Code:      "voucher",
			Type:      catalog.PaymentTypeVoucher,
			SortOrder: 5,
			IsActive:  true,
		},
	}

	for _, method := range methods {
		var existing catalog.PaymentMethod
		result := m.db.Where("code = ?", method.Code).First(&existing)
		if result.Error != nil {
			// Payment method doesn't exist, create it
			if err := m.db.Create(&method).Error; err != nil {
				return err
			}
			log.Printf("✅ Created payment method: %s", method.Name)
		} else {
			log.Printf("⏭️ Payment method already exists: %s", method.Name)
		}
	}

	return nil
}

func (m *Migration) seedAdminOperator() error {
	log.Println("👤 Seeding admin operator...")

	var existing operator.Operator
	result := m.db.Where("username = ?", "admin").First(&existing)
	if result.Error != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), 10)
		if err != nil {
			log.Printf("❌ Failed to hash password: %v", err)
			return fmt.Errorf("failed to hash password: %w", err)
		}

		admin := operator.Operator{
			Username:             "admin",
			Name:                 "Store Administrator",
			Email:                "admin@example.com",
			Password:             string(hashedPassword),
			Role:                 operator.RoleAdmin,
			DiscountLimitPercent: 100,
			IsActive:             true,
		}

		if err := m.db.Create(&admin).Error; err != nil {
			log.Printf("❌ Failed to create admin operator: %v", err)
			return fmt.Errorf("failed to create admin operator: %w", err)
		}

		log.Println("✅ Created admin operator: admin (password: admin123)")
	} else {
		log.Printf("⏭️ Admin operator already exists with ID: %d", existing.ID)
	}

	return nil
}

func (m *Migration) seedCashierOperator() error {
	log.Println("👤 Seeding cashier operator...")

	var existing operator.Operator
	result := m.db.Where("username = ?", "cashier1").First(&existing)
	if result.Error != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("cashier123"), 10)
		if err != nil {
			log.Printf("❌ Failed to hash password: %v", err)
			return fmt.Errorf("failed to hash password: %w", err)
		}

		cashier := operator.Operator{
			Username: "cashier1",
			Name:     "Test Cashier",
			Email:    "cashier1@example.com",
			Password: string(hashedPassword),
			Role:     operator.RoleCashier,
			IsActive: true,
		}

		if err := m.db.Create(&cashier).Error; err != nil {
			return err
		}

		log.Println("✅ Created cashier operator: cashier1 (password: cashier123)")
	} else {
		log.Println("⏭️ Cashier operator already exists")
	}

	return nil
}

// seedTestProducts creates test products covering the stock and expiry cases
func (m *Migration) seedTestProducts() error {
	log.Println("🛍️ Seeding test products...")

	// Check if we already have products
	var productCount int64
	m.db.Model(&catalog.Product{}).Count(&productCount)

	if productCount >= 4 {
		log.Println("⏭️ Test products already exist")
		return nil
	}

	today := catalog.DateOnly(time.Now())
	nearExpiry := today.AddDate(0, 0, 5)
	farExpiry := today.AddDate(1, 0, 0)

	testProducts := []catalog.Product{
		{
			Barcode:       "7891000100103",
			SKU:           "POS-TEST-001",
			Name:          "Whole Milk 1L",
			Description:   "UHT whole milk, 1 liter carton",
			SalePrice:     4.99,
			CostPrice:     3.10,
			Quantity:      120,
			MinStockLevel: 24,
			ExpiryDate:    &nearExpiry,
			IsActive:      true,
		},
		{
			Barcode:       "7891000053508",
			SKU:           "POS-TEST-002",
			Name:          "Ground Coffee 500g",
			Description:   "Medium roast ground coffee, vacuum packed",
			SalePrice:     12.50,
			CostPrice:     8.00,
			Quantity:      45,
			MinStockLevel: 10,
			ExpiryDate:    &farExpiry,
			IsActive:      true,
		},
		{
			Barcode:       "7891910000197",
			SKU:           "POS-TEST-003",
			Name:          "Refined Sugar 1kg",
			Description:   "Refined white sugar, 1 kilogram bag",
			SalePrice:     3.25,
			CostPrice:     2.10,
			Quantity:      3,
			MinStockLevel: 15,
			IsActive:      true,
		},
		{
			Barcode:       "7896004400014",
			SKU:           "POS-TEST-004",
			Name:          "Dish Soap 500ml",
			Description:   "Neutral dish soap, 500ml bottle",
			SalePrice:     2.80,
			CostPrice:     1.60,
			Quantity:      0,
			MinStockLevel: 12,
			IsActive:      true,
		},
	}

	for _, prod := range testProducts {
		var existing catalog.Product
		result := m.db.Where("barcode = ?", prod.Barcode).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&prod).Error; err != nil {
				log.Printf("⚠️ Failed to create test product %s: %v", prod.SKU, err)
			} else {
				log.Printf("✅ Created test product: %s", prod.Name)
			}
		} else {
			log.Printf("⏭️ Product already exists: %s", prod.Name)
		}
	}

	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Define tables in reverse dependency order
	tables := []string{
		"stock_movements",
		"sale_items",
		"sales",
		"customers",
		"payment_methods",
		"products",
		"operators",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}

// GetTableInfo returns information about database tables
func (m *Migration) GetTableInfo() error {
	var tables []string

	// Get list of tables
	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")
	log.Println("================================")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		status := "✅"
		if count == 0 {
			status = "📭"
		}

		log.Printf("%s %-25s | %d records", status, table, count)
	}

	log.Println("================================")
	log.Printf("📈 Total records across all tables: %d", totalRecords)
	log.Printf("🗂️ Total tables: %d", len(tables))

	return nil
}

// CleanupTestData removes test data (useful for production setup)
func (m *Migration) CleanupTestData() error {
	log.Println("🧹 Cleaning up test data...")

	// Remove test products
	result := m.db.Where("sku LIKE ?", "POS-TEST-%").Delete(&catalog.Product{})
	log.Printf("🗑️ Removed %d test products", result.RowsAffected)

	// Remove test cashier (keep admin)
	result = m.db.Where("username = ? AND role = ?", "cashier1", operator.RoleCashier).Delete(&operator.Operator{})
	log.Printf("🗑️ Removed %d test operators", result.RowsAffected)

	log.Println("✅ Test data cleanup completed")
	return nil
}
