// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/operator"
	"github.com/your-org/pos-backend/internal/interfaces/http/handlers"
	"github.com/your-org/pos-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires all API routes
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	setupAuthRoutes(rg, db, cfg, logger)
	setupCatalogRoutes(rg, db, redisClient, cfg)
	setupPOSRoutes(rg, db, redisClient, cfg, logger)
	setupSaleRoutes(rg, db, redisClient, cfg, logger)
	setupAdminRoutes(rg, db, redisClient, cfg)
}

// setupAuthRoutes sets up operator authentication routes
func setupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	authHandler := handlers.NewAuthHandler(db, cfg, logger)

	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/profile", authHandler.GetProfile)
			protected.POST("/authorize", authHandler.Authorize)
		}
	}
}

// setupCatalogRoutes sets up catalog lookup routes used by the register
func setupCatalogRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	catalogHandler := handlers.NewCatalogHandler(db, redisClient, cfg)

	products := rg.Group("/products")
	products.Use(middleware.AuthMiddleware(cfg))
	{
		products.GET("/search", catalogHandler.SearchProducts)
		products.GET("/barcode/:code", catalogHandler.GetProductByBarcode)
		products.GET("/:id", catalogHandler.GetProduct)
		products.GET("/:id/validate", catalogHandler.ValidateProduct)
	}

	paymentMethods := rg.Group("/payment-methods")
	paymentMethods.Use(middleware.AuthMiddleware(cfg))
	{
		paymentMethods.GET("", catalogHandler.GetPaymentMethods)
	}

	customers := rg.Group("/customers")
	customers.Use(middleware.AuthMiddleware(cfg))
	{
		customers.GET("/search", catalogHandler.SearchCustomers)
		customers.GET("/:id", catalogHandler.GetCustomer)
	}
}

// setupPOSRoutes sets up register session routes
func setupPOSRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	posHandler := handlers.NewPOSHandler(db, redisClient, cfg, logger)

	sessions := rg.Group("/pos/sessions")
	sessions.Use(middleware.AuthMiddleware(cfg))
	{
		sessions.POST("", posHandler.NewSession)
		sessions.GET("/:session_id/cart", posHandler.GetCart)
		sessions.DELETE("/:session_id/cart", posHandler.ClearCart)

		sessions.POST("/:session_id/scan", posHandler.ScanProduct)
		sessions.POST("/:session_id/items", posHandler.AddProduct)
		sessions.PUT("/:session_id/items/:product_id", posHandler.SetQuantity)
		sessions.DELETE("/:session_id/items/:product_id", posHandler.RemoveLine)
		sessions.PUT("/:session_id/items/:product_id/discount", posHandler.ApplyLineDiscount)

		sessions.PUT("/:session_id/discount", posHandler.SetGeneralDiscount)
		sessions.POST("/:session_id/discount/approve", posHandler.ApproveDiscount)
		sessions.POST("/:session_id/discount/cancel", posHandler.CancelAuthorization)

		sessions.PUT("/:session_id/customer", posHandler.SetCustomer)
		sessions.PUT("/:session_id/payment-method", posHandler.SetPaymentMethod)
		sessions.PUT("/:session_id/tendered", posHandler.SetAmountTendered)
		sessions.PUT("/:session_id/notes", posHandler.SetNotes)

		sessions.POST("/:session_id/finalize", posHandler.Finalize)
	}
}

// setupSaleRoutes sets up recorded sale and receipt routes
func setupSaleRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	saleHandler := handlers.NewSaleHandler(db, cfg, logger)
	receiptHandler := handlers.NewReceiptHandler(db, redisClient, cfg, logger)

	sales := rg.Group("/sales")
	sales.Use(middleware.AuthMiddleware(cfg))
	{
		sales.GET("", saleHandler.GetSales)
		sales.GET("/code/:code", saleHandler.GetSaleByCode)
		sales.GET("/:id", saleHandler.GetSale)
		sales.GET("/:id/receipt", receiptHandler.DownloadReceipt)
		sales.POST("/:id/receipt/email", receiptHandler.EmailReceipt)

		// Voiding a sale restores stock; supervisor or higher only.
		void := sales.Group("")
		void.Use(middleware.RoleMiddleware(operator.RoleSupervisor))
		{
			void.POST("/:id/void", saleHandler.VoidSale)
		}
	}
}

// setupAdminRoutes sets up catalog maintenance routes
func setupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	catalogHandler := handlers.NewCatalogHandler(db, redisClient, cfg)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		products := admin.Group("/products")
		{
			products.POST("", catalogHandler.CreateProduct)
			products.PUT("/:id", catalogHandler.UpdateProduct)
		}
	}
}
