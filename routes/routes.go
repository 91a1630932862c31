package routes

import (
	"banhangso-backend/cache"
	"banhangso-backend/firebase"
	"banhangso-backend/handlers"
	"banhangso-backend/middleware"
	"banhangso-backend/models"
	"banhangso-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, authClient firebase.AuthClient, storageClient firebase.StorageClient, cacheClient *cache.Cache) {
	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db, Auth: authClient, Storage: storageClient}
	storeHandler := &handlers.StoreHandler{DB: db, Auth: authClient, Storage: storageClient, Cache: cacheClient}
	productHandler := &handlers.ProductHandler{DB: db, Storage: storageClient, Cache: cacheClient}
	categoryHandler := &handlers.CategoryHandler{DB: db}
	brandHandler := &handlers.BrandHandler{DB: db, Storage: storageClient}
	customerHandler := &handlers.CustomerHandler{DB: db, Storage: storageClient}
	staffHandler := &handlers.StaffHandler{DB: db, Auth: authClient}
	saleHandler := &handlers.SaleHandler{DB: db, Cache: cacheClient}
	transactionHandler := &handlers.TransactionHandler{DB: db, Cache: cacheClient}
	reportHandler := &handlers.ReportHandler{DB: db}
	uploadHandler := &handlers.UploadHandler{Storage: storageClient}

	r.GET("/health", func(c *gin.Context) {
		utils.Success(c, 200, gin.H{"status": "healthy"})
	})

	// Public routes
	r.POST("/auth/signup", authHandler.Signup)

	// Protected routes (require authentication)
	protected := r.Group("")
	protected.Use(middleware.AuthMiddleware(authClient))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/uploads/images", uploadHandler.UploadImage)

		protected.GET("/stores/user", storeHandler.GetUserStores)
		protected.POST("/stores", storeHandler.CreateStore)
	}

	// Store-scoped routes: any member
	member := protected.Group("/stores/:storeId")
	member.Use(middleware.StoreAccess(db))
	{
		member.GET("/products", productHandler.List)
		member.GET("/products/search", productHandler.Search)
		member.GET("/products/:id", productHandler.Get)
		member.POST("/products", productHandler.Create)
		member.PUT("/products/:id", productHandler.Update)
		member.DELETE("/products/:id", productHandler.Delete)

		member.GET("/categories", categoryHandler.List)
		member.GET("/categories/search", categoryHandler.Search)
		member.GET("/categories/:id", categoryHandler.Get)
		member.POST("/categories", categoryHandler.Create)
		member.PUT("/categories/:id", categoryHandler.Update)
		member.DELETE("/categories/:id", categoryHandler.Delete)

		member.GET("/brands", brandHandler.List)
		member.GET("/brands/search", brandHandler.Search)
		member.GET("/brands/:id", brandHandler.Get)
		member.POST("/brands", brandHandler.Create)
		member.PUT("/brands/:id", brandHandler.Update)
		member.DELETE("/brands/:id", brandHandler.Delete)

		member.GET("/customers", customerHandler.List)
		member.GET("/customers/search", customerHandler.Search)
		member.GET("/customers/:id", customerHandler.Get)
		member.POST("/customers", customerHandler.Create)
		member.PUT("/customers/:id", customerHandler.Update)
		member.DELETE("/customers/:id", customerHandler.Delete)

		member.GET("/staffs", staffHandler.List)
		member.GET("/staffs/search", staffHandler.Search)
		member.GET("/staffs/:id", staffHandler.Get)

		member.GET("/sales/products", saleHandler.Products)
		member.GET("/sales/products/search", saleHandler.SearchProducts)

		member.POST("/transactions", transactionHandler.Create)
		member.GET("/transactions", transactionHandler.List)
		member.GET("/transactions/search", transactionHandler.Search)
		member.GET("/transactions/:id", transactionHandler.Get)

		member.GET("/reports/summary", reportHandler.Summary)
	}

	// Owner-only routes: store settings and staff management
	owner := protected.Group("/stores/:storeId")
	owner.Use(middleware.StoreAccess(db, models.RoleOwner))
	{
		owner.PUT("", storeHandler.UpdateStore)
		owner.DELETE("", storeHandler.DeleteStore)

		owner.POST("/staffs", staffHandler.Create)
		owner.PUT("/staffs/:id", staffHandler.Update)
		owner.DELETE("/staffs/:id", staffHandler.Delete)
	}
}
