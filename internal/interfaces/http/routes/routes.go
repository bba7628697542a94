// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/shopfront/internal/config"
	"github.com/your-org/shopfront/internal/domain/cart"
	"github.com/your-org/shopfront/internal/domain/checkout"
	"github.com/your-org/shopfront/internal/domain/order"
	"github.com/your-org/shopfront/internal/domain/product"
	"github.com/your-org/shopfront/internal/domain/upload"
	"github.com/your-org/shopfront/internal/domain/user"
	"github.com/your-org/shopfront/internal/infrastructure/cache"
	"github.com/your-org/shopfront/internal/infrastructure/events"
	"github.com/your-org/shopfront/internal/interfaces/http/handlers"
	"github.com/your-org/shopfront/internal/interfaces/http/middleware"
	"github.com/your-org/shopfront/internal/interfaces/http/response"
	"github.com/your-org/shopfront/internal/pkg/auth"
	"github.com/your-org/shopfront/internal/pkg/pdf"
)

// Services holds the domain services the routes are built from
type Services struct {
	Tokens     *auth.JWTManager
	Users      *user.Service
	Products   *product.Service
	Categories *product.CategoryService
	Reviews    *product.ReviewService
	Uploads    *upload.Service
	Carts      *cart.Service
	Orders     *order.Service
	Checkout   *checkout.Service
	Invoices   *pdf.Service
}

// NewServices wires the domain services. redisClient may be nil, in which
// case product reads go straight to the database.
func NewServices(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, publisher events.Publisher, log logrus.FieldLogger) *Services {
	var productCache *cache.Cache
	if redisClient != nil && cfg.Cache.Enabled {
		productCache = cache.New(redisClient, "shop:", log)
	}

	tokens := auth.NewJWTManager(cfg)
	uploads := upload.NewService(cfg, log)
	products := product.NewService(db, productCache, cfg.Cache.ProductTTL, uploads, log)
	orders := order.NewService(db, publisher, products, log)

	return &Services{
		Tokens:     tokens,
		Users:      user.NewService(db, auth.NewPasswordManager(cfg), tokens, log),
		Products:   products,
		Categories: product.NewCategoryService(db, products),
		Reviews:    product.NewReviewService(db, products),
		Uploads:    uploads,
		Carts:      cart.NewService(db),
		Orders:     orders,
		Checkout:   checkout.NewService(db, orders, products, order.NewPricingPolicy(cfg.Checkout), log),
		Invoices:   pdf.NewService(cfg.Invoice),
	}
}

// SetupRoutes mounts every API route on rg
func SetupRoutes(rg *gin.RouterGroup, svc *Services) {
	response.UseJSONFieldNames()

	authenticated := middleware.AuthMiddleware(svc.Tokens, svc.Users)
	adminOnly := middleware.RequireRoles(user.RoleAdmin)

	SetupAuthRoutes(rg, svc, authenticated)
	SetupProductRoutes(rg, svc, authenticated, adminOnly)
	SetupCategoryRoutes(rg, svc, authenticated, adminOnly)
	SetupCartRoutes(rg, svc, authenticated)
	SetupOrderRoutes(rg, svc, authenticated, adminOnly)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, svc *Services, authenticated gin.HandlerFunc) {
	authHandler := handlers.NewAuthHandler(svc.Users)
	addressHandler := handlers.NewUserAddressHandler(svc.Users)

	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)

		me := authGroup.Group("/me", authenticated)
		{
			me.GET("", authHandler.Me)
			me.POST("/addresses", addressHandler.AddAddress)
			me.DELETE("/addresses/:addressId", addressHandler.RemoveAddress)
		}
	}
}

// SetupProductRoutes sets up product, review and image upload routes
func SetupProductRoutes(rg *gin.RouterGroup, svc *Services, authenticated, adminOnly gin.HandlerFunc) {
	productHandler := handlers.NewProductHandler(svc.Products)
	reviewHandler := handlers.NewReviewHandler(svc.Reviews)
	uploadHandler := handlers.NewUploadHandler(svc.Uploads)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.ListProducts)
		products.GET("/:id", productHandler.GetProduct)

		products.POST("/:id/reviews", authenticated, reviewHandler.CreateReview)
		products.DELETE("/:id/reviews/:reviewId", authenticated, reviewHandler.DeleteReview)

		admin := products.Group("", authenticated, adminOnly)
		{
			admin.POST("", productHandler.CreateProduct)
			admin.POST("/upload", uploadHandler.UploadProductImage)
			admin.PUT("/:id", productHandler.UpdateProduct)
			admin.DELETE("/:id", productHandler.DeleteProduct)
		}
	}
}

// SetupCategoryRoutes sets up category routes
func SetupCategoryRoutes(rg *gin.RouterGroup, svc *Services, authenticated, adminOnly gin.HandlerFunc) {
	categoryHandler := handlers.NewCategoryHandler(svc.Categories)

	categories := rg.Group("/categories")
	{
		categories.GET("", categoryHandler.ListCategories)
		categories.GET("/:id", categoryHandler.GetCategory)

		admin := categories.Group("", authenticated, adminOnly)
		{
			admin.POST("", categoryHandler.CreateCategory)
			admin.PUT("/:id", categoryHandler.UpdateCategory)
			admin.DELETE("/:id", categoryHandler.DeleteCategory)
		}
	}
}

// SetupCartRoutes sets up cart routes
func SetupCartRoutes(rg *gin.RouterGroup, svc *Services, authenticated gin.HandlerFunc) {
	cartHandler := handlers.NewCartHandler(svc.Carts)

	carts := rg.Group("/cart", authenticated)
	{
		carts.GET("", cartHandler.GetCart)
		carts.POST("/add", cartHandler.AddToCart)
		carts.PUT("/item/:productId", cartHandler.UpdateCartItem)
		carts.DELETE("/item/:productId", cartHandler.RemoveCartItem)
		carts.DELETE("", cartHandler.ClearCart)
	}
}

// SetupOrderRoutes sets up order routes
func SetupOrderRoutes(rg *gin.RouterGroup, svc *Services, authenticated, adminOnly gin.HandlerFunc) {
	checkoutHandler := handlers.NewCheckoutHandler(svc.Checkout)
	orderHandler := handlers.NewOrderHandler(svc.Orders)
	invoiceHandler := handlers.NewInvoiceHandler(svc.Orders, svc.Invoices)

	orders := rg.Group("/orders", authenticated)
	{
		orders.POST("", checkoutHandler.PlaceOrder)
		orders.GET("/myorders", orderHandler.GetMyOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/invoice", invoiceHandler.DownloadInvoice)

		orders.GET("", adminOnly, orderHandler.ListOrders)
		orders.PUT("/:id/status", adminOnly, orderHandler.UpdateOrderStatus)
	}
}
