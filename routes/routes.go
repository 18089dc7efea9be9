package routes

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/scrubline/scrubline-backend-go/handlers"
	customMiddleware "github.com/scrubline/scrubline-backend-go/middleware"
	"github.com/scrubline/scrubline-backend-go/metrics"
)

type Options struct {
	Auth        *customMiddleware.Auth
	AuthLimiter *customMiddleware.RateLimiter
	// AdminDir holds the static back-office pages served under /admin.
	AdminDir string
	// UploadDir is served under /uploads when set.
	UploadDir string
}

const adminLoginPage = "/admin/login.html"

func SetupRoutes(e *echo.Echo, h *handlers.Handler, opts Options) {
	optional := opts.Auth.Optional()
	required := opts.Auth.Required()
	admin := []echo.MiddlewareFunc{required, customMiddleware.RequireAdmin}

	e.GET("/health", h.Health)
	e.GET("/metrics", metrics.Handler())
	if opts.UploadDir != "" {
		e.Static("/uploads", opts.UploadDir)
	}
	if opts.AdminDir != "" {
		pages := e.Group("/admin", opts.Auth.AdminPages(adminLoginPage))
		pages.Use(echoMiddleware.StaticWithConfig(echoMiddleware.StaticConfig{
			Root:  opts.AdminDir,
			Index: "index.html",
		}))
	}

	api := e.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.POST("/signup", h.Signup, opts.AuthLimiter.Middleware())
	auth.POST("/login", h.Login, opts.AuthLimiter.Middleware())
	auth.POST("/logout", h.Logout)
	auth.GET("/session", h.Session, required)

	// User routes
	api.GET("/users/me", h.GetUserProfile, required)
	api.PUT("/users/me", h.UpdateUserProfile, required)

	// Product routes
	api.GET("/products", h.GetProducts)
	api.GET("/products/:id", h.GetProduct)
	api.POST("/products", h.CreateProduct, admin...)
	api.PUT("/products/:id", h.UpdateProduct, admin...)
	api.DELETE("/products/:id", h.DeleteProduct, admin...)

	// Cart routes
	api.GET("/cart", h.GetCart, optional)
	api.POST("/cart/quote", h.QuoteCart, optional)

	// Order routes
	api.POST("/orders", h.CreateOrder, optional)
	api.GET("/orders", h.GetOrders, optional)
	api.POST("/orders/query", h.QueryOrders, optional)
	api.GET("/orders/:id", h.GetOrder, optional)
	api.PUT("/orders", h.UpdateOrder, required)
	api.PUT("/orders/:id", h.UpdateOrder, required)
	api.DELETE("/orders", h.DeleteOrder, required)
	api.DELETE("/orders/:id", h.DeleteOrder, required)

	// Address routes
	addresses := api.Group("/addresses", required)
	addresses.GET("", h.GetAddresses)
	addresses.POST("", h.AddAddress)
	addresses.PUT("", h.UpdateAddress)
	addresses.PUT("/:id", h.UpdateAddress)
	addresses.PATCH("", h.SetPrimaryAddress)
	addresses.PATCH("/:id", h.SetPrimaryAddress)
	addresses.DELETE("", h.DeleteAddress)
	addresses.DELETE("/:id", h.DeleteAddress)

	// Wishlist and reviews
	api.GET("/wishlist", h.GetWishlist, optional)
	api.POST("/wishlist", h.ToggleWishlist, optional)
	api.GET("/reviews", h.GetMyReviews, required)
	api.POST("/reviews", h.SubmitReview, required)
	api.GET("/product-reviews", h.GetProductReviews)

	api.POST("/feedback", h.SubmitFeedback)
	api.POST("/upload", h.Upload, required)
	api.GET("/settings", h.GetSettings)

	// Admin routes
	adminAPI := api.Group("/admin", admin...)
	adminAPI.GET("/dashboard", h.Dashboard)
	adminAPI.GET("/analytics/revenue", h.RevenueAnalytics)
	adminAPI.GET("/analytics/breakdown", h.BreakdownAnalytics)
	adminAPI.GET("/users", h.ListUsers)
	adminAPI.PATCH("/users/:id/status", h.SetUserStatus)
	adminAPI.DELETE("/users/:id", h.DeleteUser)
	adminAPI.GET("/feedback", h.ListFeedback)
	adminAPI.GET("/settings", h.GetSettings)
	adminAPI.PUT("/settings", h.UpdateSettings)
}
