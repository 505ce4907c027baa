package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/kompu/storefront/docs"
	"github.com/kompu/storefront/internal/api/handler"
	"github.com/kompu/storefront/internal/api/middleware"
	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
)

// RouterDeps carries the services exposed over HTTP.
type RouterDeps struct {
	Auth     ports.AuthService
	Profile  ports.ProfileService
	Catalog  ports.CatalogService
	Cart     ports.CartService
	Wishlist ports.WishlistService
	Reviews  ports.ReviewService
	Orders   ports.OrderService
	Checkout ports.CheckoutService
	Admin    ports.AdminService

	Resolver middleware.ClaimsResolver
	// Readiness lists the backing services pinged by /health/ready.
	Readiness map[string]handler.Pinger

	// AuthRate and AuthBurst limit the public auth endpoints per client IP.
	AuthRate  float64
	AuthBurst int

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddleware("storefront"))
	e.Use(middleware.BearerToken())

	authMW := middleware.Auth(deps.Resolver)

	// --- Auth routes (rate limited) ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	auth := e.Group("/auth", middleware.RateLimit(deps.AuthRate, deps.AuthBurst))
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/password/forgot", authHandler.ForgotPassword)
	auth.POST("/password/reset", authHandler.ResetPassword)

	// --- Public catalog ---
	catalogHandler := handler.NewCatalogHandler(deps.Catalog)
	reviewHandler := handler.NewReviewHandler(deps.Reviews)
	e.GET("/products", catalogHandler.Search)
	e.GET("/products/facets", catalogHandler.Facets)
	e.GET("/products/latest", catalogHandler.Latest)
	e.GET("/products/:id", catalogHandler.Get)
	e.POST("/products/:id/reviews", reviewHandler.Submit, authMW)

	// --- Current user ---
	profileHandler := handler.NewProfileHandler(deps.Profile)
	cartHandler := handler.NewCartHandler(deps.Cart)
	wishlistHandler := handler.NewWishlistHandler(deps.Wishlist)
	orderHandler := handler.NewOrderHandler(deps.Orders)

	me := e.Group("/me", authMW)
	me.GET("", profileHandler.Get)
	me.PUT("", profileHandler.Update)
	me.GET("/cart", cartHandler.View)
	me.POST("/cart", cartHandler.Add)
	me.PUT("/cart/:id", cartHandler.SetQuantity)
	me.DELETE("/cart/:id", cartHandler.Remove)
	me.GET("/wishlist", wishlistHandler.List)
	me.POST("/wishlist", wishlistHandler.Toggle)
	me.DELETE("/wishlist/:id", wishlistHandler.Remove)
	me.GET("/orders", orderHandler.History)
	me.GET("/orders/:id/invoice", orderHandler.Invoice)

	// --- Checkout ---
	checkoutHandler := handler.NewCheckoutHandler(deps.Checkout)
	checkout := e.Group("/checkout", authMW)
	checkout.POST("", checkoutHandler.Begin)
	checkout.POST("/:id/approve", checkoutHandler.Approve)
	checkout.POST("/:id/fail", checkoutHandler.Fail)

	// --- Admin ---
	adminHandler := handler.NewAdminHandler(deps.Admin)
	admin := e.Group("/admin", authMW, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/products", adminHandler.Products)
	admin.POST("/products", adminHandler.CreateProduct)
	admin.PATCH("/products/:id", adminHandler.EditProduct)
	admin.DELETE("/products/:id", adminHandler.DeleteProduct)
	admin.GET("/users", adminHandler.Users)
	admin.POST("/users/:id/toggle", adminHandler.ToggleUserState)

	// --- Health checks, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
