package http

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "github.com/sm8ta/webike_rental_service/docs"
	"github.com/sm8ta/webike_rental_service/internal/config"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Router struct {
	router *gin.Engine
	server *http.Server
}

func NewRouter(
	cfg *config.Container,
	tokenService ports.TokenService,
	authHandler *AuthHandler,
	bikeHandler *BikeHandler,
	bookingHandler *BookingHandler,
	paymentHandler *PaymentHandler,
) (*Router, error) {
	if cfg.HTTP.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitOrigins(cfg.HTTP.AllowedOrigins),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Uploaded images
	router.Static("/uploads", cfg.Upload.Dir)

	authRequired := AuthMiddleware(tokenService)
	ownerOnly := RestrictTo(domain.Owner)
	customerOnly := RestrictTo(domain.Customer)
	limiter := newRateLimiter(cfg.RateLimit)

	api := router.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	{
		auth.POST("/signup", limiter.Middleware(), authHandler.Signup)
		auth.POST("/login", limiter.Middleware(), authHandler.Login)
		auth.GET("/logout", authHandler.Logout)
		auth.GET("/me", authRequired, authHandler.Me)
		auth.PUT("/details", authRequired, authHandler.UpdateDetails)
	}

	// Bikes routes
	bikes := api.Group("/bikes")
	{
		bikes.GET("", bikeHandler.ListBikes)
		bikes.GET("/cities", bikeHandler.ListCities)
		bikes.GET("/owner/:ownerId", bikeHandler.GetOwnerBikes)
		bikes.GET("/:id", bikeHandler.GetBike)
		bikes.POST("", authRequired, ownerOnly, bikeHandler.CreateBike)
		bikes.PUT("/:id", authRequired, ownerOnly, bikeHandler.UpdateBike)
		bikes.DELETE("/:id", authRequired, ownerOnly, bikeHandler.DeleteBike)
	}

	// Bookings routes
	bookings := api.Group("/bookings")
	bookings.Use(authRequired)
	{
		bookings.POST("", customerOnly, bookingHandler.CreateBooking)
		bookings.GET("/my-bookings", bookingHandler.GetMyBookings)
		bookings.GET("/my-bike-bookings", ownerOnly, bookingHandler.GetMyBikeBookings)
		bookings.GET("/:id", bookingHandler.GetBooking)
		bookings.PATCH("/:id/status", ownerOnly, bookingHandler.UpdateStatus)
	}

	// Payments routes
	payments := api.Group("/payments")
	payments.Use(authRequired)
	{
		payments.POST("/create-order", paymentHandler.CreateOrder)
		payments.POST("/verify", paymentHandler.VerifyPayment)
	}

	router.NoRoute(spaFallback(cfg.Client.BuildDir))

	return &Router{router: router}, nil
}

// spaFallback serves files of the client build and index.html for client-side routes.
// Unknown API and upload paths get a JSON 404.
func spaFallback(buildDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api") || strings.HasPrefix(path, "/uploads") || c.Request.Method != http.MethodGet {
			newErrorResponse(c, http.StatusNotFound, "Route not found")
			return
		}

		file := filepath.Join(buildDir, filepath.FromSlash(filepath.Clean("/"+path)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}

		index := filepath.Join(buildDir, "index.html")
		if _, err := os.Stat(index); err != nil {
			newErrorResponse(c, http.StatusNotFound, "Route not found")
			return
		}
		c.File(index)
	}
}

func splitOrigins(origins string) []string {
	var out []string
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	if len(out) == 0 {
		out = []string{"*"}
	}
	return out
}

func (r *Router) Serve(addr string) error {
	r.server = &http.Server{
		Addr:    addr,
		Handler: r.router,
	}
	return r.server.ListenAndServe()
}

func (r *Router) Shutdown(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	return r.server.Shutdown(ctx)
}

func (r *Router) Engine() *gin.Engine {
	return r.router
}
