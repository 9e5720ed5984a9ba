// Package handlers exposes the rental services over HTTP with gin.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/scooter-rental/internal/auth"
	"github.com/ukydev/scooter-rental/internal/booking"
	"github.com/ukydev/scooter-rental/internal/catalog"
	"github.com/ukydev/scooter-rental/internal/middleware"
	"github.com/ukydev/scooter-rental/internal/models"
	"github.com/ukydev/scooter-rental/internal/payment"
)

// Services are the dependencies the routes call into.
type Services struct {
	Auth      *auth.Service
	Bookings  *booking.Service
	Payments  *payment.Service
	Bikes     *catalog.BikeService
	Customers *catalog.CustomerService
	Areas     *catalog.AreaService
	Rentals   *catalog.RentalService
}

// RouterConfig tunes the HTTP surface.
type RouterConfig struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	TrustProxy        bool
	// Health reports storage reachability. Nil means always healthy.
	Health func(ctx context.Context) error
}

// NewRouter wires every route under /api.
func NewRouter(s Services, cfg RouterConfig, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	if !cfg.TrustProxy {
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(middleware.RequestID(), middleware.Logger(logger), middleware.Recovery(logger))

	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	authMW := middleware.NewAuthMiddleware(s.Auth)
	limit := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow).Handler()

	ah := &AuthHandler{auth: s.Auth}
	bh := &BookingHandler{bookings: s.Bookings}
	ph := &PaymentHandler{payments: s.Payments}
	ch := &CatalogHandler{bikes: s.Bikes, customers: s.Customers, areas: s.Areas, rentals: s.Rentals}

	api := r.Group("/api")
	api.GET("/health", healthHandler(cfg.Health))

	// public
	api.POST("/auth/login", limit, ah.Login)
	api.POST("/availability", bh.CheckAvailability)
	api.GET("/bikes", ch.ListBikes)
	api.GET("/bikes/:id", ch.GetBike)
	api.GET("/areas", ch.ListActiveAreas)
	api.POST("/bookings", limit, bh.Create)
	api.POST("/rentals", limit, ch.CreateRental)
	api.POST("/payments/orders", limit, ph.CreateOrder)
	api.GET("/payments/orders/:orderId/verify", ph.Verify)
	api.POST("/payments/webhook", ph.Webhook)

	staff := api.Group("", authMW.Authenticate())
	staff.GET("/auth/me", ah.Me)
	staff.POST("/auth/register", authMW.RequirePermission(models.ActionManageUsers), ah.Register)
	staff.DELETE("/auth/users/:id", authMW.RequirePermission(models.ActionManageUsers), ah.DeleteUser)

	fleet := staff.Group("", authMW.RequirePermission(models.ActionManageFleet))
	fleet.POST("/bikes", ch.CreateBike)
	fleet.PUT("/bikes/:id", ch.UpdateBike)
	fleet.GET("/customers", ch.ListCustomers)
	fleet.POST("/customers", ch.CreateCustomer)
	fleet.GET("/customers/:id", ch.GetCustomer)
	fleet.PUT("/customers/:id", ch.UpdateCustomer)
	fleet.GET("/areas/all", ch.ListAllAreas)
	fleet.POST("/areas", ch.CreateArea)
	fleet.PUT("/areas/:id", ch.UpdateArea)
	fleet.GET("/rentals", ch.ListRentals)
	fleet.PATCH("/rentals/:id/status", ch.UpdateRentalStatus)

	bookings := staff.Group("", authMW.RequirePermission(models.ActionManageBookings))
	bookings.POST("/bookings/admin", bh.AdminCreate)
	bookings.GET("/bookings", bh.List)
	bookings.GET("/bookings/:id", bh.Get)
	bookings.PUT("/bookings/:id", bh.UpdateDetails)
	bookings.PATCH("/bookings/:id/status", bh.UpdateStatus)
	bookings.PATCH("/bookings/:id/time", bh.UpdateTime)
	bookings.POST("/bookings/:id/cancel", bh.Cancel)
	bookings.GET("/customers/:id/bookings", bh.ListByCustomer)

	admin := staff.Group("", authMW.RequirePermission(models.ActionDeleteRecords))
	admin.DELETE("/bookings/:id", bh.Delete)
	admin.DELETE("/bikes/:id", ch.DeleteBike)
	admin.DELETE("/customers/:id", ch.DeleteCustomer)
	admin.DELETE("/areas/:id", ch.DeleteArea)

	return r
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	}
}
