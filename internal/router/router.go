package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/shearbook/booking-api/internal/handler"
	availabilityhandler "github.com/shearbook/booking-api/internal/handler/availability"
	bookinghandler "github.com/shearbook/booking-api/internal/handler/booking"
	"github.com/shearbook/booking-api/internal/middleware"
)

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	availabilityH *availabilityhandler.Handler
	bookingH      *bookinghandler.Handler
	paymentH      PaymentHandler
	authH         AuthHandler
	stylistH      StylistHandler
	scheduleH     ScheduleHandler
	h             *handler.Handler
	metrics       *routerMetrics
}

// Handler interfaces keep the router decoupled from handler constructors.
type (
	PaymentHandler interface {
		CreateDepositIntent(*gin.Context)
	}

	AuthHandler interface {
		Login(*gin.Context)
	}

	StylistHandler interface {
		CreateStylist(*gin.Context)
		GetStylist(*gin.Context)
		UpdateStylist(*gin.Context)
		ListStylists(*gin.Context)
		CreateService(*gin.Context)
		ListServices(*gin.Context)
		UpsertStylistService(*gin.Context)
	}

	ScheduleHandler interface {
		UpsertWeeklySchedule(*gin.Context)
		ListWeeklySchedules(*gin.Context)
		UpsertScheduleOverride(*gin.Context)
	}
)

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

type Config struct {
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
	CORSConfig     middleware.CORSConfig
	MetricsPrefix  string
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	availabilityH *availabilityhandler.Handler,
	bookingH *bookinghandler.Handler,
	paymentH PaymentHandler,
	authH AuthHandler,
	stylistH StylistHandler,
	scheduleH ScheduleHandler,
	h *handler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:        engine,
		auth:          auth,
		availabilityH: availabilityH,
		bookingH:      bookingH,
		paymentH:      paymentH,
		authH:         authH,
		stylistH:      stylistH,
		scheduleH:     scheduleH,
		h:             h,
		metrics:       initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.setupHealthCheck(api)
	r.setupPublicRoutes(api)

	admin := api.Group("/admin")
	admin.Use(r.auth.RequireAdmin())
	r.setupAdminRoutes(admin)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("", r.h.HealthCheck)
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
	}
	rg.GET("/metrics", r.h.MetricsHandler)
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/availability", r.availabilityH.GetAvailability)

	bookings := rg.Group("/bookings")
	{
		bookings.POST("", r.bookingH.CreateBooking)
		bookings.GET("/:id", r.bookingH.GetBooking)
		bookings.GET("", r.bookingH.ListBookings)
		bookings.POST("/:id/cancel", r.bookingH.CancelBooking)
	}

	rg.POST("/payments/deposit-intent", r.paymentH.CreateDepositIntent)
	rg.POST("/auth/login", r.authH.Login)

	// Read-only catalog for booking clients
	rg.GET("/stylists", r.stylistH.ListStylists)
	rg.GET("/stylists/:id", r.stylistH.GetStylist)
	rg.GET("/services", r.stylistH.ListServices)
}

func (r *Router) setupAdminRoutes(rg *gin.RouterGroup) {
	stylists := rg.Group("/stylists")
	{
		stylists.POST("", r.stylistH.CreateStylist)
		stylists.PUT("/:id", r.stylistH.UpdateStylist)
		stylists.PUT("/:id/services", r.stylistH.UpsertStylistService)
		stylists.GET("/:id/schedules", r.scheduleH.ListWeeklySchedules)
		stylists.PUT("/:id/schedules", r.scheduleH.UpsertWeeklySchedule)
		stylists.PUT("/:id/schedule-overrides", r.scheduleH.UpsertScheduleOverride)
	}

	rg.POST("/services", r.stylistH.CreateService)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
