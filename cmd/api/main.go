package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/shearbook/booking-api/internal/config"
	"github.com/shearbook/booking-api/internal/email"
	"github.com/shearbook/booking-api/internal/handler"
	authHandler "github.com/shearbook/booking-api/internal/handler/auth"
	availabilityHandler "github.com/shearbook/booking-api/internal/handler/availability"
	bookingHandler "github.com/shearbook/booking-api/internal/handler/booking"
	paymentHandler "github.com/shearbook/booking-api/internal/handler/payment"
	scheduleHandler "github.com/shearbook/booking-api/internal/handler/schedule"
	stylistHandler "github.com/shearbook/booking-api/internal/handler/stylist"
	"github.com/shearbook/booking-api/internal/middleware"
	"github.com/shearbook/booking-api/internal/payment"
	"github.com/shearbook/booking-api/internal/repository/postgres"
	"github.com/shearbook/booking-api/internal/router"
	authService "github.com/shearbook/booking-api/internal/service/auth"
	availabilityService "github.com/shearbook/booking-api/internal/service/availability"
	bookingService "github.com/shearbook/booking-api/internal/service/booking"
	"github.com/shearbook/booking-api/internal/service/catalog"
	"github.com/shearbook/booking-api/internal/service/pricing"
	scheduleService "github.com/shearbook/booking-api/internal/service/schedule"
	"github.com/shearbook/booking-api/pkg/logger"
	"github.com/shearbook/booking-api/pkg/metrics"
	"github.com/shearbook/booking-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := validator.RegisterCustom(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	appLogger := logger.NewLogger(nil)

	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Booking.Timezone).Msg("invalid booking timezone")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	stylistRepo := postgres.NewStylistRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)

	m := metrics.NewMetrics("booking_api")

	// Services
	pricingSvc := pricing.NewService(serviceRepo)
	resolver := scheduleService.NewResolver(scheduleRepo)
	availabilitySvc := availabilityService.NewService(resolver, bookingRepo, loc, m)
	processor := payment.NewStripeProcessor(cfg.Stripe.SecretKey)
	emailSvc := email.NewService(cfg.Email)
	bookingSvc := bookingService.NewService(
		bookingRepo, stylistRepo, pricingSvc, processor, emailSvc, m, appLogger, loc)
	catalogSvc := catalog.NewService(stylistRepo, serviceRepo, scheduleRepo)
	authSvc := authService.NewService(cfg.Auth)

	// Handlers
	h := handler.NewHandler(db)
	availabilityH := availabilityHandler.NewHandler(availabilitySvc)
	bookingH := bookingHandler.NewHandler(bookingSvc, loc)
	paymentH := paymentHandler.NewHandler(bookingSvc)
	authH := authHandler.NewHandler(authSvc)
	stylistH := stylistHandler.NewHandler(catalogSvc)
	scheduleH := scheduleHandler.NewHandler(catalogSvc)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.NewRouter(
		authMiddleware,
		availabilityH,
		bookingH,
		paymentH,
		authH,
		stylistH,
		scheduleH,
		h,
		router.Config{
			RateLimit:      rate.Limit(cfg.Server.RateLimit),
			RateBurst:      cfg.Server.RateBurst,
			RequestTimeout: cfg.Server.RequestTimeout,
			CORSConfig:     middleware.DefaultCORSConfig(),
			MetricsPrefix:  "booking_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
