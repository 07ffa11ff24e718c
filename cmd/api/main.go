package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/nextserve/booking-core-api/internal/handler"
	"github.com/nextserve/booking-core-api/internal/integrations/eligibility"
	"github.com/nextserve/booking-core-api/internal/integrations/notifier"
	internalmw "github.com/nextserve/booking-core-api/internal/middleware"
	"github.com/nextserve/booking-core-api/internal/repository"
	"github.com/nextserve/booking-core-api/internal/service"
	"github.com/nextserve/booking-core-api/pkg/cache"
	"github.com/nextserve/booking-core-api/pkg/config"
	"github.com/nextserve/booking-core-api/pkg/database"
	"github.com/nextserve/booking-core-api/pkg/logger"
	corsmiddleware "github.com/nextserve/booking-core-api/pkg/middleware/cors"
	reqidmiddleware "github.com/nextserve/booking-core-api/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The API stays up without Redis: eligibility loses its cache and
		// booking events stop fanning out, nothing else.
		logr.Sugar().Warnw("redis unavailable, running without cache and fan-out", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	providerRepo := repository.NewProviderRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	hoursRepo := repository.NewBusinessHoursRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.JWT.Secret)
	availabilitySvc := service.NewAvailabilityService(providerRepo, availabilityRepo, validate, logr)
	syncSvc := service.NewSyncService(providerRepo, availabilityRepo, hoursRepo, logr)
	viewSvc := service.NewScheduleViewService(providerRepo, availabilityRepo, logr)
	preferenceSvc := service.NewPreferenceService(providerRepo, preferenceRepo, validate, logr)
	bookingNotifier := notifier.New(redisClient, cfg.Booking.EventChannel, logr)
	bookingSvc := service.NewBookingService(bookingRepo, providerRepo, availabilityRepo, preferenceRepo, bookingNotifier, metricsSvc, cfg.Booking.ConflictWarnings, logr)
	eligibilityClient := eligibility.NewClient(cfg.Eligibility, logr)
	eligibilitySvc := service.NewEligibilityService(eligibilityClient, catalogRepo, cacheRepo, metricsSvc, cfg.Eligibility.CacheTTL, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmw.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	handler.RegisterRoutes(r, cfg.APIPrefix, authSvc,
		handler.NewScheduleHandler(availabilitySvc, viewSvc, syncSvc),
		handler.NewBookingHandler(bookingSvc),
		handler.NewPreferenceHandler(preferenceSvc),
		handler.NewEligibilityHandler(eligibilitySvc),
	)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
