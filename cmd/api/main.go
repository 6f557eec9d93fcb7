package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/smarthealthpro/booking-api/internal/config"
	"github.com/smarthealthpro/booking-api/internal/email"
	"github.com/smarthealthpro/booking-api/internal/handler"
	appointmentHandler "github.com/smarthealthpro/booking-api/internal/handler/appointment"
	authHandler "github.com/smarthealthpro/booking-api/internal/handler/auth"
	doctorHandler "github.com/smarthealthpro/booking-api/internal/handler/doctor"
	patientHandler "github.com/smarthealthpro/booking-api/internal/handler/patient"
	presenceHandler "github.com/smarthealthpro/booking-api/internal/handler/presence"
	"github.com/smarthealthpro/booking-api/internal/middleware"
	"github.com/smarthealthpro/booking-api/internal/repository/postgres"
	"github.com/smarthealthpro/booking-api/internal/router"
	appointmentService "github.com/smarthealthpro/booking-api/internal/service/appointment"
	authService "github.com/smarthealthpro/booking-api/internal/service/auth"
	doctorService "github.com/smarthealthpro/booking-api/internal/service/doctor"
	patientService "github.com/smarthealthpro/booking-api/internal/service/patient"
	presenceService "github.com/smarthealthpro/booking-api/internal/service/presence"
	"github.com/smarthealthpro/booking-api/internal/service/schedule"
	"github.com/smarthealthpro/booking-api/pkg/auth"
	"github.com/smarthealthpro/booking-api/pkg/logger"
	"github.com/smarthealthpro/booking-api/pkg/messaging/redis"
	"github.com/smarthealthpro/booking-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	// Repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Message broker
	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.ZL)
	if err != nil {
		log.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	redisOpts, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal(err, "invalid Redis URL")
	}
	redisClient := goredis.NewClient(redisOpts)
	defer redisClient.Close()

	m := metrics.NewMetrics("booking", "api")

	// Services
	jwtSvc := auth.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		time.Duration(cfg.JWT.ExpiryHours)*time.Hour,
		time.Duration(cfg.JWT.RefreshExpiryHours)*time.Hour,
	)
	emailSvc := email.NewService(cfg.SMTP)
	hoursResolver := schedule.NewHoursResolver(doctorRepo, cfg.Scheduler.HoursCacheTTL)
	scheduleSvc := schedule.NewService(appointmentRepo, hoursResolver, broker, log, m)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, doctorRepo, userRepo, emailSvc, broker, log)
	doctorSvc := doctorService.NewService(doctorRepo, hoursResolver)
	patientSvc := patientService.NewService(patientRepo)
	authSvc := authService.NewService(userRepo, jwtSvc)
	presenceSvc := presenceService.NewService(redisClient, cfg.Redis.PresenceTTL)

	// Handlers
	h := handler.NewHandler(db, redisClient)
	authH := authHandler.NewHandler(authSvc)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc, scheduleSvc)
	doctorH := doctorHandler.NewHandler(doctorSvc)
	patientH := patientHandler.NewHandler(patientSvc)
	presenceH := presenceHandler.NewHandler(presenceSvc)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(
		authMiddleware,
		authH,
		appointmentH,
		doctorH,
		patientH,
		presenceH,
		h,
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			MetricsPrefix:    "booking_api",
			CORSConfig:       middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}

	log.Info("server exited properly")
}
