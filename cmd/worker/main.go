package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smarthealthpro/booking-api/internal/config"
	"github.com/smarthealthpro/booking-api/internal/repository/postgres"
	"github.com/smarthealthpro/booking-api/internal/service/schedule"
	"github.com/smarthealthpro/booking-api/internal/worker"
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

	if !cfg.Scheduler.Enabled {
		log.Info("scheduler disabled, exiting")
		return
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	appointmentRepo := postgres.NewAppointmentRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)

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

	m := metrics.NewMetrics("booking", "worker")

	setupHealthCheck(cfg.Scheduler.HealthPort, log)

	hoursResolver := schedule.NewHoursResolver(doctorRepo, cfg.Scheduler.HoursCacheTTL)
	scheduleSvc := schedule.NewService(appointmentRepo, hoursResolver, broker, log, m)

	w := worker.NewScheduleWorker(scheduleSvc, cfg.Scheduler.Interval, log)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down worker")
		cancel()
	}()

	log.Info("starting schedule worker", "interval", cfg.Scheduler.Interval.String())
	w.Start(ctx)
	log.Info("worker exited properly")
}

func setupHealthCheck(port int, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			log.Error(err, "health check server failed")
			os.Exit(1)
		}
	}()
}
