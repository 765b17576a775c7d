package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	cancelBookingHandler "github.com/m04kA/SMC-ClinicBooking/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-ClinicBooking/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-ClinicBooking/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-ClinicBooking/internal/api/handlers/get_booking"
	getRoomAvailabilityHandler "github.com/m04kA/SMC-ClinicBooking/internal/api/handlers/get_room_availability"
	rescheduleBookingHandler "github.com/m04kA/SMC-ClinicBooking/internal/api/handlers/reschedule_booking"
	"github.com/m04kA/SMC-ClinicBooking/internal/api/middleware"
	"github.com/m04kA/SMC-ClinicBooking/internal/config"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/events"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/lock"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/intervals"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-ClinicBooking/internal/service/bookings"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/reconciler"
	cancelBookingUC "github.com/m04kA/SMC-ClinicBooking/internal/usecase/cancel_booking"
	createBookingUC "github.com/m04kA/SMC-ClinicBooking/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-ClinicBooking/internal/usecase/get_available_slots"
	getRoomAvailabilityUC "github.com/m04kA/SMC-ClinicBooking/internal/usecase/get_room_availability"
	rescheduleBookingUC "github.com/m04kA/SMC-ClinicBooking/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-ClinicBooking/pkg/logger"
	"github.com/m04kA/SMC-ClinicBooking/pkg/metrics"
	"github.com/m04kA/SMC-ClinicBooking/pkg/tracing"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

type locker interface {
	Acquire(ctx context.Context, keys ...string) (lock.ReleaseFunc, error)
}

type publisher interface {
	Publish(ctx context.Context, ev events.Event) error
	Close() error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-ClinicBooking...")
	log.Info("Configuration loaded from config.toml")

	// Трейсинг
	shutdownTracing, err := tracing.Setup(context.Background(), tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Metrics.ServiceName,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRatio:  cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatal("Failed to setup tracing: %v", err)
	}
	if cfg.Tracing.Enabled {
		log.Info("Tracing enabled (endpoint=%s, ratio=%.2f)", cfg.Tracing.OTLPEndpoint, cfg.Tracing.SampleRatio)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилище
	var store *storage
	if cfg.Database.IsMemory() {
		store = openMemory(log)
	} else {
		store, err = openPostgres(cfg.Database, metricsCollector, stopMetricsCh, log)
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
	}
	defer store.close()

	// Блокировки ресурсов
	var resourceLocker locker
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancelPing()
			log.Fatal("Failed to ping redis (addr=%s): %v", cfg.Redis.Addr, err)
		}
		cancelPing()

		resourceLocker = lock.NewRedisLocker(redisClient, lock.Options{
			TTL:       time.Duration(cfg.Redis.LockTTLMs) * time.Millisecond,
			Wait:      time.Duration(cfg.Redis.LockWait) * time.Millisecond,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		log.Info("Redis resource locks enabled (addr=%s)", cfg.Redis.Addr)
	} else {
		resourceLocker = lock.NewLocalLocker(time.Duration(cfg.Redis.LockWait) * time.Millisecond)
		log.Info("Using in-process resource locks")
	}

	// Публикация событий
	var eventPublisher publisher
	if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
		eventPublisher = events.NewKafkaPublisher(
			brokers,
			cfg.Kafka.Topic,
			time.Duration(cfg.Kafka.WriteTimeout)*time.Millisecond,
			log,
		)
		log.Info("Kafka publisher initialized (brokers=%v, topic=%s)", brokers, cfg.Kafka.Topic)
	} else {
		eventPublisher = events.NoopPublisher{}
		log.Info("Kafka brokers not configured, booking events are not published")
	}
	defer eventPublisher.Close()

	// Сервисы
	lookup := intervals.NewLookup(store.appointments, store.roomBookings)
	resolver := availability.NewResolver(
		store.resources,
		lookup,
		availability.Options{
			CloseTime:                types.MustTimeString(cfg.Booking.CloseTime),
			AvailableWithoutSchedule: cfg.Booking.AvailableWithoutSchedule,
		},
		log,
	)
	bookingSvc := bookingsService.NewService(store.appointments, store.roomBookings, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		store.appointments,
		store.roomBookings,
		store.resources,
		resolver,
		resourceLocker,
		eventPublisher,
		store.txManager,
		metricsCollector,
		createBookingUC.Options{
			PreparationMinutes: cfg.Booking.WellnessPreparationMinutes,
			AutoAssignRooms:    cfg.Booking.AutoAssignRooms,
		},
		log,
	)

	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookingSvc,
		store.appointments,
		store.roomBookings,
		store.resources,
		resolver,
		resourceLocker,
		eventPublisher,
		store.txManager,
		metricsCollector,
		rescheduleBookingUC.Options{PreparationMinutes: cfg.Booking.WellnessPreparationMinutes},
		log,
	)

	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingSvc,
		store.appointments,
		store.roomBookings,
		store.repairs,
		eventPublisher,
		metricsCollector,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		resolver,
		getAvailableSlotsUC.Options{
			OpenTime:            types.MustTimeString(cfg.Booking.OpenTime),
			CloseTime:           types.MustTimeString(cfg.Booking.CloseTime),
			ClinicalStepMinutes: cfg.Booking.ClinicalStepMinutes,
			WellnessStepMinutes: cfg.Booking.WellnessStepMinutes,
			PreparationMinutes:  cfg.Booking.WellnessPreparationMinutes,
		},
		log,
	)

	getRoomAvailabilityUseCase := getRoomAvailabilityUC.NewUseCase(store.resources, resolver, log)

	// Фоновое восстановление пар
	reconcilerCtx, stopReconciler := context.WithCancel(context.Background())
	reconcilerDone := make(chan struct{})
	if cfg.Reconciler.Enabled {
		repairWorker := reconciler.New(
			store.repairs,
			store.appointments,
			store.roomBookings,
			store.txManager,
			eventPublisher,
			metricsCollector,
			reconciler.Options{
				Interval:    time.Duration(cfg.Reconciler.IntervalSec) * time.Second,
				BatchSize:   cfg.Reconciler.BatchSize,
				MaxAttempts: cfg.Reconciler.MaxAttempts,
				Backoff:     time.Duration(cfg.Reconciler.BackoffSeconds) * time.Second,
			},
			log,
		)
		go func() {
			defer close(reconcilerDone)
			repairWorker.Run(reconcilerCtx)
		}()
		log.Info("Reconciler started (interval=%ds, batch=%d)", cfg.Reconciler.IntervalSec, cfg.Reconciler.BatchSize)
	} else {
		close(reconcilerDone)
	}

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getRoomAvailability := getRoomAvailabilityHandler.NewHandler(getRoomAvailabilityUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		api.Use(limiter.Middleware(log))
		log.Info("Rate limiting enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Сетка слотов ресурса на дату
	api.HandleFunc("/resources/{kind}/{resourceId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Доступность всех кабинетов вида на интервал
	api.HandleFunc("/rooms/{kind}/availability",
		getRoomAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования с парной записью
	protected.HandleFunc("/bookings/{kind}/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Перенос бронирования
	protected.HandleFunc("/bookings/{kind}/{bookingId}", rescheduleBooking.Handle).Methods(http.MethodPatch)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{kind}/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, cfg.Metrics.ServiceName),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	stopReconciler()
	select {
	case <-reconcilerDone:
	case <-shutdownCtx.Done():
		log.Warn("Reconciler did not stop before shutdown timeout")
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to flush traces: %v", err)
	}

	log.Info("Server stopped gracefully")
}
