package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/thesilo/reservations/internal/access"
	cancelReservationHandler "github.com/thesilo/reservations/internal/api/handlers/cancel_reservation"
	createReservationHandler "github.com/thesilo/reservations/internal/api/handlers/create_reservation"
	getReservationHandler "github.com/thesilo/reservations/internal/api/handlers/get_reservation"
	getReservationsHandler "github.com/thesilo/reservations/internal/api/handlers/get_reservations"
	getStatsHandler "github.com/thesilo/reservations/internal/api/handlers/get_stats"
	getTimeSlotsHandler "github.com/thesilo/reservations/internal/api/handlers/get_time_slots"
	healthHandler "github.com/thesilo/reservations/internal/api/handlers/health"
	updateStatusHandler "github.com/thesilo/reservations/internal/api/handlers/update_status"
	"github.com/thesilo/reservations/internal/api/middleware"
	"github.com/thesilo/reservations/internal/config"
	"github.com/thesilo/reservations/internal/domain"
	reservationRepo "github.com/thesilo/reservations/internal/infra/storage/reservation"
	"github.com/thesilo/reservations/internal/integrations/eventbus"
	"github.com/thesilo/reservations/internal/integrations/resend"
	"github.com/thesilo/reservations/internal/notification"
	reservationsService "github.com/thesilo/reservations/internal/service/reservations"
	createReservationUC "github.com/thesilo/reservations/internal/usecase/create_reservation"
	getTimeSlotsUC "github.com/thesilo/reservations/internal/usecase/get_time_slots"
	"github.com/thesilo/reservations/migrations"
	"github.com/thesilo/reservations/pkg/dbmetrics"
	"github.com/thesilo/reservations/pkg/logger"
	"github.com/thesilo/reservations/pkg/metrics"
)

// routes обработчики API, регистрируются под /api/v1 и /api
type routes struct {
	createReservation *createReservationHandler.Handler
	getReservations   *getReservationsHandler.Handler
	getReservation    *getReservationHandler.Handler
	updateStatus      *updateStatusHandler.Handler
	cancelReservation *cancelReservationHandler.Handler
	getStats          *getStatsHandler.Handler
	getTimeSlots      *getTimeSlotsHandler.Handler
}

func (rt *routes) register(api *mux.Router) {
	api.HandleFunc("/reservations", rt.createReservation.Handle).Methods(http.MethodPost)
	api.HandleFunc("/reservations", rt.getReservations.Handle).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id}", rt.getReservation.Handle).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id}", rt.updateStatus.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/reservations/{id}", rt.cancelReservation.Handle).Methods(http.MethodDelete)
	api.HandleFunc("/time-slots", rt.getTimeSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/stats", rt.getStats.Handle).Methods(http.MethodGet)
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

	log.Info("Starting reservation service for %s...", cfg.Restaurant.Name)

	location, err := cfg.Restaurant.Location()
	if err != nil {
		log.Fatal("Invalid restaurant timezone: %v", err)
	}

	// Метрики: при выключенных метриках компоненты получают nil
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	if err := db.PingContext(startupCtx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(startupCtx, db); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		version, err := migrations.Version(startupCtx, db)
		if err != nil {
			log.Warn("Failed to read schema version: %v", err)
		}
		log.Info("Migrations applied, schema version=%d", version)
	}

	// Репозиторий (с метриками или без)
	var reservationRepository *reservationRepo.Repository
	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		reservationRepository = reservationRepo.NewRepository(wrappedDB)
		log.Info("Database metrics collection started")
	} else {
		reservationRepository = reservationRepo.NewRepository(db)
	}

	// Отправка писем: Resend при наличии ключа, иначе только лог
	var sender notification.Sender
	if cfg.Notifications.Enabled() {
		sender = resend.NewClient(
			cfg.Notifications.ResendBaseURL,
			cfg.Notifications.ResendAPIKey,
			cfg.Notifications.From,
			time.Duration(cfg.Notifications.Timeout)*time.Second,
			log,
		)
		log.Info("Email notifications enabled (from=%s, operator=%q)", cfg.Notifications.From, cfg.Notifications.OperatorEmail)
	} else {
		sender = notification.NewLogSender(log)
		log.Warn("RESEND_API_KEY is not set, emails will only be logged")
	}

	var publisher notification.Publisher
	if cfg.EventBus.Enabled {
		publisher = eventbus.NewPublisher(cfg.EventBus.URL, cfg.EventBus.Queue, log)
		log.Info("Reservation events will be published to queue=%s", cfg.EventBus.Queue)
	}

	dispatcher := notification.NewDispatcher(
		notification.Config{
			Workers:       cfg.Notifications.Workers,
			QueueSize:     cfg.Notifications.QueueSize,
			MaxAttempts:   cfg.Notifications.MaxAttempts,
			RetryBackoff:  time.Duration(cfg.Notifications.RetryBackoffMs) * time.Millisecond,
			SendTimeout:   time.Duration(cfg.Notifications.Timeout) * time.Second,
			OperatorEmail: cfg.Notifications.OperatorEmail,
		},
		notification.NewRenderer(cfg.Restaurant.AppURL, cfg.Restaurant.Name, cfg.Restaurant.Footer),
		sender,
		publisher,
		metricsCollector,
		log,
	)
	dispatcher.Start(context.Background())

	// Расписание слотов: проверка при создании только если включена
	schedule := domain.DefaultServiceSchedule()
	var enforcedSchedule *domain.ServiceSchedule
	if cfg.Restaurant.EnforceTimeSlots {
		enforcedSchedule = &schedule
	}

	// Сервисы и use cases
	reservationSvc := reservationsService.NewService(reservationRepository, dispatcher, metricsCollector, location, log)

	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		createReservationUC.NewValidator(location, enforcedSchedule, &createReservationUC.RealTimeProvider{}),
		dispatcher,
		metricsCollector,
		log,
	)
	getTimeSlotsUseCase := getTimeSlotsUC.NewUseCase(schedule, cfg.Restaurant.EnforceTimeSlots, location, log)

	// Handlers
	api := &routes{
		createReservation: createReservationHandler.NewHandler(createReservationUseCase, log),
		getReservations:   getReservationsHandler.NewHandler(reservationSvc, log),
		getReservation:    getReservationHandler.NewHandler(reservationSvc, log),
		updateStatus:      updateStatusHandler.NewHandler(reservationSvc, log),
		cancelReservation: cancelReservationHandler.NewHandler(reservationSvc, log),
		getStats:          getStatsHandler.NewHandler(reservationSvc, log),
		getTimeSlots:      getTimeSlotsHandler.NewHandler(getTimeSlotsUseCase, log),
	}

	gate := access.NewGate(cfg.Auth.StaffSecret)
	if !gate.Enabled() {
		log.Warn("Staff secret is not configured, staff endpoints are unavailable")
	}

	// Ограничение частоты гостевых запросов (Redis, при недоступности выключено)
	var limiter *middleware.RateLimiter
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		trustedProxies, err := cfg.RateLimit.Proxies()
		if err != nil {
			log.Fatal("Invalid trusted proxies: %v", err)
		}

		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is unavailable at %s, rate limiting disabled: %v", cfg.Redis.Addr, err)
			_ = redisClient.Close()
			redisClient = nil
		} else {
			limiter = middleware.NewRateLimiter(
				middleware.NewRedisCounter(redisClient),
				cfg.RateLimit.Requests,
				time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
				trustedProxies,
				metricsCollector,
				log,
			)
			log.Info("Rate limiting enabled: %d requests per %ds, trusted proxies=%d",
				cfg.RateLimit.Requests, cfg.RateLimit.WindowSeconds, len(trustedProxies))
		}
		cancelPing()
	}

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, metricsCollector.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}
	r.Use(middleware.Access(gate))

	r.HandleFunc("/healthz", healthHandler.NewHandler(reservationRepository, log).Handle).Methods(http.MethodGet)

	for _, prefix := range []string{"/api/v1", "/api"} {
		sub := r.PathPrefix(prefix).Subrouter()
		if limiter != nil {
			sub.Use(limiter.Middleware())
		}
		api.register(sub)
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
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

	// Доставляем уведомления, уже стоящие в очереди
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Error("Notification dispatcher did not drain: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn("Failed to close redis client: %v", err)
		}
	}

	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	log.Info("Server stopped gracefully")
}
