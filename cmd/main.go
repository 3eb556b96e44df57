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
	_ "time/tzdata"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/cancel_booking"
	checkAvailabilityHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/check_availability"
	createBookingHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/get_booking"
	getOperatingHoursHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/get_operating_hours"
	getProviderBookingsHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/get_provider_bookings"
	getUserBookingsHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/get_user_bookings"
	processPaymentHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/process_payment"
	rescheduleBookingHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/reschedule_booking"
	updateBookingStatusHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/update_booking_status"
	updateOperatingHoursHandler "github.com/m04kA/SMC-WellnessBooking/internal/api/handlers/update_operating_hours"
	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/config"
	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/availability"
	bookingRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/booking"
	cancellationRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/cancellation"
	paymentRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/payment"
	providerRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/provider"
	reminderRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/reminder"
	"github.com/m04kA/SMC-WellnessBooking/internal/integrations/gateways"
	userServiceClient "github.com/m04kA/SMC-WellnessBooking/internal/integrations/userservice"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-WellnessBooking/internal/service/bookings"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/notifications"
	providersService "github.com/m04kA/SMC-WellnessBooking/internal/service/providers"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/refund"
	cancelBookingUC "github.com/m04kA/SMC-WellnessBooking/internal/usecase/cancel_booking"
	checkAvailabilityUC "github.com/m04kA/SMC-WellnessBooking/internal/usecase/check_availability"
	createBookingUC "github.com/m04kA/SMC-WellnessBooking/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-WellnessBooking/internal/usecase/get_available_slots"
	processPaymentUC "github.com/m04kA/SMC-WellnessBooking/internal/usecase/process_payment"
	rescheduleBookingUC "github.com/m04kA/SMC-WellnessBooking/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-WellnessBooking/internal/worker/reminders"
	"github.com/m04kA/SMC-WellnessBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-WellnessBooking/pkg/logger"
	"github.com/m04kA/SMC-WellnessBooking/pkg/metrics"
	"github.com/m04kA/SMC-WellnessBooking/pkg/txmanager"
)

// rateLimiterTTL время жизни неактивного лимитера клиента
const rateLimiterTTL = 10 * time.Minute

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

	log.Info("Starting SMC-WellnessBooking...")
	log.Info("Configuration loaded from config.toml")

	location, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("Failed to load timezone %s: %v", cfg.Booking.Timezone, err)
	}
	commissionRate, err := cfg.Payments.Commission()
	if err != nil {
		log.Fatal("Invalid commission rate %s: %v", cfg.Payments.CommissionRate, err)
	}

	// Инициализируем метрики (если включены)
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

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционных клиентов
	userClient := userServiceClient.NewClient(
		cfg.UserService.URL,
		time.Duration(cfg.UserService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (UserService=%s timeout=%ds)",
		cfg.UserService.URL, cfg.UserService.Timeout)

	// Репозитории работают через обёртку с метриками, если они включены
	var executor dbmetrics.DBExecutor = db
	var txSource interface{} = db
	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		executor = wrappedDB
		txSource = wrappedDB
		log.Info("Database metrics collection started")
	}

	providerRepository := providerRepo.NewRepository(executor)
	ruleRepository := availabilityRepo.NewRepository(executor)
	bookingRepository := bookingRepo.NewRepository(executor)
	cancellationRepository := cancellationRepo.NewRepository(executor)
	reminderRepository := reminderRepo.NewRepository(executor)
	paymentRepository := paymentRepo.NewRepository(executor)

	txMgr := txmanager.NewTransactionManager(
		txSource,
		txmanager.WithMaxRetries(cfg.Booking.SerializableRetries),
		txmanager.WithRetryObserver(metricsCollector),
	)

	// Правила бронирования и возвратов из конфигурации
	policy := domain.DefaultPolicy(location)
	policy.CancelBuffer = time.Duration(cfg.Booking.CancelBufferHours) * time.Hour
	policy.RescheduleBuffer = time.Duration(cfg.Booking.RescheduleBufferHours) * time.Hour
	policy.MaxReschedules = cfg.Booking.MaxReschedules

	refundPolicy := refund.DefaultPolicy()
	refundPolicy.FullRefundNotice = time.Duration(cfg.Booking.FullRefundHours) * time.Hour
	refundPolicy.PartialRefundNotice = time.Duration(cfg.Booking.PartialRefundHours) * time.Hour
	refundPolicy.PartialPercentage = cfg.Booking.PartialRefundPercent

	// Доменные сервисы
	resolver := availability.NewResolver(ruleRepository, availability.NewLedger(bookingRepository), location, log)
	scheduler := notifications.NewScheduler(reminderRepository, location, log)

	// Платежные шлюзы
	clock := gateways.Clock(time.Now)
	registry := gateways.NewRegistry().
		Register(domain.PaymentPayHere, gateways.NewPayHere(clock)).
		Register(domain.PaymentFrimi, gateways.NewFrimi(clock)).
		Register(domain.PaymentCash, gateways.NewCash())
	if cfg.Payments.StripeSecretKey != "" {
		registry.Register(domain.PaymentCard, gateways.NewCard(cfg.Payments.StripeSecretKey))
		log.Info("Card payments enabled via Stripe")
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		providerRepository,
		scheduler,
		txMgr,
		log,
	)
	providerSvc := providersService.NewService(providerRepository, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		providerRepository,
		bookingRepository,
		resolver,
		scheduler,
		userClient,
		txMgr,
		metricsCollector,
		cfg.Booking.Currency,
		log,
	)

	checkAvailabilityUseCase := checkAvailabilityUC.NewUseCase(
		providerRepository,
		resolver,
		metricsCollector,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		providerRepository,
		ruleRepository,
		resolver,
		cfg.Booking.SlotStepMinutes,
		cfg.Booking.MaxSlotRangeDays,
		log,
	)

	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingRepository,
		providerRepository,
		cancellationRepository,
		scheduler,
		txMgr,
		policy,
		refundPolicy,
		metricsCollector,
		log,
	)

	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookingRepository,
		providerRepository,
		resolver,
		scheduler,
		txMgr,
		policy,
		metricsCollector,
		log,
	)

	processPaymentUseCase := processPaymentUC.NewUseCase(
		bookingRepository,
		paymentRepository,
		registry,
		txMgr,
		commissionRate,
		metricsCollector,
		log,
	)

	// Фоновая отправка напоминаний
	var dispatcher *reminders.Dispatcher
	if cfg.Reminders.Enabled {
		dispatcher = reminders.NewDispatcher(
			reminderRepository,
			reminders.NewLogNotifier(log),
			txMgr,
			cfg.Reminders.BatchSize,
			metricsCollector,
			log,
		)
		if err := dispatcher.Start(context.Background(), cfg.Reminders.Schedule); err != nil {
			log.Fatal("Failed to start reminder dispatcher: %v", err)
		}
		log.Info("Reminder dispatcher started (schedule=%s, batch=%d)", cfg.Reminders.Schedule, cfg.Reminders.BatchSize)
	}

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	checkAvailability := checkAvailabilityHandler.NewHandler(checkAvailabilityUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	processPayment := processPaymentHandler.NewHandler(processPaymentUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getProviderBookings := getProviderBookingsHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getOperatingHours := getOperatingHoursHandler.NewHandler(providerSvc, log)
	updateOperatingHours := updateOperatingHoursHandler.NewHandler(providerSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, rateLimiterTTL, log)
		api.Use(limiter.Middleware)
		log.Info("Rate limiting enabled (%.1f rps, burst %d)", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Проверка доступности слота
	api.HandleFunc("/availability/check", checkAvailability.Handle).Methods(http.MethodGet)

	// Доступные слоты услуги провайдера
	api.HandleFunc("/providers/{providerId}/services/{serviceId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)

	// Перенос бронирования
	protected.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPost)

	// Оплата бронирования
	protected.HandleFunc("/bookings/{bookingId}/payment", processPayment.Handle).Methods(http.MethodPost)

	// Смена статуса провайдером
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)

	// История бронирований пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Управление провайдером (для владельцев) ---
	// Список бронирований провайдера
	protected.HandleFunc("/providers/{providerId}/bookings", getProviderBookings.Handle).Methods(http.MethodGet)

	// Часы работы провайдера
	protected.HandleFunc("/providers/{providerId}/operating-hours", getOperatingHours.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/providers/{providerId}/operating-hours", updateOperatingHours.Handle).Methods(http.MethodPut)

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

	// Дожидаемся текущей рассылки напоминаний
	if dispatcher != nil {
		dispatcher.Stop()
		log.Info("Reminder dispatcher stopped")
	}

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	log.Info("Server stopped gracefully")
}
