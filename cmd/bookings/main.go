package main

import (
	"context"

	"staybook/internal/bookings/handler"
	"staybook/internal/bookings/repository"
	"staybook/internal/bookings/service"
	"staybook/internal/bookings/validator"
	"staybook/pkg/app"
	"staybook/pkg/config"
	"staybook/pkg/kafka"
	kafka_config "staybook/pkg/kafka/config"
	kafka_middleware "staybook/pkg/kafka/middleware"
	"staybook/pkg/metrics"
	"staybook/pkg/middleware"
	"staybook/pkg/notify"
	"staybook/pkg/scheduler"
)

const ServiceName = "bookings"

type services struct {
	bookings  service.BookingService
	lifecycle service.LifecycleService
	discounts service.DiscountService
	locks     *service.TempLockManager
	sweeper   *service.ExpirySweeper
}

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.LockBackend == config.LockBackendRedis {
		cfg.SetRedis()
	}

	cfg.Log.Info("Starting Bookings service")
	m := metrics.New("staybook")
	serverApp := app.NewApplication(cfg, m)

	var kafkaCfg *kafka_config.Config
	if cfg.KafkaEnabled {
		var err error
		kafkaCfg, err = kafka_config.Load()
		if err != nil {
			cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
		}
	}

	notifier := initNotifier(cfg, kafkaCfg, m, serverApp)
	svc := initServices(cfg, m, notifier)

	jobs := initScheduler(cfg, m, svc)
	if err := jobs.Start(); err != nil {
		cfg.Log.Fatal("Failed to start scheduler", "error", err)
	}
	serverApp.OnStop(jobs.Stop)

	if kafkaCfg != nil {
		initPaymentConsumer(cfg, kafkaCfg, m, svc, serverApp)
	}

	auth := middleware.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, cfg.Log)
	serverApp.SetApp(
		handler.NewBookingHandler(svc.bookings, svc.lifecycle, auth, cfg.FrontendURL, cfg.Log),
		handler.NewTempLockHandler(svc.locks, auth, cfg.Log),
		handler.NewDiscountHandler(svc.discounts, auth, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, m *metrics.Metrics, notifier notify.Notifier) services {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)

	var lockRepo repository.TempLockRepository
	if cfg.LockBackend == config.LockBackendRedis {
		lockRepo = repository.NewRedisTempLockRepository(cfg)
	} else {
		lockRepo = repository.NewMongoTempLockRepository(cfg)
	}
	locks := service.NewTempLockManager(lockRepo, bookingValidator, cfg.LockTTL, m, cfg.Log)

	discounts := service.NewDiscountService(
		repository.NewMongoDiscountRepository(cfg),
		repository.NewMongoDiscountUsageRepository(cfg),
		bookingValidator,
		m,
		cfg.Log,
	)

	deps := service.Dependencies{
		Bookings:   bookingRepo,
		Rooms:      repository.NewMongoRoomRepository(cfg),
		Guards:     repository.NewMongoRoomGuardRepository(cfg),
		Calculator: service.NewAvailabilityCalculator(bookingRepo, m, cfg.Log),
		Locks:      locks,
		Discounts:  discounts,
		Notifier:   notifier,
		Validator:  bookingValidator,
		Metrics:    m,
		Config:     cfg,
	}

	cfg.Log.Info("Booking services initialized", "database", cfg.MongoDatabaseName, "lock_backend", cfg.LockBackend)
	return services{
		bookings:  service.NewBookingService(deps),
		lifecycle: service.NewLifecycleService(deps),
		discounts: discounts,
		locks:     locks,
		sweeper:   service.NewExpirySweeper(bookingRepo, locks, cfg.PendingGracePeriod, cfg.SweepBatchSize, m, cfg.Log),
	}
}

func initNotifier(cfg *config.Config, kafkaCfg *kafka_config.Config, m *metrics.Metrics, serverApp *app.Application) notify.Notifier {
	if kafkaCfg == nil {
		cfg.Log.Info("Kafka disabled, notifications are logged only")
		return notify.NewLogNotifier(cfg.Log)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.NotificationsTopic, "", cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create notifications producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(m))
	}
	serverApp.OnStop(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close notifications producer", "error", err)
		}
	})
	return notify.NewKafkaNotifier(producer, cfg.NotificationsSource, cfg.Log)
}

func initScheduler(cfg *config.Config, m *metrics.Metrics, svc services) *scheduler.Scheduler {
	jobs := scheduler.New(cfg.Log, m)

	register := func(job scheduler.Job) {
		if err := jobs.Register(job); err != nil {
			cfg.Log.Fatal("Failed to register job", "job", job.Name, "error", err)
		}
	}

	register(scheduler.Job{
		Name:       "expiry-sweeper",
		Interval:   cfg.SweepInterval,
		Timeout:    cfg.JobTimeout,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			_, err := svc.sweeper.Sweep(ctx)
			return err
		},
	})
	register(scheduler.Job{
		Name:     "discount-purge",
		Interval: cfg.DiscountPurgeInterval,
		Timeout:  cfg.JobTimeout,
		Run: func(ctx context.Context) error {
			_, err := svc.discounts.PurgeExpired(ctx)
			return err
		},
	})

	return jobs
}

func initPaymentConsumer(cfg *config.Config, kafkaCfg *kafka_config.Config, m *metrics.Metrics, svc services, serverApp *app.Application) {
	payments := handler.NewPaymentEventHandler(svc.lifecycle, cfg.Log)
	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.PaymentsTopic, cfg.PaymentsGroupID, cfg.PaymentsDLQTopic, payments.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create payments consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware(m))
	}

	serverApp.Go("payments-consumer", consumer.Start)
	serverApp.OnStop(func() {
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close payments consumer", "error", err)
		}
	})
}
