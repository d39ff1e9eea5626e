package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dhoini/customer-service/config"
	"github.com/Dhoini/customer-service/internal/api/rest"
	"github.com/Dhoini/customer-service/internal/api/rest/handlers"
	"github.com/Dhoini/customer-service/internal/auth"
	"github.com/Dhoini/customer-service/internal/kafka"
	"github.com/Dhoini/customer-service/internal/kafka/producer"
	"github.com/Dhoini/customer-service/internal/metrics"
	"github.com/Dhoini/customer-service/internal/notification"
	"github.com/Dhoini/customer-service/internal/repository"
	"github.com/Dhoini/customer-service/internal/repository/postgres"
	"github.com/Dhoini/customer-service/internal/service"
	"github.com/Dhoini/customer-service/internal/storage"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.ERROR).Fatal("Failed to load configuration: %v", err)
	}

	log := logger.New(logger.ParseLevel(cfg.Logging.Level))
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Service stopped with error: %v", err)
	}
	log.Info("Server stopped gracefully")
}

type stores struct {
	customers repository.CustomerRepository
	accounts  repository.AccountRepository
	health    map[string]handlers.HealthCheck
	closers   []func() error
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Инициализация Prometheus
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	customerMetrics := metrics.NewCustomerMetrics(promRegistry, log)
	systemMetrics := metrics.NewSystemMetrics(promRegistry, log)

	// Запускаем сбор системных метрик
	systemMetrics.StartRecording(15 * time.Second)
	defer systemMetrics.Stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		for _, closeFn := range st.closers {
			if err := closeFn(); err != nil {
				log.Errorw("Error closing resource", "error", err)
			}
		}
	}()

	var notifier service.Notifier
	if mailProducer := openMailProducer(ctx, cfg, log); mailProducer != nil {
		defer mailProducer.Close()
		notifier = notification.NewMailSender(mailProducer, notification.MailConfig{
			From:  cfg.Mail.From,
			Sales: cfg.Mail.Sales,
		}, customerMetrics, log)
	}

	blobs, err := openBlobStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	timeouts := service.Timeouts{Short: cfg.Timeouts.Short, Long: cfg.Timeouts.Long}
	accountService := service.NewAccountService(st.accounts, log)
	if err := accountService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		return err
	}

	// Установка режима Gin
	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := rest.SetupRouter(log, promRegistry, rest.Services{
		Customers: service.NewCustomerService(st.customers, accountService, notifier, customerMetrics, timeouts, log),
		Values:    service.NewValuesService(st.customers, timeouts, log),
		Media:     service.NewMediaService(st.customers, blobs, log),
		Accounts:  accountService,
		Tokens:    auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Health:    st.health,
	})
	server := rest.NewServer(router, cfg.Server, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		return errors.Join(errors.New("server forced to shutdown"), err)
	}
	return nil
}

// openStores выбирает хранилище по конфигурации и подключает кеш, если он настроен
func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	st := &stores{health: map[string]handlers.HealthCheck{}}

	switch cfg.Database.Driver {
	case config.StoreDriverMemory:
		log.Warn("Using in-memory store, data is lost on restart")
		st.customers = repository.NewInMemoryCustomerRepository(log)
		st.accounts = repository.NewInMemoryAccountRepository()
	default:
		db, err := postgres.NewConnection(ctx, cfg.Database.GetDSN(), cfg.Database.MaxWait, log)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, db.Close)
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return nil, err
		}
		st.customers = postgres.NewCustomerRepository(db, log)
		st.accounts = postgres.NewAccountRepository(db)
		st.health["database"] = db.PingContext
	}

	if cfg.Redis.Addr == "" {
		return st, nil
	}
	cache, err := repository.NewRedisCacheRepository(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL, log)
	if err != nil {
		// Не фатально, работаем без кеша
		log.Warnw("Redis unavailable, continuing without cache", "error", err)
		return st, nil
	}
	st.closers = append(st.closers, cache.Close)
	st.health["redis"] = cache.Ping
	st.customers = repository.NewCachedCustomerRepository(st.customers, cache, log)
	return st, nil
}

// openMailProducer возвращает nil, если Kafka не настроена или недоступна
func openMailProducer(ctx context.Context, cfg *config.Config, log *logger.Logger) producer.MailProducer {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Warn("Kafka brokers not configured, new customer notifications are disabled")
		return nil
	}

	topic := cfg.Mail.Topic
	if err := kafka.EnsureTopics(ctx, cfg.Kafka.Brokers, kafka.DefaultTopics(topic), cfg.Kafka.MaxWait, log); err != nil {
		log.Warnw("Could not ensure Kafka topics", "error", err)
	}

	syncProducer, err := kafka.NewSyncProducer(kafka.NewConfig(cfg.Kafka.Brokers), log)
	if err != nil {
		log.Warnw("Kafka producer unavailable, new customer notifications are disabled", "error", err)
		return nil
	}
	return producer.NewMailProducer(syncProducer, topic, log)
}

func openBlobStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage.BlobStore, error) {
	if !cfg.Storage.Enabled {
		log.Info("S3 storage disabled, media kept in memory")
		return storage.NewMemoryStore(), nil
	}
	return storage.NewS3Store(ctx, storage.S3Config{
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
	}, log)
}
