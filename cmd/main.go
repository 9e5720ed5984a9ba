package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/scooter-rental/internal/auth"
	"github.com/ukydev/scooter-rental/internal/booking"
	"github.com/ukydev/scooter-rental/internal/catalog"
	"github.com/ukydev/scooter-rental/internal/config"
	"github.com/ukydev/scooter-rental/internal/db"
	"github.com/ukydev/scooter-rental/internal/db/memdb"
	"github.com/ukydev/scooter-rental/internal/handlers"
	"github.com/ukydev/scooter-rental/internal/notify"
	"github.com/ukydev/scooter-rental/internal/payment"
	"go.mongodb.org/mongo-driver/mongo"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	logger := newLogger(cfg)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, database, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sink, closeSink, err := buildNotifier(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()
	async := notify.NewAsync(sink, cfg.Notify.Timeout, logger)

	authSvc := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry, store.Users, logger)
	if created, err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	} else if created {
		logger.WithField("email", cfg.AdminEmail).Info("initial admin account created")
	}

	bookings := booking.NewService(store, newLocker(cfg, database), async, logger)
	provider := payment.NewCashfreeClient(payment.CashfreeConfig{
		AppID:      cfg.Cashfree.AppID,
		SecretKey:  cfg.Cashfree.SecretKey,
		Env:        cfg.Cashfree.Env,
		APIVersion: cfg.Cashfree.APIVersion,
		Timeout:    cfg.Cashfree.Timeout,
	})

	services := handlers.Services{
		Auth:      authSvc,
		Bookings:  bookings,
		Payments:  payment.NewService(store, bookings, provider, cfg.Cashfree.WebhookSecret, logger),
		Bikes:     catalog.NewBikeService(store, logger),
		Customers: catalog.NewCustomerService(store, logger),
		Areas:     catalog.NewAreaService(store, logger),
		Rentals:   catalog.NewRentalService(store, async, logger),
	}

	routerCfg := handlers.RouterConfig{
		CORSOrigins:       cfg.CORSOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		TrustProxy:        cfg.TrustProxy,
	}
	if database != nil {
		routerCfg.Health = func(ctx context.Context) error {
			return database.Client().Ping(ctx, nil)
		}
	}

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		booking.NewSweeper(bookings, cfg.Booking.SweepInterval, logger).Run(ctx)
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(services, routerCfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(log.Fields{"port": cfg.Port, "store": cfg.Store, "env": cfg.AppEnv}).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			stop()
			<-sweepDone
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("graceful shutdown failed")
	}
	<-sweepDone
	if err := async.Wait(shutdownCtx); err != nil {
		logger.WithError(err).Warn("pending notifications dropped")
	}
	return nil
}

func newLogger(cfg *config.Config) *log.Logger {
	logger := log.New()
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// openStore returns the Mongo database as well when that backend is selected.
func openStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (*db.Store, *mongo.Database, func(), error) {
	if cfg.Store == "memory" {
		logger.Warn("using in-memory store, data is lost on restart")
		return memdb.New(), nil, func() {}, nil
	}

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.WithError(err).Warn("mongo disconnect failed")
		}
	}

	database := client.Database(cfg.MongoDB)
	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.EnsureIndexes(indexCtx, database); err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	logger.WithField("database", cfg.MongoDB).Info("connected to MongoDB")
	return db.NewMongoStore(database), database, closeFn, nil
}

func newLocker(cfg *config.Config, database *mongo.Database) booking.Locker {
	if cfg.Booking.Lock == "mongo" && database != nil {
		return &db.MongoBikeLocker{
			Collection: database.Collection(db.BikeLocksCollection),
			TTL:        cfg.Booking.LockTTL,
			Wait:       cfg.Booking.LockWait,
		}
	}
	return booking.NewLocalLocker(cfg.Booking.LockWait)
}

// buildNotifier selects the event sink. The returned func releases its connections.
func buildNotifier(cfg *config.Config, logger *log.Logger) (notify.Notifier, func(), error) {
	logSink := &notify.LogNotifier{Logger: logger}
	noop := func() {}

	switch cfg.Notify.Driver {
	case "", "log":
		return logSink, noop, nil
	case "none":
		return notify.Nop{}, noop, nil
	case "mqtt":
		n, err := notify.NewMQTTNotifier(notify.MQTTConfig{
			Broker:      cfg.Notify.MQTTBroker,
			ClientID:    cfg.Notify.MQTTClientID,
			TopicPrefix: cfg.Notify.MQTTTopicPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return notify.Multi{logSink, n}, n.Close, nil
	case "kafka":
		n, err := notify.NewKafkaNotifier(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := n.Close(); err != nil {
				logger.WithError(err).Warn("kafka writer close failed")
			}
		}
		return notify.Multi{logSink, n}, closeFn, nil
	case "brevo":
		bc := notify.BrevoConfig{
			APIKey:      cfg.Notify.BrevoAPIKey,
			SenderEmail: cfg.Notify.BrevoSender,
			SenderName:  cfg.Notify.BrevoSenderName,
			AdminEmail:  cfg.Notify.AdminEmail,
		}
		if !bc.Configured() {
			logger.Warn("brevo is not fully configured, falling back to log notifications")
			return logSink, noop, nil
		}
		return notify.Multi{logSink, notify.NewBrevoNotifier(bc)}, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown notify driver %q", cfg.Notify.Driver)
	}
}
