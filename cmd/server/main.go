// @title           photolog API
// @version         1.0
// @description     Image gallery: cookie sessions, uploads normalized to bounded JPEGs, public serving.
// @BasePath        /
// @schemes         http https
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"photolog/internal/api"
	"photolog/internal/auth"
	"photolog/internal/config"
	"photolog/internal/database"
	"photolog/internal/events"
	"photolog/internal/logger"
	"photolog/internal/photos"
	"photolog/internal/storage"
	"photolog/internal/websocket"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	_ "photolog/docs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logr, err := logger.New(cfg.Log.Level, cfg.Env == config.EnvDevelopment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logr.Sync()

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	codec, err := newCodec(cfg, logr)
	if err != nil {
		return err
	}

	if err := config.Provision(cfg); err != nil {
		return err
	}

	if err := database.Migrate(ctx, cfg.DB.Source); err != nil {
		return err
	}

	dbpool, err := pgxpool.New(ctx, cfg.DB.Source)
	if err != nil {
		return err
	}
	store := database.NewStore(dbpool)
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		return err
	}
	logr.Info("connected to database")

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	logr.Info("storage ready", zap.String("backend", cfg.Storage.Backend))

	wsHub := websocket.NewHub(logr)
	go wsHub.Run(ctx)

	sinks := events.Fanout{events.NewJournal(store), wsHub}
	if len(cfg.Kafka.Brokers) > 0 {
		kafka := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafka.Close()
		sinks = append(sinks, kafka)
		logr.Info("publishing events to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	normalizer, err := photos.NewNormalizer(backend, photos.Options{
		MaxDimension: cfg.Upload.MaxDimension,
		MaxPixels:    cfg.Upload.MaxPixels,
		JPEGQuality:  cfg.Upload.JPEGQuality,
		Workers:      cfg.Upload.Workers,
	}, logr)
	if err != nil {
		return err
	}

	svc := photos.NewService(photos.ServiceParams{
		Store:      store,
		Storage:    backend,
		Validator:  photos.NewValidator(cfg.Upload.MaxBytes, cfg.Upload.AllowedTypes),
		Normalizer: normalizer,
		Events:     sinks,
		PerPage:    cfg.Images.PerPage,
		Logger:     logr,
	})

	server := api.NewServer(cfg, api.Deps{
		Users:   store,
		Codec:   codec,
		Photos:  svc,
		DB:      store,
		Journal: store,
		Hub:     wsHub,
		Logger:  logr,
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.NewRouter(server),
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("starting server", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}

// newCodec signs with the configured secret. Without one a random secret is
// generated, so sessions do not survive a restart.
func newCodec(cfg *config.Config, logr *zap.Logger) (*auth.Codec, error) {
	if cfg.JWT.Secret == "" {
		secret, err := auth.GenerateSecret()
		if err != nil {
			return nil, err
		}
		logr.Warn("jwt.secret not set, using a random per-process secret")
		return auth.NewCodec(secret), nil
	}

	if cfg.WeakSecret() {
		logr.Warn("jwt.secret is the public default, set JWT_SECRET before deploying")
	}

	return auth.NewCodec([]byte(cfg.JWT.Secret)), nil
}
