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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ayush/content-coach/internal/auth"
	"github.com/ayush/content-coach/internal/chat"
	"github.com/ayush/content-coach/internal/config"
	"github.com/ayush/content-coach/internal/logger"
	"github.com/ayush/content-coach/internal/server"
	"github.com/ayush/content-coach/internal/store"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "content-coach",
	})

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := store.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns, cfg.Postgres.MinConns)
	if err != nil {
		return err
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		return err
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer rdb.Close()
	sessions := auth.NewSessionStore(rdb, cfg.Session.Secret, cfg.Session.TTL)

	chatOpts := chat.Options{SecureCookie: cfg.Session.CookieSecure}

	// ── MongoDB (optional) ───────────────────────────────────
	if cfg.Mongo.URI != "" {
		mongoClient, err := store.ConnectMongo(ctx, cfg.Mongo.URI)
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoClient.Disconnect(dctx)
		}()
		mongoStore := store.NewMongoStore(mongoClient.Database(cfg.Mongo.Database))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			return err
		}
		chatOpts.History = mongoStore
	} else {
		log.Info().Msg("MONGO_URI not set, chat history disabled")
	}

	// ── MinIO (optional) ─────────────────────────────────────
	if cfg.Minio.Endpoint != "" {
		minioStore, err := store.NewMinioStore(ctx, cfg.Minio.Endpoint, cfg.Minio.AccessKey,
			cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL)
		if err != nil {
			return err
		}
		chatOpts.Archive = minioStore
	} else {
		log.Info().Msg("MINIO_ENDPOINT not set, transcript archiving disabled")
	}

	// ── Completion client ────────────────────────────────────
	completer := chat.NewClient(chat.ClientConfig{
		APIKey:  cfg.Completion.APIKey,
		BaseURL: cfg.Completion.BaseURL,
		Model:   cfg.Completion.Model,
		Timeout: cfg.Completion.Timeout,
	})

	// ── Handlers ─────────────────────────────────────────────
	creds := auth.NewCredentials(pgStore)
	router := server.NewRouter(server.Deps{
		Logger:       log,
		Auth:         auth.NewHandler(creds, sessions, cfg.Session.CookieSecure),
		Chat:         chat.NewHandler(creds, completer, sessions, chatOpts),
		Sessions:     sessions,
		Limiter:      limiter(rdb),
		RateLimit:    cfg.RateLimit,
		CORSOrigins:  cfg.CORSOrigins(),
		SecureCookie: cfg.Session.CookieSecure,
	})

	// ── Server ───────────────────────────────────────────────
	// WriteTimeout leaves room for the completion call.
	var writeTimeout time.Duration
	if cfg.Completion.Timeout > 0 {
		writeTimeout = cfg.Completion.Timeout + 30*time.Second
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("model", completer.Model()).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// limiter keeps a typed nil client from reaching the router as a non-nil
// interface.
func limiter(rdb *redis.Client) redis.Scripter {
	if rdb == nil {
		return nil
	}
	return rdb
}
