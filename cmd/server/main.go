// @title                       Auth Service API
// @version                     1.0
// @description                 Credential registration, password login and bearer-token session gating.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/99minutos/auth-service/internal/api"
	"github.com/99minutos/auth-service/internal/api/handler"
	"github.com/99minutos/auth-service/internal/core/ports"
	"github.com/99minutos/auth-service/internal/core/service"
	"github.com/99minutos/auth-service/internal/infrastructure/config"
	"github.com/99minutos/auth-service/internal/infrastructure/crypto"
	"github.com/99minutos/auth-service/internal/infrastructure/db/memory"
	mongodb "github.com/99minutos/auth-service/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/auth-service/internal/infrastructure/db/redis"
	"github.com/99minutos/auth-service/internal/infrastructure/queue"
	"github.com/99minutos/auth-service/internal/infrastructure/token"
	"github.com/99minutos/auth-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, envconfig.OsLookuper())
	if err != nil {
		// No config means no log level yet; fall back to a plain JSON logger.
		l := logger.New(logger.Options{Service: "auth-service"})
		l.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Output:  os.Stdout,
		Service: "auth-service",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	repo, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	pool := queue.NewHashPool(cfg.HashWorkers, crypto.NewBcryptHasher(cfg.BcryptCost), log)
	// Workers outlive the signal context so requests drained by Shutdown can
	// still hash; Stop runs after the server has stopped.
	pool.Start(context.Background())
	defer pool.Stop()

	codec, err := token.NewJWTCodec([]byte(cfg.JWTSecret))
	if err != nil {
		return err
	}

	store := service.NewCredentialStore(repo, pool, log)
	authn := service.NewAuthenticator(store, pool, log)
	gate := service.NewSessionGate(codec, store, log)
	authSvc := service.NewAuthService(store, authn, codec, cfg.TokenTTL, log)

	e := api.NewRouter(api.Deps{
		AuthService:    authSvc,
		SessionGate:    gate,
		Readiness:      map[string]handler.Pinger{"credential_store": repo},
		RequestTimeout: cfg.RequestTimeout,
		Logger:         log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.StoreBackend).
			Dur("token_ttl", cfg.TokenTTL).
			Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openRepository selects the credential backend named by STORE_BACKEND. The
// returned func releases any client it opened.
func openRepository(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.CredentialRepository, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				log.Error().Err(err).Msg("mongo disconnect")
			}
		}
		repo := mongodb.NewCredentialRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
		return repo, closeFn, nil

	case config.BackendRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
		return redisdb.NewCredentialRepository(client), func() {
			if err := client.Close(); err != nil {
				log.Error().Err(err).Msg("redis close")
			}
		}, nil

	default:
		log.Warn().Msg("using in-memory credential store; data is lost on restart")
		return memory.NewCredentialRepository(), func() {}, nil
	}
}
