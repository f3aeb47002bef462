// Command server runs the book-exchange HTTP API.
//
// @title                       Book Exchange API
// @version                     1.0
// @description                 Marketplace for exchanging and giving away books.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
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
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookxchange/marketplace/internal/api"
	"github.com/bookxchange/marketplace/internal/api/handler"
	"github.com/bookxchange/marketplace/internal/core/ports"
	"github.com/bookxchange/marketplace/internal/core/security"
	"github.com/bookxchange/marketplace/internal/core/service"
	"github.com/bookxchange/marketplace/internal/infrastructure/db/memory"
	mongodb "github.com/bookxchange/marketplace/internal/infrastructure/db/mongo"
	redisdb "github.com/bookxchange/marketplace/internal/infrastructure/db/redis"
	"github.com/bookxchange/marketplace/internal/infrastructure/queue"
	"github.com/bookxchange/marketplace/internal/infrastructure/storage"
	"github.com/bookxchange/marketplace/internal/pkg/config"
	"github.com/bookxchange/marketplace/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "book-exchange",
	})

	repos, err := initRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repos.close()

	checks := repos.checks
	var cache ports.CatalogCache
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		cache = redisdb.NewCatalogCache(rdb, cfg.Redis.CacheTTL)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.CacheTTL).Msg("catalog cache enabled")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, catalog cache disabled")
	}

	images, err := initStorage(ctx, cfg, log)
	if err != nil {
		return err
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	cleaner := queue.NewDispatcher(cfg.Cleanup.Workers, images, logger.Component(log, "image-cleanup"))
	cleaner.Start(workerCtx)

	// --- Security ---
	codec, err := security.NewTokenCodec(cfg.JWT.Secret, cfg.JWT.TTL, time.Now)
	if err != nil {
		stopWorkers()
		return err
	}
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	verifier, err := security.NewCredentialVerifier(repos.accounts, hasher)
	if err != nil {
		stopWorkers()
		return err
	}
	identity := security.NewIdentityResolver(repos.accounts)

	e := api.NewRouter(api.Deps{
		Log:            log,
		Tokens:         codec,
		Accounts:       identity,
		Now:            time.Now,
		Auth:           service.NewAuthService(repos.accounts, hasher, verifier, identity, codec, log),
		Books:          service.NewBookService(repos.books, repos.comments, repos.accounts, images, cleaner, cache, log),
		Comments:       service.NewCommentService(repos.comments, repos.books, repos.accounts, log),
		Users:          service.NewUserService(repos.accounts, cache, log),
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		ReadyChecks:    checks,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("db_driver", cfg.Database.Driver).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		stopWorkers()
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	stopWorkers()
	cleaner.Wait()
	log.Info().Msg("server stopped")
	return nil
}

type repositories struct {
	accounts ports.AccountRepository
	books    ports.BookRepository
	comments ports.CommentRepository
	checks   map[string]handler.PingFunc
	close    func()
}

func initRepositories(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repositories, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			accounts: memory.NewAccountRepository(store),
			books:    memory.NewBookRepository(store),
			comments: memory.NewCommentRepository(store),
			checks:   map[string]handler.PingFunc{},
			close:    func() {},
		}, nil
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "book-exchange",
	})
	if err != nil {
		return nil, err
	}

	accounts := mongodb.NewAccountRepository(db)
	books := mongodb.NewBookRepository(db)
	comments := mongodb.NewCommentRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"accounts": accounts.EnsureIndexes,
		"books":    books.EnsureIndexes,
		"comments": comments.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")

	return &repositories{
		accounts: accounts,
		books:    books,
		comments: comments,
		checks: map[string]handler.PingFunc{
			"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
		},
		close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(ctx)
		},
	}, nil
}

func initStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.ImageStorage, error) {
	if !cfg.StorageEnabled() {
		log.Warn().Msg("STORAGE_ENDPOINT not set, images are kept in memory")
		return memory.NewImageStore("/images"), nil
	}

	s3, err := storage.NewS3Storage(ctx, storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		PublicURL: cfg.Storage.PublicURL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
	})
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info().Str("bucket", cfg.Storage.Bucket).Msg("object storage ready")
	return s3, nil
}
