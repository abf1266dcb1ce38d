package container

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-todo-api/app/db"
	appMiddleware "github.com/FACorreiaa/go-todo-api/app/middleware"
	"github.com/FACorreiaa/go-todo-api/config"
	"github.com/FACorreiaa/go-todo-api/internal/api/auth"
	"github.com/FACorreiaa/go-todo-api/internal/api/task"
	"github.com/FACorreiaa/go-todo-api/internal/api/user"
	"github.com/FACorreiaa/go-todo-api/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *slog.Logger
	Pool          *pgxpool.Pool
	ConnectionURL string

	AuthHandler       *auth.AuthHandler
	UserHandler       *user.HandlerImpl
	TaskHandler       *task.HandlerImpl
	Authenticate      func(http.Handler) http.Handler
	PublicRateLimiter func(http.Handler) http.Handler
}

// NewContainer opens the connection pool and wires the Postgres repositories.
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, cfg.Repositories.Postgres, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	c, err := NewContainerWithRepos(cfg, logger,
		user.NewPostgresUserRepo(pool, logger),
		task.NewPostgresTaskRepo(pool, logger))
	if err != nil {
		pool.Close()
		return nil, err
	}
	c.Pool = pool
	c.ConnectionURL = dbConfig.ConnectionURL
	return c, nil
}

// NewContainerWithRepos wires services and handlers on top of the given
// repositories.
func NewContainerWithRepos(cfg *config.Config, logger *slog.Logger, userRepo user.UserRepo, taskRepo task.TaskRepo) (*Container, error) {
	tokens, err := auth.NewJWTTokenService(cfg.JWT)
	if err != nil {
		return nil, fmt.Errorf("failed to build token service: %w", err)
	}
	hasher := auth.NewBcryptHasher(cfg.Security.BcryptCost)
	lockout := auth.NewLoginLockout(cfg.Security.LockoutMaxAttempts, cfg.Security.LockoutWindow)

	limiter, err := appMiddleware.IPRateLimiter(cfg.Security.LoginRateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate limiter: %w", err)
	}

	authService := auth.NewAuthService(userRepo, hasher, tokens, lockout, logger)
	userService := user.NewUserService(userRepo, hasher, logger)
	taskService := task.NewTaskService(taskRepo, userRepo, logger)

	return &Container{
		Config:            cfg,
		Logger:            logger,
		AuthHandler:       auth.NewAuthHandler(authService, logger),
		UserHandler:       user.NewHandlerImpl(userService, logger),
		TaskHandler:       task.NewHandlerImpl(taskService, logger),
		Authenticate:      auth.Authenticate(tokens, userRepo, logger),
		PublicRateLimiter: limiter,
	}, nil
}

// Router builds the application routes from the wired handlers.
func (c *Container) Router() chi.Router {
	return router.SetupRouter(&router.Config{
		AuthHandler:            c.AuthHandler,
		UserHandler:            c.UserHandler,
		TaskHandler:            c.TaskHandler,
		AuthenticateMiddleware: c.Authenticate,
		PublicRateLimiter:      c.PublicRateLimiter,
		AllowedOrigins:         c.Config.CORS.AllowedOrigins,
	})
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations
func (c *Container) RunMigrations() error {
	return database.RunMigrations(c.ConnectionURL, c.Logger)
}
