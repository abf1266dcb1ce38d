package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/FACorreiaa/go-todo-api/docs"
	"github.com/FACorreiaa/go-todo-api/internal/api"
	"github.com/FACorreiaa/go-todo-api/internal/api/auth"
	"github.com/FACorreiaa/go-todo-api/internal/api/task"
	"github.com/FACorreiaa/go-todo-api/internal/api/user"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            *auth.AuthHandler
	UserHandler            user.Handler
	TaskHandler            task.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
	// PublicRateLimiter guards the unauthenticated /users routes. Optional.
	PublicRateLimiter func(http.Handler) http.Handler
	AllowedOrigins    []string
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, request ID, recoverer) is applied in main
// before this router is mounted.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"message": "Hello!"})
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(r chi.Router) {
		// --- Public user routes ---
		r.Group(func(r chi.Router) {
			if cfg.PublicRateLimiter != nil {
				r.Use(cfg.PublicRateLimiter)
			}
			r.Post("/users", cfg.UserHandler.CreateUser)
			r.Post("/users/token", cfg.AuthHandler.Login)
			r.Get("/users/{id}", cfg.UserHandler.GetUser)
			r.Delete("/users/{id}", cfg.UserHandler.DeleteUser)
			r.Patch("/users/restore/{id}", cfg.UserHandler.RestoreUser)
		})

		// --- Protected task routes ---
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Get("/tasks", cfg.TaskHandler.ListTasks)
			r.Post("/tasks", cfg.TaskHandler.CreateTask)
			r.Get("/tasks/{id}", cfg.TaskHandler.GetTask)
			r.Patch("/tasks/{id}", cfg.TaskHandler.UpdateTask)
			r.Delete("/tasks/{id}", cfg.TaskHandler.DeleteTask)
		})
	})

	return r
}
