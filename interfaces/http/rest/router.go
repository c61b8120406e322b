package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"blogstore/infrastructure/di"
	"blogstore/interfaces/http/rest/handlers"
	"blogstore/interfaces/http/rest/middleware"
	pkgerrors "blogstore/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{
		container: container,
		logger:    container.Logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	cfg := rt.container.Config
	errorHandler := pkgerrors.NewErrorHandler(rt.logger, cfg.IsDevelopment())

	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		userHandler := handlers.NewUserHandler(rt.container.UserService, errorHandler, rt.logger)
		postHandler := handlers.NewPostHandler(rt.container.PostService, errorHandler, rt.logger)
		migrationHandler := handlers.NewMigrationHandler(rt.container.MigrationRunner, rt.logger)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.CreateUser)
			r.Get("/", userHandler.GetUserByEmail)
			r.Get("/{userID}", userHandler.GetUser)
			r.Put("/{userID}", userHandler.UpdateUser)
			r.Get("/{userID}/stats", userHandler.GetUserStats)

			r.Route("/{userID}/posts", func(r chi.Router) {
				r.Post("/", postHandler.CreatePost)
				r.Get("/", postHandler.ListUserPosts)
				r.Put("/{postID}", postHandler.UpdatePost)
				r.Delete("/{postID}", postHandler.DeletePost)
				r.Put("/{postID}/publish", postHandler.PublishPost)
			})
		})

		r.Get("/posts/{postID}", postHandler.GetPost)

		r.Route("/migrations", func(r chi.Router) {
			r.Get("/", migrationHandler.ListMigrations)
			r.Post("/run", migrationHandler.RunMigrations)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports ready once the container is wired; migrations
// run before the server starts listening, so a serving process has a
// migrated schema.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
