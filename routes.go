package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/todoapi-go/apperror"
	"github.com/user/todoapi-go/auth"
	"github.com/user/todoapi-go/config"
	"github.com/user/todoapi-go/db"
	_ "github.com/user/todoapi-go/docs" // Generated Swagger docs
	"github.com/user/todoapi-go/logger"
	"github.com/user/todoapi-go/metrics"
	"github.com/user/todoapi-go/tasks"
	"github.com/user/todoapi-go/users"
)

// application bundles what the router needs once startup has wired everything.
type application struct {
	cfg           *config.AppConfig
	pool          db.Pinger
	metrics       *metrics.Metrics
	authenticator *auth.Authenticator
	authHandlers  *auth.Handlers
	userHandlers  *users.UserHandlers
	taskHandlers  *tasks.TaskHandlers
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// routes builds the chi router. Chi requires all middleware before any route.
// The authenticator runs last so that every rejection is still logged, counted and CORS-tagged.
func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger)
	r.Use(app.metrics.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.cfg.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(app.authenticator.Handler)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/health", app.handleHealth())
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	r.Post("/auth", app.authHandlers.HandleLogin())
	r.Route("/users", app.userHandlers.RegisterRoutes)
	r.Route("/tasks", app.taskHandlers.RegisterRoutes)

	return r
}

// handleHealth godoc
// @Summary Health check
// @Description Reports whether the API can reach its database.
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (app *application) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context(), app.pool); err != nil {
			logrus.WithError(err).Warn("health check failed")
			apperror.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
			return
		}
		apperror.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
