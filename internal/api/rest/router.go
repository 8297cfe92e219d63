// Package rest wires the HTTP surface of the picking API.
package rest

import (
	"net/http"
	"time"

	"github.com/flfwms/picking-api/internal/api/rest/handler"
	authmw "github.com/flfwms/picking-api/internal/api/rest/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// APIPrefix is the mount point of the versioned API.
const APIPrefix = "/flf/api/v1"

// RouterConfig holds the handlers and middleware mounted by NewRouter.
type RouterConfig struct {
	AuthHandler *handler.AuthHandler
	TaskHandler *handler.TaskHandler
	JWT         *authmw.JWTAuthMiddleware
}

// NewRouter builds the chi router. Both login routes are public;
// everything else under the API prefix requires a bearer token.
func NewRouter(cfg *RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/health", handleHealthCheck)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/login_badge", cfg.AuthHandler.LoginBadge)

		r.Group(func(r chi.Router) {
			r.Use(cfg.JWT.Handler)

			r.Get("/device/status", cfg.AuthHandler.DeviceStatus)
			r.Post("/logout", cfg.AuthHandler.Logout)

			r.Post("/task/attach", cfg.TaskHandler.Attach)
			r.Post("/scan/item", cfg.TaskHandler.ScanItem)
			r.Post("/validate", cfg.TaskHandler.Validate)
			r.Post("/cancel_local", cfg.TaskHandler.CancelLocal)
			r.Get("/tasks/available", cfg.TaskHandler.AvailableTasks)
			r.Get("/task/{pickingId}", cfg.TaskHandler.TaskDetails)
		})
	})

	return r
}

// handleHealthCheck returns a basic health status.
func handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","timestamp":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
}
