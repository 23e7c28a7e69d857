package router

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/biyonik/project-management-tool/internal/audit"
	"github.com/biyonik/project-management-tool/internal/handler"
	"github.com/biyonik/project-management-tool/internal/i18n"
	"github.com/biyonik/project-management-tool/internal/middleware"
	"github.com/biyonik/project-management-tool/internal/model"
	"github.com/biyonik/project-management-tool/internal/service"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Log      *slog.Logger
	Messages *i18n.MessageSource

	Auth     *service.AuthService
	Users    *service.UserService
	Projects *service.ProjectService
	Tasks    *service.TaskService
	Trail    audit.Reader

	CORSOrigins      []string
	RequestTimeout   time.Duration
	RateLimitRPM     int
	AuthRateLimitRPM int
}

// New builds the full route tree. All entity routes live under a locale
// segment and require authentication; user administration additionally
// requires the admin role.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.CORS(d.CORSOrigins))
	r.Use(middleware.Timeout(d.RequestTimeout))
	r.Use(middleware.NewRateLimiter(d.RateLimitRPM).Handler)

	authHandler := handler.NewAuthHandler(d.Auth, d.Messages)
	userHandler := handler.NewUserHandler(d.Users, d.Messages)
	projectHandler := handler.NewProjectHandler(d.Projects, d.Messages)
	taskHandler := handler.NewTaskHandler(d.Tasks, d.Messages)
	auditHandler := handler.NewAuditHandler(d.Trail, d.Messages)

	r.Get("/health", health)

	r.Route("/api/v1", func(r chi.Router) {
		// Tighter bucket for credential guessing.
		authLimiter := middleware.NewRateLimiter(d.AuthRateLimitRPM)
		r.With(authLimiter.Handler).Post("/auth/login", authHandler.Login)
		r.With(middleware.RequireAuth(d.Auth)).Get("/auth/me", authHandler.Me)

		r.Route("/{locale}", func(r chi.Router) {
			r.Use(middleware.RequireAuth(d.Auth))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Get("/active", userHandler.Active)
				r.Get("/{id}", userHandler.Get)
				r.Get("/{id}/profile", userHandler.Profile)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRoles("admin"))
					r.Post("/", userHandler.Create)
					r.Patch("/{id}", userHandler.Update)
					r.Delete("/{id}", userHandler.Delete)
					r.Post("/{id}/archive", userHandler.Archive)
					r.Post("/{id}/restore", userHandler.Restore)
					r.Get("/deleted", userHandler.Deleted)
					r.Get("/archived", userHandler.Archived)
					r.Get("/{id}/history", auditHandler.History("user"))
				})
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.List)
				r.Post("/", projectHandler.Create)
				r.Get("/{id}", projectHandler.Get)
				r.Patch("/{id}", projectHandler.Update)
				r.Delete("/{id}", projectHandler.Delete)
				r.Post("/{id}/archive", projectHandler.Archive)
				r.Post("/{id}/restore", projectHandler.Restore)
				r.Get("/deleted", projectHandler.Deleted)
				r.Get("/archived", projectHandler.Archived)
				r.Get("/{id}/tasks", projectHandler.Tasks)
				r.With(middleware.RequireRoles("admin")).Get("/{id}/history", auditHandler.History("project"))
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Get("/{id}", taskHandler.Get)
				r.Patch("/{id}", taskHandler.Update)
				r.Delete("/{id}", taskHandler.Delete)
				r.Post("/{id}/archive", taskHandler.Archive)
				r.Post("/{id}/restore", taskHandler.Restore)
				r.Get("/deleted", taskHandler.Deleted)
				r.Get("/archived", taskHandler.Archived)
				r.With(middleware.RequireRoles("admin")).Get("/{id}/history", auditHandler.History("task"))
			})
		})
	})

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(model.SuccessResponse(map[string]string{"status": "ok"}, ""))
}
