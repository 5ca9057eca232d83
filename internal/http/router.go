package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/painai/api/internal/auth"
	"github.com/painai/api/internal/cache"
	"github.com/painai/api/internal/config"
	httpmiddleware "github.com/painai/api/internal/http/middleware"
	"github.com/painai/api/internal/repo"
	"github.com/painai/api/internal/service"
	"github.com/painai/api/internal/settings"
)

// Handler carries every collaborator the route handlers need.
type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	repo          *repo.Queries
	cache         *cache.Cache
	authService   *service.AuthService
	users         *service.UserService
	timesheets    *service.TimesheetService
	projects      *service.ProjectService
	reports       *service.ReportService
	settings      *settings.Service
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter wires services, middleware and routes into a ready handler.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService) (http.Handler, error) {
	queries := repo.New(pool)
	resultCache := cache.New(cfg.CacheTTL)
	denylist := auth.NewDenylist(redisClient)
	settingsService := settings.NewService(queries)

	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		repo:          queries,
		cache:         resultCache,
		authService:   authService,
		users:         service.NewUserService(queries),
		timesheets:    service.NewTimesheetService(queries, settingsService),
		projects:      service.NewProjectService(queries),
		reports:       service.NewReportService(queries, resultCache),
		settings:      settingsService,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	httpmiddleware.RegisterMetrics()

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))
	r.Use(httpmiddleware.Metrics)

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
		public.Method(http.MethodGet, "/metrics", httpmiddleware.MetricsHandler())

		public.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", h.Register)
			ar.Post("/login", h.Login)
			ar.Post("/refresh-token", h.Refresh)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT(), queries, denylist))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/auth/me", h.Me)
		private.Post("/auth/logout", h.Logout)
		private.Patch("/users/profile", h.UpdateProfile)

		private.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.RequireRole(auth.RoleAdmin))
			admin.Get("/users", h.ListUsers)
			admin.Get("/users/{id}", h.GetUser)
			admin.Patch("/users/{id}/role", h.UpdateUserRole)
			admin.Post("/users/{id}/deactivate", h.DeactivateUser)
			admin.Post("/users/{id}/activate", h.ActivateUser)

			admin.Get("/activities", h.ListActivities)

			admin.Route("/settings", func(sr chi.Router) {
				sr.Get("/", h.ListSettings)
				sr.Get("/{key}", h.GetSetting)
				sr.Put("/{key}", h.PutSetting)
			})

			admin.Post("/holidays", h.CreateHoliday)
			admin.Patch("/holidays/{id}", h.UpdateHoliday)
			admin.Delete("/holidays/{id}", h.DeleteHoliday)
		})

		private.Get("/holidays", h.ListHolidays)

		private.Route("/projects", func(pr chi.Router) {
			pr.Get("/", h.ListProjects)
			pr.Get("/{id}", h.GetProject)
			pr.Get("/{id}/tasks", h.ListProjectTasks)
			pr.Get("/{id}/progress", h.GetProjectProgress)

			pr.Group(func(manager chi.Router) {
				manager.Use(httpmiddleware.RequireRole(auth.RoleManager))
				manager.Post("/", h.CreateProject)
				manager.Patch("/{id}", h.UpdateProject)
				manager.Delete("/{id}", h.DeleteProject)
				manager.Post("/{id}/tasks", h.CreateProjectTask)
				manager.Patch("/{id}/tasks/{taskID}", h.UpdateProjectTask)
				manager.Delete("/{id}/tasks/{taskID}", h.DeleteProjectTask)
				manager.Post("/{id}/progress", h.AddProjectProgress)
				manager.Patch("/{id}/progress/{entryID}", h.UpdateProjectProgress)
				manager.Delete("/{id}/progress/{entryID}", h.DeleteProjectProgress)
			})
		})

		private.Route("/timesheets", func(tr chi.Router) {
			tr.Post("/", h.CreateTimesheet)
			tr.Get("/", h.ListTimesheets)
			tr.Get("/{id}", h.GetTimesheet)
			tr.Patch("/{id}", h.UpdateTimesheet)
			tr.Post("/{id}/submit", h.SubmitTimesheet)
			tr.Delete("/{id}", h.DeleteTimesheet)

			tr.Group(func(manager chi.Router) {
				manager.Use(httpmiddleware.RequireRole(auth.RoleManager))
				manager.Post("/{id}/approve", h.ApproveTimesheet)
				manager.Post("/{id}/reject", h.RejectTimesheet)
			})
		})

		private.Group(func(manager chi.Router) {
			manager.Use(httpmiddleware.RequireRole(auth.RoleManager))
			manager.Get("/reports/workload", h.WorkloadReport)
			manager.Get("/reports/projects/{id}/scurve", h.ProjectSCurve)
		})
	})

	return r, nil
}

// Health responds with a static ok.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready checks Postgres and Redis connectivity.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.pool.Ping(ctx)
	redisErr := h.redis.Ping(ctx).Err()

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependencies unavailable", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// internalError logs the cause and answers with a generic 500. The detail
// only leaks into the response in dev mode.
func (h *Handler) internalError(w http.ResponseWriter, err error, message string) {
	log.Error().Err(err).Msg(message)

	var details any
	if h.cfg != nil && h.cfg.DevMode && err != nil {
		details = err.Error()
	}
	WriteError(w, http.StatusInternalServerError, "INTERNAL", message, details)
}
