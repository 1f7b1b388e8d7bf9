package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"worklog/internal/handler"
	"worklog/pkg/metrics"
	"worklog/pkg/otel"
	"worklog/pkg/rbac"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Auth    *handler.AuthHandler
	Project *handler.ProjectHandler
	Phase   *handler.PhaseHandler
	WorkLog *handler.WorkLogHandler
	Admin   *handler.AdminHandler
}

type Options struct {
	JWTSecret      string
	QueryTimeout   time.Duration
	AllowedOrigins []string
	AuthLimiter    *RateLimiter
	DB             Pinger
	Logger         *zap.Logger
}

type Router struct {
	Engine *gin.Engine
	opts   Options
}

func NewRouter(h Handlers, opts Options) *Router {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(otel.GinMiddleware())
	r.Use(RequestLogger(opts.Logger))

	// Health endpoints (放在最前面)
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Worklog API is running!"})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		if opts.DB == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := opts.DB.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.Use(QueryTimeout(opts.QueryTimeout))

	// Public
	authGroup := api.Group("/auth")
	{
		public := authGroup.Group("")
		if opts.AuthLimiter != nil {
			public.Use(opts.AuthLimiter.Middleware())
		}
		public.POST("/register", h.Auth.Register)
		public.POST("/login", h.Auth.Login)

		authGroup.GET("/me", AuthMiddleware(opts.JWTSecret), h.Auth.Me)
		authGroup.GET("/verify", AuthMiddleware(opts.JWTSecret), h.Auth.Verify)
	}

	// Protected
	protected := api.Group("")
	protected.Use(AuthMiddleware(opts.JWTSecret))

	projects := protected.Group("/projects")
	{
		write := RequirePermission(rbac.PermissionWriteProject)
		projects.GET("", h.Project.List)
		projects.GET("/:id", h.Project.Get)
		projects.GET("/:id/activity", h.Project.Activity)
		projects.POST("", write, h.Project.Create)
		projects.PUT("/:id", write, h.Project.Update)
		projects.DELETE("/:id", write, h.Project.Delete)
	}

	phases := protected.Group("/phases")
	{
		write := RequirePermission(rbac.PermissionWritePhase)
		phases.GET("/project/:project_id", h.Phase.ListByProject)
		phases.GET("/:id", h.Phase.Get)
		phases.POST("", write, h.Phase.Create)
		phases.PUT("/:id", write, h.Phase.Update)
		phases.DELETE("/:id", write, h.Phase.Delete)
	}

	worklogs := protected.Group("/worklogs")
	{
		write := RequirePermission(rbac.PermissionWriteWorkLog)
		worklogs.GET("", h.WorkLog.List)
		worklogs.GET("/my-logs", h.WorkLog.MyLogs)
		worklogs.GET("/stats", h.WorkLog.Stats)
		worklogs.GET("/user/:userId", h.WorkLog.ByUser)
		worklogs.GET("/:id", h.WorkLog.Get)
		worklogs.POST("", write, h.WorkLog.Create)
		worklogs.PUT("/:id", write, h.WorkLog.Update)
		worklogs.DELETE("/:id", write, h.WorkLog.Delete)
	}

	if h.Admin != nil {
		admin := protected.Group("/admin")
		admin.Use(RequirePermission(rbac.PermissionReplayOutbox))
		{
			admin.POST("/outbox/replay", h.Admin.ReplayOutboxEvent)
			admin.POST("/outbox/replay-failed", h.Admin.ReplayFailedEvents)
		}
	}

	return &Router{Engine: r, opts: opts}
}

// Handler wraps the engine with CORS. An empty origin list allows any origin.
func (r *Router) Handler() http.Handler {
	origins := r.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "x-auth-token", "X-Trace-ID"},
		ExposedHeaders: []string{"X-Trace-ID"},
		MaxAge:         300,
	})(r.Engine)
}
