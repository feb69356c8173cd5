package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/taskhub-dev/taskhub/internal/auth"
	"github.com/taskhub-dev/taskhub/internal/handlers"
	"github.com/taskhub-dev/taskhub/internal/middleware"
	"github.com/taskhub-dev/taskhub/internal/models"
	"github.com/taskhub-dev/taskhub/internal/realtime"
	"github.com/taskhub-dev/taskhub/internal/scheduler"
	"github.com/taskhub-dev/taskhub/internal/services"
	"github.com/taskhub-dev/taskhub/internal/storage"
	"gorm.io/gorm"
)

type Options struct {
	DB             *gorm.DB
	Services       *services.Services
	Tokens         *auth.TokenIssuer
	Hub            *realtime.Hub
	Scheduler      *scheduler.Scheduler
	Logger         *slog.Logger
	AllowedOrigins []string
	UploadDir      string
}

func NewRouter(opts Options) *gin.Engine {
	r := gin.New()

	metrics := middleware.NewMetrics()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(opts.Logger))
	r.Use(metrics.Middleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Static(storage.PublicPrefix, opts.UploadDir)

	var jobs handlers.JobReporter
	if opts.Scheduler != nil {
		jobs = opts.Scheduler
	}
	h := handlers.New(opts.Services, opts.Tokens, opts.Hub, opts.DB, jobs)

	anyRole := middleware.RequireRoles(opts.Tokens, models.AllRoles...)
	adminOnly := middleware.RequireRoles(opts.Tokens, models.RoleAdmin)

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
		api.GET("/ws", h.WebSocket)

		api.POST("/register", h.Register)
		api.POST("/login", h.Login)

		api.GET("/profile", anyRole, h.Profile)
		api.PATCH("/profile", anyRole, h.UpdateProfile)

		users := api.Group("/users", adminOnly)
		{
			users.GET("", h.ListUsers)
			users.POST("", h.CreateUser)
			users.PATCH("", h.UpdateUser)
			users.DELETE("", h.DeleteUser)
		}

		api.GET("/companies", anyRole, h.ListCompanies)
		api.POST("/companies", adminOnly, h.CreateCompany)
		api.PATCH("/companies", adminOnly, h.UpdateCompany)
		api.DELETE("/companies", adminOnly, h.DeleteCompany)

		api.GET("/departments", anyRole, h.ListDepartments)
		api.POST("/departments", adminOnly, h.CreateDepartment)
		api.PATCH("/departments", adminOnly, h.UpdateDepartment)
		api.DELETE("/departments", adminOnly, h.DeleteDepartment)

		api.GET("/rehber-groups", anyRole, h.ListRehberGroups)
		api.POST("/rehber-groups", adminOnly, h.CreateRehberGroup)
		api.PATCH("/rehber-groups", adminOnly, h.UpdateRehberGroup)
		api.DELETE("/rehber-groups", adminOnly, h.DeleteRehberGroup)

		api.GET("/rehber-structure", anyRole, h.RehberStructure)

		projects := api.Group("/projects", adminOnly)
		{
			projects.POST("", h.CreateProject)
			projects.GET("", h.ListProjects)
			projects.PATCH("", h.UpdateProject)
			projects.DELETE("", h.DeleteProject)
		}

		sprints := api.Group("/sprints", adminOnly)
		{
			sprints.POST("", h.CreateSprint)
			sprints.GET("", h.ListSprints)
			sprints.PATCH("", h.UpdateSprint)
			sprints.DELETE("", h.DeleteSprint)
		}

		// Issue PATCH is open to every role; the issue service decides per issue.
		issues := api.Group("/issues", anyRole)
		{
			issues.POST("", h.CreateIssue)
			issues.GET("", h.ListIssues)
			issues.PATCH("", h.UpdateIssue)
		}

		comments := api.Group("/comments", anyRole)
		{
			comments.POST("", h.CreateComment)
			comments.GET("", h.ListComments)
			comments.PATCH("", h.UpdateComment)
			comments.DELETE("", h.DeleteComment)
		}

		api.GET("/notifications", anyRole, h.ListNotifications)
		api.PATCH("/notifications", anyRole, h.MarkNotifications)

		api.GET("/statistics", anyRole, h.Statistics)
	}

	return r
}
