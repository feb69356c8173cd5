package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	database "github.com/taskhub-dev/taskhub/db"
	"github.com/taskhub-dev/taskhub/internal/scheduler"
)

// HealthCheck pings the database and lists background jobs. A failing job is
// reported but does not degrade the status.
func (h *Handler) HealthCheck(ctx *gin.Context) {
	status, code, dbStatus := "ok", http.StatusOK, "ok"

	if err := database.Ping(h.db); err != nil {
		slog.Error("Database ping failed", "error", err)
		status, code, dbStatus = "degraded", http.StatusServiceUnavailable, "unreachable"
	}

	jobs := []scheduler.JobStatus{}
	if h.jobs != nil {
		jobs = h.jobs.Status()
	}

	ctx.JSON(code, gin.H{
		"status":    status,
		"database":  dbStatus,
		"jobs":      jobs,
		"message":   "TaskHub is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
