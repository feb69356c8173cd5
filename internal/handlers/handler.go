package handlers

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/auth"
	"github.com/taskhub-dev/taskhub/internal/realtime"
	"github.com/taskhub-dev/taskhub/internal/scheduler"
	"github.com/taskhub-dev/taskhub/internal/services"
	"github.com/taskhub-dev/taskhub/internal/types"
	"github.com/taskhub-dev/taskhub/internal/utils"
	"gorm.io/gorm"
)

// JobReporter lists background jobs for the health endpoint.
type JobReporter interface {
	Status() []scheduler.JobStatus
}

type Handler struct {
	svc    *services.Services
	tokens *auth.TokenIssuer
	hub    *realtime.Hub
	db     *gorm.DB
	jobs   JobReporter
}

func New(svc *services.Services, tokens *auth.TokenIssuer, hub *realtime.Hub, db *gorm.DB, jobs JobReporter) *Handler {
	return &Handler{svc: svc, tokens: tokens, hub: hub, db: db, jobs: jobs}
}

// respondError translates err into a status code and {"error": message}.
// Internal failures are logged in full and answered generically.
func respondError(ctx *gin.Context, err error) {
	kind := apperr.KindOf(err)

	if kind == apperr.KindInternal {
		slog.Error("Internal error",
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"request_id", ctx.GetString(types.ContextRequestIDKey),
			"error", err,
		)
	}

	ctx.JSON(kind.HTTPStatus(), gin.H{"error": apperr.PublicMessage(err)})
}

func bindJSON(ctx *gin.Context, dst any) error {
	if err := ctx.ShouldBindJSON(dst); err != nil {
		slog.Debug("Failed to bind JSON", "path", ctx.Request.URL.Path, "error", err)
		return apperr.Validation("Invalid request")
	}
	return nil
}

func currentUser(ctx *gin.Context) (auth.Identity, bool) {
	identity, err := utils.GetCurrentUser(ctx)
	if err != nil {
		respondError(ctx, err)
		return auth.Identity{}, false
	}
	return identity, true
}

func isMultipart(ctx *gin.Context) bool {
	return strings.HasPrefix(ctx.ContentType(), "multipart/form-data")
}

// formUpload opens the named file field. A missing field yields nil.
func formUpload(ctx *gin.Context, field string) (*services.Upload, func(), error) {
	header, err := ctx.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, func() {}, nil
		}
		return nil, func() {}, apperr.Validation("invalid %s upload", field)
	}

	return openUpload(header)
}

func openUpload(header *multipart.FileHeader) (*services.Upload, func(), error) {
	file, err := header.Open()
	if err != nil {
		return nil, func() {}, apperr.Internal("failed to open upload", err)
	}

	return &services.Upload{Filename: header.Filename, Content: file}, func() { file.Close() }, nil
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return &t, nil
	}

	return nil, apperr.Validation("%s must be an RFC 3339 timestamp or YYYY-MM-DD", field)
}

// parseDueDate is parseDate for deadlines. A plain date means the end of that
// day (23:59:59 UTC), so the issue is not overdue until the day is over.
func parseDueDate(field, raw string) (*time.Time, error) {
	if day, err := time.Parse(time.DateOnly, strings.TrimSpace(raw)); err == nil {
		due := day.Add(24*time.Hour - time.Second)
		return &due, nil
	}
	return parseDate(field, raw)
}

// formID reads an optional numeric form field.
func formID(ctx *gin.Context, field string) (*uint, error) {
	raw := strings.TrimSpace(ctx.PostForm(field))
	if raw == "" {
		return nil, nil
	}

	id, err := utils.ParseID(raw)
	if err != nil {
		return nil, apperr.Validation("%s must be a positive integer", field)
	}

	return &id, nil
}
