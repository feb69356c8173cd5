package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	database "github.com/taskhub-dev/taskhub/db"
	"github.com/taskhub-dev/taskhub/internal/auth"
	"github.com/taskhub-dev/taskhub/internal/models"
	"github.com/taskhub-dev/taskhub/internal/realtime"
	"github.com/taskhub-dev/taskhub/internal/scheduler"
	"github.com/taskhub-dev/taskhub/internal/services"
	"github.com/taskhub-dev/taskhub/internal/storage"
	"gorm.io/gorm"
)

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	tokens *auth.TokenIssuer
	sched  *scheduler.Scheduler
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	gdb, err := database.Connect("sqlite", dsn)
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(gdb))
	t.Cleanup(func() { _ = database.Close(gdb) })

	uploadDir := t.TempDir()
	tokens := auth.NewTokenIssuer("router-test-secret", time.Hour)
	hub := realtime.NewHub(nil)
	sched := scheduler.NewScheduler()
	t.Cleanup(sched.Stop)

	engine := NewRouter(Options{
		DB:        gdb,
		Services:  services.New(gdb, tokens, storage.NewLocalStore(uploadDir), hub),
		Tokens:    tokens,
		Hub:       hub,
		Scheduler: sched,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		UploadDir: uploadDir,

		AllowedOrigins: []string{"http://localhost:5173"},
	})

	return &testServer{t: t, db: gdb, tokens: tokens, sched: sched, engine: engine}
}

// user inserts a user and returns it with a bearer header value.
func (s *testServer) user(role models.Role) (models.User, string) {
	s.t.Helper()

	user := models.User{Name: string(role), Email: uuid.NewString() + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(s.t, s.db.Create(&user).Error)

	token, err := s.tokens.Issue(auth.Identity{ID: user.ID, Email: user.Email, Role: role})
	require.NoError(s.t, err)

	return user, "Bearer " + token
}

func (s *testServer) do(method, target, bearer string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestGuardStatusCodes(t *testing.T) {
	s := newTestServer(t)
	_, userBearer := s.user(models.RoleUser)

	rec := s.do(http.MethodGet, "/api/issues", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authorization token is required", decode[map[string]string](t, rec)["error"])

	rec = s.do(http.MethodGet, "/api/issues", "Bearer not-a-jwt", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	expired := auth.NewTokenIssuer("router-test-secret", -time.Minute)
	token, err := expired.Issue(auth.Identity{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	rec = s.do(http.MethodGet, "/api/issues", "Bearer "+token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodDelete, "/api/projects?id=1", userBearer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/issues", userBearer, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestRegisterLoginFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/register", "", map[string]string{
		"name": "Deniz", "email": "deniz@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "hunter22")
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	rec = s.do(http.MethodPost, "/api/login", "", map[string]string{"email": "deniz@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/login", "", map[string]string{"email": "ghost@example.com", "password": "hunter22"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode[map[string]string](t, rec)["error"])

	rec = s.do(http.MethodPost, "/api/login", "", map[string]string{"email": "deniz@example.com", "password": "hunter22"})
	require.Equal(t, http.StatusOK, rec.Code)

	login := decode[struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}](t, rec)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, models.RoleUser, login.User.Role)

	rec = s.do(http.MethodGet, "/api/profile", "Bearer "+login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "deniz@example.com", decode[models.User](t, rec).Email)
}

func TestIssueLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	admin, adminBearer := s.user(models.RoleAdmin)
	reporter, reporterBearer := s.user(models.RoleUser)
	assignee, assigneeBearer := s.user(models.RoleIsci)

	project := models.Project{Name: "Core", Key: "CORE", OwnerID: admin.ID}
	require.NoError(t, s.db.Create(&project).Error)

	rec := s.do(http.MethodPost, "/api/issues", reporterBearer, map[string]any{
		"title":      "Crash on save",
		"status":     "DONE",
		"priority":   "HIGH",
		"projectId":  project.ID,
		"assigneeId": assignee.ID,
		"dueDate":    "2099-01-31",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	issue := decode[models.Issue](t, rec)
	assert.Equal(t, models.StatusTodo, issue.Status, "status in the request body is ignored")
	assert.Equal(t, reporter.ID, issue.ReporterID)
	assert.Equal(t, assignee.ID, issue.AssigneeID)

	rec = s.do(http.MethodGet, "/api/issues", reporterBearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Issue](t, rec), 1, "reporters see what they reported")

	rec = s.do(http.MethodGet, "/api/notifications", assigneeBearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notifications := decode[[]models.Notification](t, rec)
	require.Len(t, notifications, 1)

	rec = s.do(http.MethodPatch, "/api/issues", reporterBearer, map[string]any{"id": issue.ID, "status": "DONE"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "reporter cannot edit")

	rec = s.do(http.MethodPatch, "/api/issues", assigneeBearer, map[string]any{"id": issue.ID, "status": "IN_PROGRESS"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.StatusInProgress, decode[models.Issue](t, rec).Status)

	rec = s.do(http.MethodPatch, "/api/issues", adminBearer, map[string]any{"id": 9999, "status": "DONE"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPatch, "/api/notifications", reporterBearer, map[string]any{"id": notifications[0].ID})
	assert.Equal(t, http.StatusNotFound, rec.Code, "cannot mark another user's notification")

	rec = s.do(http.MethodPatch, "/api/notifications", assigneeBearer, map[string]any{"id": notifications[0].ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Notification](t, rec).IsRead)

	rec = s.do(http.MethodPost, "/api/comments", reporterBearer, map[string]any{"issueId": issue.ID, "body": "any update?"})
	require.Equal(t, http.StatusCreated, rec.Code)
	comment := decode[models.Comment](t, rec)

	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/comments?id=%d", comment.ID), assigneeBearer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/comments?issueId=%d", issue.ID), assigneeBearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Comment](t, rec), 1)

	rec = s.do(http.MethodGet, "/api/statistics", assigneeBearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[services.Statistics](t, rec).InProgress)
}

func TestCreateIssueMultipart(t *testing.T) {
	s := newTestServer(t)

	admin, adminBearer := s.user(models.RoleAdmin)
	project := models.Project{Name: "Core", Key: "CORE", OwnerID: admin.ID}
	require.NoError(t, s.db.Create(&project).Error)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("title", "With file"))
	require.NoError(t, form.WriteField("projectId", fmt.Sprint(project.ID)))
	require.NoError(t, form.WriteField("dueDate", "2099-05-01T10:00:00Z"))
	part, err := form.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("attached"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/issues", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", adminBearer)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	issue := decode[models.Issue](t, rec)
	require.True(t, strings.HasPrefix(issue.Attachment, "/uploads/attachments/"), issue.Attachment)
	require.NotNil(t, issue.DueDate)

	rec = s.do(http.MethodGet, issue.Attachment, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attached", rec.Body.String())
}

func TestTwoPhaseDeletes(t *testing.T) {
	s := newTestServer(t)

	_, adminBearer := s.user(models.RoleAdmin)

	rec := s.do(http.MethodPost, "/api/projects", adminBearer, map[string]string{"name": "Core", "key": "CORE"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	project := decode[models.Project](t, rec)

	rec = s.do(http.MethodPost, "/api/sprints", adminBearer, map[string]any{
		"projectId": project.ID, "name": "S1", "startDate": "2026-01-01", "endDate": "2026-01-14",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sprint := decode[models.Sprint](t, rec)

	for i := 0; i < 3; i++ {
		rec = s.do(http.MethodPost, "/api/issues", adminBearer, map[string]any{
			"title": fmt.Sprintf("issue %d", i), "projectId": project.ID, "sprintId": sprint.ID,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/sprints?id=%d", sprint.ID), adminBearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	warning := decode[map[string]any](t, rec)
	assert.Equal(t, true, warning["warning"])
	assert.EqualValues(t, 3, warning["count"])

	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/projects?id=%d", project.ID), adminBearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	warning = decode[map[string]any](t, rec)
	assert.Equal(t, true, warning["warning"])
	assert.EqualValues(t, 1, warning["sprintCount"])
	assert.EqualValues(t, 3, warning["issueCount"])

	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/sprints?id=%d&force=true", sprint.ID), adminBearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["warning"])

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/issues?projectId=%d", project.ID), adminBearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Issue](t, rec))

	// Nothing depends on the project any more, so no confirmation is needed.
	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/projects?id=%d", project.ID), adminBearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["warning"])

	rec = s.do(http.MethodGet, "/api/projects", adminBearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Project](t, rec))

	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/projects?id=%d&confirm=true", project.ID), adminBearer, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/api/projects", adminBearer, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["database"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodGet, "/api/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "taskhub_http_requests_total")
}

func TestHealthReportsBackgroundJobs(t *testing.T) {
	s := newTestServer(t)

	type health struct {
		Status string                `json:"status"`
		Jobs   []scheduler.JobStatus `json:"jobs"`
	}

	rec := s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[health](t, rec).Jobs)

	s.sched.AddJob("due-reminders", time.Hour, func(ctx context.Context) error {
		return errors.New("database is locked")
	})

	var got health
	assert.Eventually(t, func() bool {
		rec := s.do(http.MethodGet, "/api/health", "", nil)
		got = decode[health](t, rec)
		return len(got.Jobs) == 1 && got.Jobs[0].Runs > 0
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "ok", got.Status)
	require.Len(t, got.Jobs, 1)
	assert.Equal(t, "due-reminders", got.Jobs[0].Name)
	assert.Equal(t, "1h0m0s", got.Jobs[0].Interval)
	assert.Equal(t, "database is locked", got.Jobs[0].LastErr)
}
