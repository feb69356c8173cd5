package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	database "github.com/taskhub-dev/taskhub/db"
	"github.com/taskhub-dev/taskhub/internal/auth"
	"github.com/taskhub-dev/taskhub/internal/models"
	"github.com/taskhub-dev/taskhub/internal/storage"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// newTestDB returns a migrated private in-memory SQLite database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	gdb, err := database.Connect("sqlite", dsn)
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(gdb))
	t.Cleanup(func() { _ = database.Close(gdb) })

	return gdb
}

type recordingPublisher struct {
	mu     sync.Mutex
	events map[uint][]any
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(map[uint][]any)}
}

func (p *recordingPublisher) Publish(userID uint, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[userID] = append(p.events[userID], payload)
}

func (p *recordingPublisher) count(userID uint) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events[userID])
}

type fixture struct {
	db        *gorm.DB
	publisher *recordingPublisher
	files     *storage.LocalStore
	svc       *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb := newTestDB(t)
	publisher := newRecordingPublisher()
	files := storage.NewLocalStore(t.TempDir())
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)

	svc := New(gdb, tokens, files, publisher)

	// Pin every clock-dependent service to testNow.
	svc.Issues.now = fixedClock
	svc.Sprints.now = fixedClock
	svc.Statistics.now = fixedClock
	svc.Users.now = fixedClock

	return &fixture{db: gdb, publisher: publisher, files: files, svc: svc}
}

func (f *fixture) user(t *testing.T, role models.Role) auth.Identity {
	t.Helper()

	user := models.User{
		Name:         "User " + string(role),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, f.db.Create(&user).Error)

	return auth.Identity{ID: user.ID, Email: user.Email, Role: role}
}

func (f *fixture) project(t *testing.T, owner auth.Identity) *models.Project {
	t.Helper()

	project := models.Project{
		Name:    "Project",
		Key:     "P" + uuid.NewString()[:8],
		OwnerID: owner.ID,
	}
	require.NoError(t, f.db.Create(&project).Error)
	return &project
}

func (f *fixture) sprint(t *testing.T, projectID uint) *models.Sprint {
	t.Helper()

	sprint := models.Sprint{
		ProjectID: projectID,
		Name:      "Sprint",
		StartDate: testNow,
		EndDate:   testNow.AddDate(0, 0, 14),
		IsActive:  true,
	}
	require.NoError(t, f.db.Create(&sprint).Error)
	return &sprint
}

// issue inserts an issue directly, bypassing notifications.
func (f *fixture) issue(t *testing.T, projectID uint, sprintID *uint, reporter, assignee auth.Identity) *models.Issue {
	t.Helper()

	issue := models.Issue{
		Title:      "Issue",
		Priority:   models.PriorityMedium,
		Status:     models.StatusTodo,
		Type:       models.IssueTypeTask,
		ProjectID:  projectID,
		SprintID:   sprintID,
		ReporterID: reporter.ID,
		AssigneeID: assignee.ID,
	}
	require.NoError(t, f.db.Create(&issue).Error)
	return &issue
}

func ptr[T any](v T) *T { return &v }

func count(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()

	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
