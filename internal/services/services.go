// Package services holds the business rules of the tracker: issue lifecycle
// and permissions, cascading deletes, notifications and the org hierarchy.
package services

import (
	"errors"
	"io"
	"time"

	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/auth"
	"gorm.io/gorm"
)

// FileStore persists uploaded content and returns a reference string.
type FileStore interface {
	Save(category, filename string, r io.Reader) (string, error)
}

// Publisher delivers a payload to a user's live connections.
type Publisher interface {
	Publish(userID uint, payload any)
}

// Upload is a file received with a request.
type Upload struct {
	Filename string
	Content  io.Reader
}

type Services struct {
	Users         *UserService
	Hierarchy     *HierarchyService
	Projects      *ProjectService
	Sprints       *SprintService
	Issues        *IssueService
	Comments      *CommentService
	Notifications *Notifier
	Statistics    *StatisticsService
}

func New(db *gorm.DB, tokens *auth.TokenIssuer, files FileStore, publisher Publisher) *Services {
	clock := time.Now
	notifier := NewNotifier(db, publisher)

	issues := NewIssueService(db, notifier, files, clock)
	issues.webhooks = NewWebhookSender(nil)

	return &Services{
		Users:         NewUserService(db, tokens, clock),
		Hierarchy:     NewHierarchyService(db, files),
		Projects:      NewProjectService(db),
		Sprints:       NewSprintService(db, clock),
		Issues:        issues,
		Comments:      NewCommentService(db),
		Notifications: notifier,
		Statistics:    NewStatisticsService(db, clock),
	}
}

// lookupErr maps a failed single-row lookup to NotFound or Internal.
func lookupErr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(what)
	}
	return apperr.Internal("failed to retrieve "+what, err)
}

// passthrough keeps classified errors intact and wraps the rest as internal.
func passthrough(err error, message string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal(message, err)
}
