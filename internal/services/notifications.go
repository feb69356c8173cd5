package services

import (
	"context"
	"log/slog"

	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/models"
	"gorm.io/gorm"
)

// Event is what live clients receive when a notification is created.
type Event struct {
	Type         string               `json:"type"`
	Notification *models.Notification `json:"notification"`
}

type Notifier struct {
	db        *gorm.DB
	publisher Publisher
}

func NewNotifier(db *gorm.DB, publisher Publisher) *Notifier {
	return &Notifier{db: db, publisher: publisher}
}

// record inserts a notification inside the caller's transaction. Call
// publish once the transaction has committed.
func (n *Notifier) record(tx *gorm.DB, userID uint, issueID *uint, message string) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:  userID,
		IssueID: issueID,
		Message: message,
	}

	if err := tx.Create(notification).Error; err != nil {
		return nil, err
	}

	return notification, nil
}

func (n *Notifier) publish(notification *models.Notification) {
	if n.publisher == nil || notification == nil {
		return
	}

	n.publisher.Publish(notification.UserID, Event{Type: "notification", Notification: notification})
}

// List returns the caller's notifications, newest first.
func (n *Notifier) List(ctx context.Context, userID uint) ([]models.Notification, error) {
	notifications := []models.Notification{}

	if err := n.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error; err != nil {
		return nil, apperr.Internal("failed to retrieve notifications", err)
	}

	return notifications, nil
}

// MarkRead flags one notification as read. Notifications of other users are
// reported as not found.
func (n *Notifier) MarkRead(ctx context.Context, userID, id uint) (*models.Notification, error) {
	if id == 0 {
		return nil, apperr.Validation("id is required")
	}

	var notification models.Notification

	if err := n.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&notification).Error; err != nil {
		return nil, lookupErr(err, "notification")
	}

	if err := n.db.WithContext(ctx).Model(&notification).Update("is_read", true).Error; err != nil {
		return nil, apperr.Internal("failed to update notification", err)
	}
	notification.IsRead = true

	return &notification, nil
}

// MarkAllRead flags every unread notification of the user and returns how many changed.
func (n *Notifier) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := n.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)

	if result.Error != nil {
		return 0, apperr.Internal("failed to update notifications", result.Error)
	}

	slog.Debug("Marked notifications read", "user_id", userID, "count", result.RowsAffected)
	return result.RowsAffected, nil
}
