package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/models"
	"gorm.io/gorm"
)

// RemindDueSoon notifies the assignee of every open issue whose due date
// falls within window from now. Each issue is reminded at most once.
func (s *IssueService) RemindDueSoon(ctx context.Context, window time.Duration) (int, error) {
	now := s.now()
	db := s.db.WithContext(ctx)

	var issues []models.Issue
	if err := db.
		Where("due_date IS NOT NULL AND due_date > ? AND due_date <= ?", now, now.Add(window)).
		Where("status <> ? AND due_reminder_sent_at IS NULL", models.StatusDone).
		Order("due_date ASC").
		Find(&issues).Error; err != nil {
		return 0, apperr.Internal("failed to find issues due soon", err)
	}

	sent := 0
	for i := range issues {
		issue := &issues[i]

		var notification *models.Notification
		err := db.Transaction(func(tx *gorm.DB) error {
			// Claim before notifying; a concurrent run claims nothing.
			result := tx.Model(&models.Issue{}).
				Where("id = ? AND due_reminder_sent_at IS NULL", issue.ID).
				Update("due_reminder_sent_at", now)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return nil
			}

			var err error
			notification, err = s.notifier.record(tx, issue.AssigneeID, &issue.ID,
				fmt.Sprintf("Task %q is due on %s", issue.Title, issue.DueDate.Format(time.DateOnly)))
			return err
		})
		if err != nil {
			return sent, apperr.Internal("failed to send due reminder", err)
		}
		if notification == nil {
			continue
		}

		s.notifier.publish(notification)
		sent++
	}

	if sent > 0 {
		slog.Info("Sent due date reminders", "count", sent)
	}

	return sent, nil
}
