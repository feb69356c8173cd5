package services

import (
	"time"

	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/auth"
	"github.com/taskhub-dev/taskhub/internal/models"
)

var (
	ErrNoPermission = apperr.Forbidden("You do not have permission to modify this issue")
	ErrIssueFrozen  = apperr.Forbidden("This issue is past its due date and can only be changed by an administrator")
)

// CanMutate decides whether caller may change the status, priority or
// assignee of issue at the given time. Administrators always may. The
// current assignee may until the due date passes. Nobody else may,
// including the reporter.
func CanMutate(caller auth.Identity, issue *models.Issue, now time.Time) error {
	if caller.IsAdmin() {
		return nil
	}

	if caller.ID != issue.AssigneeID {
		return ErrNoPermission
	}

	if issue.Overdue(now) {
		return ErrIssueFrozen
	}

	return nil
}
