package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/taskhub-dev/taskhub/internal/auth"
	"github.com/taskhub-dev/taskhub/internal/models"
)

func TestCanMutate(t *testing.T) {
	past := testNow.Add(-time.Minute)
	future := testNow.Add(time.Minute)

	issue := func(due *time.Time) *models.Issue {
		return &models.Issue{ReporterID: 1, AssigneeID: 2, DueDate: due}
	}

	admin := auth.Identity{ID: 9, Role: models.RoleAdmin}
	reporter := auth.Identity{ID: 1, Role: models.RoleUser}
	assignee := auth.Identity{ID: 2, Role: models.RoleIsci}
	stranger := auth.Identity{ID: 3, Role: models.RoleRehber}

	tests := []struct {
		name   string
		caller auth.Identity
		issue  *models.Issue
		want   error
	}{
		{"admin without due date", admin, issue(nil), nil},
		{"admin overdue", admin, issue(&past), nil},
		{"assignee without due date", assignee, issue(nil), nil},
		{"assignee before due", assignee, issue(&future), nil},
		{"assignee overdue", assignee, issue(&past), ErrIssueFrozen},
		{"reporter", reporter, issue(nil), ErrNoPermission},
		{"reporter overdue", reporter, issue(&past), ErrNoPermission},
		{"stranger", stranger, issue(&future), ErrNoPermission},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMutate(tt.caller, tt.issue, testNow))
		})
	}
}

func TestCanMutateDueDateBoundary(t *testing.T) {
	assignee := auth.Identity{ID: 2, Role: models.RoleUser}
	due := testNow

	// Frozen only once the due date is strictly in the past.
	assert.NoError(t, CanMutate(assignee, &models.Issue{AssigneeID: 2, DueDate: &due}, testNow))
	assert.ErrorIs(t, CanMutate(assignee, &models.Issue{AssigneeID: 2, DueDate: &due}, testNow.Add(time.Nanosecond)), ErrIssueFrozen)
}
