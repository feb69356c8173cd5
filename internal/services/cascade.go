package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskhub-dev/taskhub/internal/models"
	"gorm.io/gorm"
)

// DeleteOutcome is the answer to a two-phase delete request. When Warning is
// set nothing was removed and the caller must repeat the request with the
// confirmation flag.
//
// Project warnings carry both SprintCount and IssueCount, zero included.
// Sprint warnings carry Count.
type DeleteOutcome struct {
	Warning     bool   `json:"warning"`
	SprintCount *int64 `json:"sprintCount,omitempty"`
	IssueCount  *int64 `json:"issueCount,omitempty"`
	Count       int64  `json:"count,omitempty"`
	Message     string `json:"message"`
}

// Delete removes a project. With dependents present and confirm unset it only
// reports the dependent counts. Otherwise issues, then sprints, then the
// project are deleted in one transaction.
func (s *ProjectService) Delete(ctx context.Context, id uint, confirm bool) (*DeleteOutcome, error) {
	var outcome *DeleteOutcome

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.Select("id", "name").First(&project, id).Error; err != nil {
			return lookupErr(err, "project")
		}

		var sprintCount, issueCount int64
		if err := tx.Model(&models.Sprint{}).Where("project_id = ?", id).Count(&sprintCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Issue{}).Where("project_id = ?", id).Count(&issueCount).Error; err != nil {
			return err
		}

		if !confirm && (sprintCount > 0 || issueCount > 0) {
			outcome = &DeleteOutcome{
				Warning:     true,
				SprintCount: &sprintCount,
				IssueCount:  &issueCount,
				Message: fmt.Sprintf("This project has %d sprints and %d issues. Are you sure you want to delete it?",
					sprintCount, issueCount),
			}
			return nil
		}

		if err := deleteIssues(tx, "project_id = ?", id); err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.Sprint{}).Error; err != nil {
			return err
		}

		if err := tx.Delete(&project).Error; err != nil {
			return err
		}

		slog.Info("Project deleted", "project_id", id, "sprints", sprintCount, "issues", issueCount)

		outcome = &DeleteOutcome{Message: "Project and its related data were deleted"}
		return nil
	})
	if err != nil {
		return nil, passthrough(err, "failed to delete project")
	}

	return outcome, nil
}

// Delete removes a sprint. With issues present and force unset it only
// reports the issue count. Otherwise the sprint's issues and then the sprint
// are deleted in one transaction.
func (s *SprintService) Delete(ctx context.Context, id uint, force bool) (*DeleteOutcome, error) {
	var outcome *DeleteOutcome

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sprint models.Sprint
		if err := tx.Select("id").First(&sprint, id).Error; err != nil {
			return lookupErr(err, "sprint")
		}

		var issueCount int64
		if err := tx.Model(&models.Issue{}).Where("sprint_id = ?", id).Count(&issueCount).Error; err != nil {
			return err
		}

		if issueCount > 0 && !force {
			outcome = &DeleteOutcome{
				Warning: true,
				Count:   issueCount,
				Message: fmt.Sprintf("This sprint has %d issues. Do you still want to delete it?", issueCount),
			}
			return nil
		}

		if issueCount > 0 {
			if err := deleteIssues(tx, "sprint_id = ?", id); err != nil {
				return err
			}
		}

		if err := tx.Delete(&sprint).Error; err != nil {
			return err
		}

		slog.Info("Sprint deleted", "sprint_id", id, "issues", issueCount)

		outcome = &DeleteOutcome{Message: "Sprint deleted"}
		if issueCount > 0 {
			outcome.Message = fmt.Sprintf("Sprint and its %d issues were deleted", issueCount)
		}
		return nil
	})
	if err != nil {
		return nil, passthrough(err, "failed to delete sprint")
	}

	return outcome, nil
}

// deleteIssues removes the issues matching cond together with their comments.
// Notifications survive with their issue reference cleared.
func deleteIssues(tx *gorm.DB, cond string, args ...interface{}) error {
	ids := func() *gorm.DB {
		return tx.Model(&models.Issue{}).Select("id").Where(cond, args...)
	}

	if err := tx.Where("issue_id IN (?)", ids()).Delete(&models.Comment{}).Error; err != nil {
		return err
	}

	if err := tx.Model(&models.Notification{}).
		Where("issue_id IN (?)", ids()).
		Update("issue_id", nil).Error; err != nil {
		return err
	}

	return tx.Where(cond, args...).Delete(&models.Issue{}).Error
}
