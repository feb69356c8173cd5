package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/auth"
	"github.com/taskhub-dev/taskhub/internal/models"
	"gorm.io/gorm"
)

const attachmentCategory = "attachments"

type IssueService struct {
	db       *gorm.DB
	notifier *Notifier
	files    FileStore
	webhooks *WebhookSender
	now      func() time.Time
}

func NewIssueService(db *gorm.DB, notifier *Notifier, files FileStore, now func() time.Time) *IssueService {
	return &IssueService{db: db, notifier: notifier, files: files, now: now}
}

type CreateIssueInput struct {
	Title       string
	Description string
	Priority    models.Priority
	Type        models.IssueType
	ProjectID   uint
	SprintID    *uint
	AssigneeID  *uint
	DueDate     *time.Time
	Attachment  *Upload
}

type UpdateIssueInput struct {
	ID         uint
	Status     *models.Status
	Priority   *models.Priority
	AssigneeID *uint
}

type IssueFilter struct {
	ProjectID *uint
	SprintID  *uint
	Status    models.Status
}

// Create stores a new issue reported by caller. New issues always start in
// TODO and are assigned to the reporter unless an assignee is given. The
// assignee receives exactly one notification.
func (s *IssueService) Create(ctx context.Context, caller auth.Identity, in CreateIssueInput) (*models.Issue, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperr.Validation("title is required")
	}
	if in.ProjectID == 0 {
		return nil, apperr.Validation("projectId is required")
	}

	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, apperr.Validation("invalid priority %q", in.Priority)
	}

	if in.Type == "" {
		in.Type = models.IssueTypeTask
	}
	if !in.Type.Valid() {
		return nil, apperr.Validation("invalid type %q", in.Type)
	}

	issue := &models.Issue{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      models.StatusTodo,
		Type:        in.Type,
		ProjectID:   in.ProjectID,
		ReporterID:  caller.ID,
		AssigneeID:  caller.ID,
		DueDate:     in.DueDate,
	}

	if in.SprintID != nil && *in.SprintID != 0 {
		issue.SprintID = in.SprintID
	}
	if in.AssigneeID != nil && *in.AssigneeID != 0 {
		issue.AssigneeID = *in.AssigneeID
	}

	db := s.db.WithContext(ctx)

	if err := s.checkReferences(db, issue); err != nil {
		return nil, err
	}

	if in.Attachment != nil {
		ref, err := s.files.Save(attachmentCategory, in.Attachment.Filename, in.Attachment.Content)
		if err != nil {
			return nil, apperr.Internal("failed to store attachment", err)
		}
		issue.Attachment = ref
	}

	var notification *models.Notification

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(issue).Error; err != nil {
			return err
		}

		var err error
		notification, err = s.notifier.record(tx, issue.AssigneeID, &issue.ID,
			fmt.Sprintf("You have been assigned a new task: %q", issue.Title))
		return err
	})
	if err != nil {
		if issue.Attachment != "" {
			slog.Warn("Issue creation failed after attachment was stored", "attachment", issue.Attachment)
		}
		return nil, apperr.Internal("failed to create issue", err)
	}

	s.notifier.publish(notification)
	s.announce(ctx, IssueCreated, *issue)

	return issue, nil
}

// announce forwards an issue event to the chat hooks of its project. Delivery
// runs in the background and outlives the request.
func (s *IssueService) announce(ctx context.Context, kind IssueEventKind, issue models.Issue) {
	if s.webhooks == nil {
		return
	}

	var project models.Project
	err := s.db.WithContext(ctx).
		Select("id", "name", "key", "discord_webhook", "slack_webhook").
		First(&project, issue.ProjectID).Error
	if err != nil {
		slog.Warn("Failed to load project for webhook", "project_id", issue.ProjectID, "error", err)
		return
	}
	if project.DiscordWebhook == "" && project.SlackWebhook == "" {
		return
	}

	go s.webhooks.Announce(context.WithoutCancel(ctx), project, kind, issue)
}

func (s *IssueService) checkReferences(db *gorm.DB, issue *models.Issue) error {
	var project models.Project
	if err := db.Select("id").First(&project, issue.ProjectID).Error; err != nil {
		return lookupErr(err, "project")
	}

	if issue.SprintID != nil {
		var sprint models.Sprint
		if err := db.Select("id", "project_id").First(&sprint, *issue.SprintID).Error; err != nil {
			return lookupErr(err, "sprint")
		}
		if sprint.ProjectID != issue.ProjectID {
			return apperr.Validation("sprint %d does not belong to project %d", sprint.ID, issue.ProjectID)
		}
	}

	return s.checkUserExists(db, issue.AssigneeID)
}

func (s *IssueService) checkUserExists(db *gorm.DB, userID uint) error {
	var user models.User
	if err := db.Select("id").First(&user, userID).Error; err != nil {
		return lookupErr(err, "assignee")
	}
	return nil
}

// List returns issues visible to caller: all of them for administrators,
// otherwise the ones the caller reported or is assigned to.
func (s *IssueService) List(ctx context.Context, caller auth.Identity, filter IssueFilter) ([]models.Issue, error) {
	query := visibleTo(s.db.WithContext(ctx), caller)

	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.SprintID != nil {
		query = query.Where("sprint_id = ?", *filter.SprintID)
	}
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, apperr.Validation("invalid status %q", filter.Status)
		}
		query = query.Where("status = ?", filter.Status)
	}

	issues := []models.Issue{}

	if err := query.
		Preload("Project").
		Preload("Sprint").
		Preload("Assignee").
		Preload("Reporter").
		Order("created_at DESC, id DESC").
		Find(&issues).Error; err != nil {
		return nil, apperr.Internal("failed to retrieve issues", err)
	}

	return issues, nil
}

// visibleTo restricts a query on issues to the ones caller may read.
func visibleTo(query *gorm.DB, caller auth.Identity) *gorm.DB {
	if caller.IsAdmin() {
		return query
	}
	return query.Where("(assignee_id = ? OR reporter_id = ?)", caller.ID, caller.ID)
}

// Update changes status, priority or assignee of an existing issue subject
// to CanMutate. Reassigning to a different user notifies the new assignee.
func (s *IssueService) Update(ctx context.Context, caller auth.Identity, in UpdateIssueInput) (*models.Issue, error) {
	if in.ID == 0 {
		return nil, apperr.Validation("id is required")
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, apperr.Validation("invalid status %q", *in.Status)
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return nil, apperr.Validation("invalid priority %q", *in.Priority)
	}

	db := s.db.WithContext(ctx)

	var issue models.Issue
	if err := db.First(&issue, in.ID).Error; err != nil {
		return nil, lookupErr(err, "issue")
	}

	if err := CanMutate(caller, &issue, s.now()); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Status != nil && *in.Status != issue.Status {
		updates["status"] = *in.Status
	}
	if in.Priority != nil && *in.Priority != issue.Priority {
		updates["priority"] = *in.Priority
	}

	reassigned := in.AssigneeID != nil && *in.AssigneeID != 0 && *in.AssigneeID != issue.AssigneeID
	if reassigned {
		if err := s.checkUserExists(db, *in.AssigneeID); err != nil {
			return nil, err
		}
		updates["assignee_id"] = *in.AssigneeID
	}

	if len(updates) == 0 {
		return &issue, nil
	}

	var notification *models.Notification

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&issue).Updates(updates).Error; err != nil {
			return err
		}

		if !reassigned {
			return nil
		}

		var err error
		notification, err = s.notifier.record(tx, *in.AssigneeID, &issue.ID,
			fmt.Sprintf("A task has been assigned to you: %q", issue.Title))
		return err
	})
	if err != nil {
		return nil, apperr.Internal("failed to update issue", err)
	}

	s.notifier.publish(notification)

	if err := db.First(&issue, issue.ID).Error; err != nil {
		return nil, apperr.Internal("failed to reload issue", err)
	}

	if _, changed := updates["status"]; changed && issue.Status == models.StatusDone {
		s.announce(ctx, IssueCompleted, issue)
	}

	return &issue, nil
}
