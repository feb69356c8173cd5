package services

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/auth"
	"github.com/taskhub-dev/taskhub/internal/models"
	"gorm.io/gorm"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type ProjectInput struct {
	Name        string
	Key         string
	Description string

	DiscordWebhook string
	SlackWebhook   string
}

func (in *ProjectInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Key = strings.ToUpper(strings.TrimSpace(in.Key))
	if in.Name == "" || in.Key == "" {
		return apperr.Validation("name and key are required")
	}

	in.DiscordWebhook = strings.TrimSpace(in.DiscordWebhook)
	in.SlackWebhook = strings.TrimSpace(in.SlackWebhook)
	for _, hook := range []string{in.DiscordWebhook, in.SlackWebhook} {
		if hook != "" && !validWebhookURL(hook) {
			return apperr.Validation("invalid webhook URL %q", hook)
		}
	}
	return nil
}

func validWebhookURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (s *ProjectService) Create(ctx context.Context, caller auth.Identity, in ProjectInput) (*models.Project, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	if err := s.ensureKeyFree(db, in.Key, 0); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        in.Name,
		Key:         in.Key,
		Description: in.Description,
		OwnerID:     caller.ID,

		DiscordWebhook: in.DiscordWebhook,
		SlackWebhook:   in.SlackWebhook,
	}

	if err := db.Create(project).Error; err != nil {
		return nil, apperr.Internal("failed to create project", err)
	}

	return project, nil
}

func (s *ProjectService) ensureKeyFree(db *gorm.DB, key string, exceptID uint) error {
	var existing models.Project

	err := db.Select("id").Where(map[string]interface{}{"key": key}).Where("id <> ?", exceptID).First(&existing).Error
	if err == nil {
		return apperr.Validation("project key %q is already in use", key)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Internal("failed to check project key", err)
	}
	return nil
}

// List returns every project with sprint and issue summaries, newest first.
func (s *ProjectService) List(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}

	if err := s.db.WithContext(ctx).
		Preload("Sprints", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "project_id", "name", "start_date", "end_date", "is_active").Order("start_date DESC")
		}).
		Preload("Issues", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "project_id", "title", "priority", "status")
		}).
		Order("created_at DESC, id DESC").
		Find(&projects).Error; err != nil {
		return nil, apperr.Internal("failed to retrieve projects", err)
	}

	return projects, nil
}

func (s *ProjectService) Update(ctx context.Context, id uint, in ProjectInput) (*models.Project, error) {
	if id == 0 {
		return nil, apperr.Validation("id is required")
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var project models.Project
	if err := db.First(&project, id).Error; err != nil {
		return nil, lookupErr(err, "project")
	}

	if err := s.ensureKeyFree(db, in.Key, id); err != nil {
		return nil, err
	}

	project.Name = in.Name
	project.Key = in.Key
	project.Description = in.Description
	project.DiscordWebhook = in.DiscordWebhook
	project.SlackWebhook = in.SlackWebhook

	if err := db.Save(&project).Error; err != nil {
		return nil, apperr.Internal("failed to update project", err)
	}

	return &project, nil
}
