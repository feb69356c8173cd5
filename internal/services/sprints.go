package services

import (
	"context"
	"strings"
	"time"

	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/models"
	"gorm.io/gorm"
)

type SprintService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSprintService(db *gorm.DB, now func() time.Time) *SprintService {
	return &SprintService{db: db, now: now}
}

type CreateSprintInput struct {
	ProjectID uint
	Name      string
	StartDate *time.Time
	EndDate   *time.Time
	IsActive  *bool
}

type UpdateSprintInput struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
	IsActive  *bool
}

// Create adds a sprint to a project. A missing start date means now and a
// missing end date means the start date, giving a zero-length sprint.
func (s *SprintService) Create(ctx context.Context, in CreateSprintInput) (*models.Sprint, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.ProjectID == 0 || in.Name == "" {
		return nil, apperr.Validation("projectId and name are required")
	}

	db := s.db.WithContext(ctx)

	var project models.Project
	if err := db.Select("id").First(&project, in.ProjectID).Error; err != nil {
		return nil, lookupErr(err, "project")
	}

	sprint := &models.Sprint{
		ProjectID: in.ProjectID,
		Name:      in.Name,
		StartDate: s.now(),
		IsActive:  true,
	}
	if in.StartDate != nil {
		sprint.StartDate = *in.StartDate
	}
	sprint.EndDate = sprint.StartDate
	if in.EndDate != nil {
		sprint.EndDate = *in.EndDate
	}
	if in.IsActive != nil {
		sprint.IsActive = *in.IsActive
	}

	if sprint.EndDate.Before(sprint.StartDate) {
		return nil, apperr.Validation("endDate must not be before startDate")
	}

	if err := db.Create(sprint).Error; err != nil {
		return nil, apperr.Internal("failed to create sprint", err)
	}

	return sprint, nil
}

// List returns sprints with their project and issue summaries, latest start first.
func (s *SprintService) List(ctx context.Context, projectID *uint) ([]models.Sprint, error) {
	query := s.db.WithContext(ctx)
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}

	sprints := []models.Sprint{}

	if err := query.
		Preload("Project", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "key")
		}).
		Preload("Issues", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "sprint_id", "title", "status")
		}).
		Order("start_date DESC, id DESC").
		Find(&sprints).Error; err != nil {
		return nil, apperr.Internal("failed to retrieve sprints", err)
	}

	return sprints, nil
}

func (s *SprintService) Update(ctx context.Context, id uint, in UpdateSprintInput) (*models.Sprint, error) {
	if id == 0 {
		return nil, apperr.Validation("id is required")
	}

	db := s.db.WithContext(ctx)

	var sprint models.Sprint
	if err := db.First(&sprint, id).Error; err != nil {
		return nil, lookupErr(err, "sprint")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		sprint.Name = name
	}
	if in.StartDate != nil {
		sprint.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		sprint.EndDate = *in.EndDate
	}
	if in.IsActive != nil {
		sprint.IsActive = *in.IsActive
	}

	if sprint.EndDate.Before(sprint.StartDate) {
		return nil, apperr.Validation("endDate must not be before startDate")
	}

	if err := db.Save(&sprint).Error; err != nil {
		return nil, apperr.Internal("failed to update sprint", err)
	}

	return &sprint, nil
}
