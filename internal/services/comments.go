package services

import (
	"context"
	"strings"

	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/auth"
	"github.com/taskhub-dev/taskhub/internal/models"
	"gorm.io/gorm"
)

var ErrNotCommentAuthor = apperr.Forbidden("Only the author or an administrator can change this comment")

type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

func (s *CommentService) Create(ctx context.Context, caller auth.Identity, issueID uint, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if issueID == 0 || body == "" {
		return nil, apperr.Validation("issueId and body are required")
	}

	db := s.db.WithContext(ctx)

	var issue models.Issue
	if err := db.Select("id").First(&issue, issueID).Error; err != nil {
		return nil, lookupErr(err, "issue")
	}

	comment := &models.Comment{IssueID: issueID, AuthorID: caller.ID, Body: body}
	if err := db.Create(comment).Error; err != nil {
		return nil, apperr.Internal("failed to create comment", err)
	}

	if err := db.Preload("Author").First(comment, comment.ID).Error; err != nil {
		return nil, apperr.Internal("failed to reload comment", err)
	}

	return comment, nil
}

// List returns the comments of an issue, oldest first.
func (s *CommentService) List(ctx context.Context, issueID uint) ([]models.Comment, error) {
	if issueID == 0 {
		return nil, apperr.Validation("issueId is required")
	}

	comments := []models.Comment{}

	if err := s.db.WithContext(ctx).
		Preload("Author").
		Where("issue_id = ?", issueID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, apperr.Internal("failed to retrieve comments", err)
	}

	return comments, nil
}

func (s *CommentService) Update(ctx context.Context, caller auth.Identity, id uint, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if id == 0 || body == "" {
		return nil, apperr.Validation("id and body are required")
	}

	db := s.db.WithContext(ctx)

	comment, err := s.owned(db, caller, id)
	if err != nil {
		return nil, err
	}

	if err := db.Model(comment).Update("body", body).Error; err != nil {
		return nil, apperr.Internal("failed to update comment", err)
	}

	if err := db.Preload("Author").First(comment, comment.ID).Error; err != nil {
		return nil, apperr.Internal("failed to reload comment", err)
	}

	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, caller auth.Identity, id uint) error {
	if id == 0 {
		return apperr.Validation("id is required")
	}

	db := s.db.WithContext(ctx)

	comment, err := s.owned(db, caller, id)
	if err != nil {
		return err
	}

	if err := db.Delete(comment).Error; err != nil {
		return apperr.Internal("failed to delete comment", err)
	}

	return nil
}

// owned loads a comment the caller is allowed to change.
func (s *CommentService) owned(db *gorm.DB, caller auth.Identity, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := db.First(&comment, id).Error; err != nil {
		return nil, lookupErr(err, "comment")
	}

	if !caller.IsAdmin() && comment.AuthorID != caller.ID {
		return nil, ErrNotCommentAuthor
	}

	return &comment, nil
}
