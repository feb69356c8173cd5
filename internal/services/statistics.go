package services

import (
	"context"
	"time"

	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/auth"
	"github.com/taskhub-dev/taskhub/internal/models"
	"gorm.io/gorm"
)

type Statistics struct {
	Total        int64 `json:"total"`
	Todo         int64 `json:"todo"`
	InProgress   int64 `json:"inProgress"`
	Done         int64 `json:"done"`
	TodayCreated int64 `json:"todayCreated"`
	WeekCreated  int64 `json:"weekCreated"`
	WeekDone     int64 `json:"weekDone"`
}

type StatisticsService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStatisticsService(db *gorm.DB, now func() time.Time) *StatisticsService {
	return &StatisticsService{db: db, now: now}
}

// Summary counts the issues visible to caller. Non-admins see the issues
// they reported or are assigned to, the same scope as issue listing.
func (s *StatisticsService) Summary(ctx context.Context, caller auth.Identity) (*Statistics, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)

	base := func() *gorm.DB {
		return visibleTo(s.db.WithContext(ctx).Model(&models.Issue{}), caller)
	}

	stats := &Statistics{}

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&stats.Total, base()},
		{&stats.Todo, base().Where("status = ?", models.StatusTodo)},
		{&stats.InProgress, base().Where("status = ?", models.StatusInProgress)},
		{&stats.Done, base().Where("status = ?", models.StatusDone)},
		{&stats.TodayCreated, base().Where("created_at >= ?", midnight)},
		{&stats.WeekCreated, base().Where("created_at >= ?", weekAgo)},
		{&stats.WeekDone, base().Where("status = ? AND updated_at >= ?", models.StatusDone, weekAgo)},
	}

	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, apperr.Internal("failed to compute statistics", err)
		}
	}

	return stats, nil
}
