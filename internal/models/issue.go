package models

import "time"

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type IssueType string

const (
	IssueTypeTask  IssueType = "TASK"
	IssueTypeBug   IssueType = "BUG"
	IssueTypeStory IssueType = "STORY"
)

func (t IssueType) Valid() bool {
	switch t {
	case IssueTypeTask, IssueTypeBug, IssueTypeStory:
		return true
	}
	return false
}

type Issue struct {
	BaseModel

	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Priority    Priority   `gorm:"size:16;not null" json:"priority"`
	Status      Status     `gorm:"size:16;not null;index" json:"status"`
	Type        IssueType  `gorm:"size:16;not null" json:"type"`
	ProjectID   uint       `gorm:"not null;index" json:"projectId"`
	SprintID    *uint      `gorm:"index" json:"sprintId"`
	ReporterID  uint       `gorm:"not null;index" json:"reporterId"`
	AssigneeID  uint       `gorm:"not null;index" json:"assigneeId"` // falls back to ReporterID
	DueDate     *time.Time `json:"dueDate"`
	Attachment  string     `json:"attachment"`

	DueReminderSentAt *time.Time `gorm:"index" json:"-"`

	// Relationships
	Project  *Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"project,omitempty"`
	Sprint   *Sprint  `gorm:"foreignKey:SprintID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"sprint,omitempty"`
	Reporter *User    `gorm:"foreignKey:ReporterID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"reporter,omitempty"`
	Assignee *User    `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"assignee,omitempty"`
}

// Overdue reports whether the due date has passed at now.
func (i *Issue) Overdue(now time.Time) bool {
	return i.DueDate != nil && i.DueDate.Before(now)
}
