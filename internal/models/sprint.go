package models

import "time"

type Sprint struct {
	BaseModel

	ProjectID uint      `gorm:"not null;index" json:"projectId"`
	Name      string    `gorm:"not null" json:"name"`
	StartDate time.Time `gorm:"not null" json:"startDate"`
	EndDate   time.Time `gorm:"not null" json:"endDate"`
	IsActive  bool      `gorm:"not null" json:"isActive"`

	// Relationships
	Project *Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"project,omitempty"`
	Issues  []Issue  `gorm:"foreignKey:SprintID" json:"issues,omitempty"`
}
