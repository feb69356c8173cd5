package models

import "time"

// BaseModel replaces gorm.Model for entities that are hard-deleted and
// serialized directly in API responses.
type BaseModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
