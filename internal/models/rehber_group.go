package models

// RehberGroup is a supervisor group inside a department.
type RehberGroup struct {
	BaseModel

	Name         string `gorm:"not null;uniqueIndex:idx_group_department" json:"name"`
	DepartmentID uint   `gorm:"not null;uniqueIndex:idx_group_department" json:"departmentId"`

	// Relationships
	Department *Department `gorm:"foreignKey:DepartmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"department,omitempty"`
}
