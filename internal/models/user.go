package models

import "time"

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleUser   Role = "USER"
	RoleRehber Role = "REHBER"
	RoleIsci   Role = "ISCI"
)

// AllRoles is the allow-list for routes open to any authenticated caller.
var AllRoles = []Role{RoleAdmin, RoleUser, RoleRehber, RoleIsci}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleRehber, RoleIsci:
		return true
	}
	return false
}

type User struct {
	BaseModel

	Name          string     `gorm:"not null" json:"name"`
	Email         string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone         string     `json:"phone"`
	PasswordHash  string     `gorm:"not null" json:"-"`
	Role          Role       `gorm:"size:16;not null;index" json:"role"`
	DepartmentID  *uint      `gorm:"index" json:"departmentId"`
	RehberGroupID *uint      `gorm:"index" json:"rehberGroupId"`
	RehberID      *uint      `gorm:"index" json:"rehberId"` // supervisor, must have RoleRehber
	LastLogin     *time.Time `json:"lastLogin"`

	// Relationships
	Department  *Department  `gorm:"foreignKey:DepartmentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"department,omitempty"`
	RehberGroup *RehberGroup `gorm:"foreignKey:RehberGroupID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"rehberGroup,omitempty"`
	Rehber      *User        `gorm:"foreignKey:RehberID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"rehber,omitempty"`
}
