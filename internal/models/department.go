package models

type Department struct {
	BaseModel

	Name      string `gorm:"not null" json:"name"`
	CompanyID uint   `gorm:"not null;index" json:"companyId"`

	// Relationships
	Company      *Company      `gorm:"foreignKey:CompanyID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"company,omitempty"`
	RehberGroups []RehberGroup `gorm:"foreignKey:DepartmentID" json:"rehberGroups,omitempty"`
}
