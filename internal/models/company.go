package models

type Company struct {
	BaseModel

	Name    string `gorm:"not null" json:"name"`
	LogoURL string `json:"logoUrl"`

	// Relationships
	Departments []Department `gorm:"foreignKey:CompanyID" json:"departments,omitempty"`
}
