package models

type Comment struct {
	BaseModel

	IssueID  uint   `gorm:"not null;index" json:"issueId"`
	AuthorID uint   `gorm:"not null;index" json:"authorId"`
	Body     string `gorm:"type:text;not null" json:"body"`

	// Relationships
	Issue  *Issue `gorm:"foreignKey:IssueID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Author *User  `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author,omitempty"`
}
