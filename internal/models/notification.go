package models

type Notification struct {
	BaseModel

	UserID  uint   `gorm:"not null;index" json:"userId"`
	IssueID *uint  `gorm:"index" json:"issueId"`
	Message string `gorm:"not null" json:"message"`
	IsRead  bool   `gorm:"not null;index" json:"isRead"`

	// Relationships
	User  *User  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Issue *Issue `gorm:"foreignKey:IssueID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}
