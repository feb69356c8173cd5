package models

type Project struct {
	BaseModel

	Name        string `gorm:"not null" json:"name"`
	Key         string `gorm:"size:32;uniqueIndex;not null" json:"key"`
	Description string `json:"description"`
	OwnerID     uint   `gorm:"not null;index" json:"ownerId"`

	DiscordWebhook string `json:"discordWebhook,omitempty"`
	SlackWebhook   string `json:"slackWebhook,omitempty"`

	// Relationships. Children are removed explicitly by the cascade service,
	// never by the database.
	Owner   *User    `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"owner,omitempty"`
	Sprints []Sprint `gorm:"foreignKey:ProjectID" json:"sprints,omitempty"`
	Issues  []Issue  `gorm:"foreignKey:ProjectID" json:"issues,omitempty"`
}
