package models

import "time"

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatSession is the negotiation conversation for one shared timeline.
// The unique index on ShareToken enforces at most one session per token;
// GetOrCreateSession relies on it to stay idempotent under races.
type ChatSession struct {
	ID          string  `gorm:"primaryKey;size:36"`
	ShareToken  string  `gorm:"size:64;not null;uniqueIndex"`
	ProjectID   string  `gorm:"size:36;not null;index"`
	TimelineID  string  `gorm:"size:36;not null;index"`
	ClientEmail *string `gorm:"size:256"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Project  Project         `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Timeline ProjectTimeline `gorm:"foreignKey:TimelineID;constraint:OnDelete:CASCADE"`
	Messages []ChatMessage   `gorm:"foreignKey:SessionID"`
}

// ChatMessage is one turn in a session transcript. Append-only; ordered by
// CreatedAt with ID as tiebreaker.
type ChatMessage struct {
	ID        string    `gorm:"primaryKey;size:36"`
	SessionID string    `gorm:"size:36;not null;index"`
	Role      string    `gorm:"size:16;not null"`
	Content   string    `gorm:"type:mediumtext;not null"`
	CreatedAt time.Time `gorm:"index"`

	Session ChatSession `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}
