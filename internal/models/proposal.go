package models

import "time"

// Proposal status values. The negotiation core only ever writes draft;
// approved/rejected are set by the change-order approval path.
const (
	ProposalDraft      = "draft"
	ProposalActive     = "active"
	ProposalSuperseded = "superseded"
	ProposalApproved   = "approved"
	ProposalRejected   = "rejected"
)

// Proposal is an LLM-derived scope-change delta against a base timeline.
// Deltas are additive: proposed total = base timeline total + delta. They
// are stored as decimal strings to avoid binary-float drift on money.
type Proposal struct {
	ID             string `gorm:"primaryKey;size:36"`
	SessionID      string `gorm:"size:36;not null;index"`
	BaseTimelineID string `gorm:"size:36;not null;index"`
	PayloadJSON    string `gorm:"type:mediumtext;not null"`
	Summary        string `gorm:"size:512;not null"`
	DeltaCost      string `gorm:"size:32;not null"`
	DeltaWeeks     string `gorm:"size:32;not null"`
	Status         string `gorm:"size:16;default:draft;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Session      ChatSession     `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
	BaseTimeline ProjectTimeline `gorm:"foreignKey:BaseTimelineID;constraint:OnDelete:CASCADE"`
}
