package models

import "time"

// Change order status values.
const (
	ChangeOrderDraft    = "draft"
	ChangeOrderPending  = "pending_approval"
	ChangeOrderApproved = "approved"
	ChangeOrderRejected = "rejected"
)

// ChangeOrder is a client's formal request for approval of a proposal.
// The unique index on ProposalID enforces one change order per proposal.
// RequestedBy is nil for anonymous clients arriving via share token.
type ChangeOrder struct {
	ID          string  `gorm:"primaryKey;size:36"`
	ProjectID   string  `gorm:"size:36;not null;index"`
	ProposalID  string  `gorm:"size:36;not null;uniqueIndex"`
	RequestedBy *string `gorm:"size:36"`
	ClientEmail string  `gorm:"size:256;not null"`
	ClientNotes string  `gorm:"type:text"`
	Status      string  `gorm:"size:24;default:pending_approval;index"`
	ApprovedBy  *string `gorm:"size:36"`
	ResolvedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Project  Project  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Proposal Proposal `gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE"`
}
