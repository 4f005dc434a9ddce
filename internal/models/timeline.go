package models

import "time"

// ProjectTimeline is the baseline plan proposals are deltas against.
// TimelineData is the full phase breakdown as JSON (see timeline.Data).
// The stored aggregate totals are the authoritative display values once
// persisted, even if the phase data would compute slightly differently.
type ProjectTimeline struct {
	ID           string  `gorm:"primaryKey;size:36"`
	ProjectID    string  `gorm:"size:36;not null;index"`
	TimelineData string  `gorm:"type:mediumtext;not null"`
	TotalWeeks   float64 `gorm:"not null"`
	TotalHours   float64 `gorm:"not null"`
	TotalCost    float64 `gorm:"not null"`
	ShareToken   *string `gorm:"size:64;uniqueIndex"`
	SharedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Project   Project        `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Sessions  []ChatSession  `gorm:"foreignKey:TimelineID"`
	Proposals []Proposal     `gorm:"foreignKey:BaseTimelineID"`
}
