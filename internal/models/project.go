package models

import "time"

// Project status values. A timeline may only be shared publicly once the
// project has reached StatusApproved.
const (
	ProjectDraft      = "draft"
	ProjectFormSent   = "form_sent"
	ProjectScoping    = "scoping"
	ProjectApproved   = "approved"
	ProjectInProgress = "in_progress"
	ProjectCompleted  = "completed"
)

// Project is a client engagement being scoped.
type Project struct {
	ID             string  `gorm:"primaryKey;size:36"`
	OrganizationID string  `gorm:"size:36;not null;index"`
	Name           string  `gorm:"size:256;not null"`
	ClientName     string  `gorm:"size:128"`
	ClientEmail    string  `gorm:"size:256"`
	ProjectType    string  `gorm:"size:32;default:web"` // saas, mobile, web, ecommerce, custom
	Brief          string  `gorm:"type:text"`
	Budget         float64 `gorm:"default:0"`
	EstimatedWeeks float64 `gorm:"default:0"`
	Status         string  `gorm:"size:16;default:draft;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Organization Organization      `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	Forms        []ProjectForm     `gorm:"foreignKey:ProjectID"`
	Timelines    []ProjectTimeline `gorm:"foreignKey:ProjectID"`
	ChangeOrders []ChangeOrder     `gorm:"foreignKey:ProjectID"`
}

// ProjectForm is an AI-generated intake questionnaire sent to the client.
// FormData holds the generated section/question schema as JSON; Responses
// holds the client's submitted answers keyed by question ID.
type ProjectForm struct {
	ID          string     `gorm:"primaryKey;size:36"`
	ProjectID   string     `gorm:"size:36;not null;index"`
	ShareToken  string     `gorm:"size:64;uniqueIndex"`
	FormData    string     `gorm:"type:mediumtext;not null"`
	Responses   string     `gorm:"type:mediumtext"`
	ClientEmail string     `gorm:"size:256"`
	SentAt      *time.Time
	SubmittedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Project Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}
