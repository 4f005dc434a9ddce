package models

import "time"

// Member roles.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Organization is the tenant boundary. Every project, member and setting
// hangs off exactly one organization.
type Organization struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:128;not null"`
	OwnerID   string `gorm:"size:36;not null;index"`
	CreatedAt time.Time

	Members  []OrganizationMember  `gorm:"foreignKey:OrganizationID"`
	Settings *OrganizationSettings `gorm:"foreignKey:OrganizationID"`
	Projects []Project             `gorm:"foreignKey:OrganizationID"`
}

// OrganizationMember links a user to an organization with a role.
type OrganizationMember struct {
	ID             string `gorm:"primaryKey;size:36"`
	OrganizationID string `gorm:"size:36;not null;uniqueIndex:idx_org_user"`
	UserID         string `gorm:"size:36;not null;uniqueIndex:idx_org_user"`
	Role           string `gorm:"size:16;not null;default:member"`
	CreatedAt      time.Time

	Organization Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	User         User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// OrganizationSettings holds per-tenant estimation defaults. HourlyRate is
// the effective rate used for timeline totals and proposal context.
type OrganizationSettings struct {
	ID             string  `gorm:"primaryKey;size:36"`
	OrganizationID string  `gorm:"size:36;not null;uniqueIndex"`
	HourlyRate     float64 `gorm:"default:150"`
	HoursPerWeek   float64 `gorm:"default:40"`
	TimelinePrompt string  `gorm:"type:text"` // extra instructions appended to timeline generation
	FormPrompt     string  `gorm:"type:text"` // extra instructions appended to form generation
	UpdatedAt      time.Time

	Organization Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
}
