package models

import "time"

// User is an organization-side account. Clients interacting through share
// tokens never have a User row.
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"size:256;not null;uniqueIndex"`
	Name         string `gorm:"size:128;not null"`
	PasswordHash string `gorm:"size:128;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Memberships []OrganizationMember `gorm:"foreignKey:UserID"`
}

// AuthSession is a bearer-token login session.
type AuthSession struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Token     string    `gorm:"size:64;not null;uniqueIndex"`
	UserID    string    `gorm:"size:36;not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	IPAddress string    `gorm:"size:64"`
	UserAgent string    `gorm:"size:256"`
	CreatedAt time.Time

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
