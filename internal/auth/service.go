// Package auth implements account signup, bearer-token login sessions and
// organization membership checks.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lanternworks/scopeline/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for unknown emails and wrong passwords
// alike so login failures do not reveal which accounts exist.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// ErrSessionExpired is returned when a presented token exists but is past
// its expiry.
var ErrSessionExpired = errors.New("auth: session expired")

// MinPasswordLen is the minimum accepted password length.
const MinPasswordLen = 8

// Service manages users, sessions and memberships.
type Service struct {
	db         *gorm.DB
	sessionTTL time.Duration
}

// ServiceOpts holds parameters for creating a Service.
type ServiceOpts struct {
	DB         *gorm.DB
	SessionTTL time.Duration // defaults to 7 days
}

// NewService creates an auth Service.
func NewService(opts ServiceOpts) (*Service, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("auth: db is required")
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{db: opts.DB, sessionTTL: ttl}, nil
}

// SignupOpts holds the inputs for creating an account.
type SignupOpts struct {
	Email    string
	Name     string
	Password string
	OrgName  string
}

// Signup creates a user, their organization, the owner membership and the
// default settings row in one transaction.
func (s *Service) Signup(opts SignupOpts) (*models.User, *models.Organization, error) {
	email := strings.ToLower(strings.TrimSpace(opts.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, fmt.Errorf("auth: email %q is invalid", opts.Email)
	}
	if len(opts.Password) < MinPasswordLen {
		return nil, nil, fmt.Errorf("auth: password must be at least %d characters", MinPasswordLen)
	}
	orgName := strings.TrimSpace(opts.OrgName)
	if orgName == "" {
		orgName = opts.Name
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("auth: hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(opts.Name),
		PasswordHash: string(hash),
	}
	org := models.Organization{
		ID:      uuid.NewString(),
		Name:    orgName,
		OwnerID: user.ID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if err := tx.Create(&org).Error; err != nil {
			return fmt.Errorf("create organization: %w", err)
		}
		member := models.OrganizationMember{
			ID:             uuid.NewString(),
			OrganizationID: org.ID,
			UserID:         user.ID,
			Role:           models.RoleOwner,
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("create membership: %w", err)
		}
		settings := models.OrganizationSettings{
			ID:             uuid.NewString(),
			OrganizationID: org.ID,
			HourlyRate:     150,
			HoursPerWeek:   40,
		}
		if err := tx.Create(&settings).Error; err != nil {
			return fmt.Errorf("create settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("auth: signup: %w", err)
	}
	return &user, &org, nil
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(email, password, ip, userAgent string) (*models.AuthSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.First(&user, "email = ?", email).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("auth: load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := NewSessionToken()
	if err != nil {
		return nil, err
	}
	session := models.AuthSession{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("auth: create session: %w", err)
	}
	session.User = user
	return &session, nil
}

// Logout deletes the session for the given token. Unknown tokens are a
// no-op.
func (s *Service) Logout(token string) error {
	if err := s.db.Where("token = ?", token).Delete(&models.AuthSession{}).Error; err != nil {
		return fmt.Errorf("auth: logout: %w", err)
	}
	return nil
}

// ResolveToken returns the user for a valid session token.
func (s *Service) ResolveToken(token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidCredentials
	}
	var session models.AuthSession
	err := s.db.First(&session, "token = ?", token).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("auth: load session: %w", err)
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, ErrSessionExpired
	}
	var user models.User
	if err := s.db.First(&user, "id = ?", session.UserID).Error; err != nil {
		return nil, fmt.Errorf("auth: load user: %w", err)
	}
	return &user, nil
}

// Membership returns the user's membership in the organization, or
// gorm.ErrRecordNotFound wrapped when none exists.
func (s *Service) Membership(orgID, userID string) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	err := s.db.Where("organization_id = ? AND user_id = ?", orgID, userID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// IsMember reports whether the user belongs to the organization.
func (s *Service) IsMember(orgID, userID string) bool {
	_, err := s.Membership(orgID, userID)
	return err == nil
}

// IsOwner reports whether the user is an owner of the organization.
func (s *Service) IsOwner(orgID, userID string) bool {
	member, err := s.Membership(orgID, userID)
	return err == nil && member.Role == models.RoleOwner
}

// PruneExpiredSessions deletes sessions past their expiry. Run from the
// scheduler.
func (s *Service) PruneExpiredSessions() error {
	if err := s.db.Where("expires_at < ?", time.Now()).Delete(&models.AuthSession{}).Error; err != nil {
		return fmt.Errorf("auth: prune sessions: %w", err)
	}
	return nil
}
