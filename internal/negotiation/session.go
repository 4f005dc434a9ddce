package negotiation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lanternworks/scopeline/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResolveSharedTimeline loads a timeline by its public share token.
// Returns ErrNotFound when no timeline carries the token; a nil share
// token column can never match because tokens are only minted on share.
func ResolveSharedTimeline(db *gorm.DB, shareToken string) (*models.ProjectTimeline, error) {
	if shareToken == "" {
		return nil, ErrNotFound
	}
	var timeline models.ProjectTimeline
	err := db.Where("share_token = ?", shareToken).First(&timeline).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("negotiation: resolve timeline: %w", err)
	}
	return &timeline, nil
}

// GetOrCreateSession finds the chat session for a share token, creating it
// on first contact. Idempotent: the unique index on share_token guarantees
// at most one session per token even under concurrent first messages — a
// conflicting insert falls through to re-reading the winner's row.
//
// A non-empty clientEmail fills the session's email only if none is stored
// yet; it never overwrites an existing value.
func GetOrCreateSession(db *gorm.DB, shareToken, clientEmail string) (*models.ChatSession, error) {
	timeline, err := ResolveSharedTimeline(db, shareToken)
	if err != nil {
		return nil, err
	}
	return sessionForTimeline(db, timeline, shareToken, clientEmail)
}

// sessionForTimeline is GetOrCreateSession with the timeline already
// resolved, used by Converse to avoid a second lookup.
func sessionForTimeline(db *gorm.DB, timeline *models.ProjectTimeline, shareToken, clientEmail string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := db.Where("share_token = ?", shareToken).First(&session).Error
	if err == gorm.ErrRecordNotFound {
		session = models.ChatSession{
			ID:         uuid.NewString(),
			ShareToken: shareToken,
			ProjectID:  timeline.ProjectID,
			TimelineID: timeline.ID,
		}
		if clientEmail != "" {
			session.ClientEmail = &clientEmail
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&session)
		if res.Error != nil {
			return nil, fmt.Errorf("negotiation: create session: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost the race; the other request's session is canonical.
			if err := db.Where("share_token = ?", shareToken).First(&session).Error; err != nil {
				return nil, fmt.Errorf("negotiation: reload session: %w", err)
			}
		}
		return &session, nil
	}
	if err != nil {
		return nil, fmt.Errorf("negotiation: load session: %w", err)
	}

	if clientEmail != "" && session.ClientEmail == nil {
		if err := db.Model(&session).Update("client_email", clientEmail).Error; err != nil {
			return nil, fmt.Errorf("negotiation: update session email: %w", err)
		}
		session.ClientEmail = &clientEmail
	}
	return &session, nil
}
