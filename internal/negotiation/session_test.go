package negotiation

import (
	"errors"
	"testing"

	"github.com/lanternworks/scopeline/internal/models"
)

func TestResolveSharedTimeline_UnknownToken(t *testing.T) {
	db := openTestDB(t)
	seedSharedTimeline(t, db)

	if _, err := ResolveSharedTimeline(db, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := ResolveSharedTimeline(db, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty token err = %v, want ErrNotFound", err)
	}
}

func TestGetOrCreateSession_Idempotent(t *testing.T) {
	db := openTestDB(t)
	token := seedSharedTimeline(t, db)

	first, err := GetOrCreateSession(db, token, "")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := GetOrCreateSession(db, token, "")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("session IDs differ: %s vs %s", first.ID, second.ID)
	}

	var count int64
	db.Model(&models.ChatSession{}).Where("share_token = ?", token).Count(&count)
	if count != 1 {
		t.Errorf("session count = %d, want 1", count)
	}
}

func TestGetOrCreateSession_EmailFillsOnceOnly(t *testing.T) {
	db := openTestDB(t)
	token := seedSharedTimeline(t, db)

	// Anonymous first contact.
	session, err := GetOrCreateSession(db, token, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.ClientEmail != nil {
		t.Fatalf("expected nil email, got %q", *session.ClientEmail)
	}

	// First supplied email sticks.
	session, err = GetOrCreateSession(db, token, "first@client.test")
	if err != nil {
		t.Fatalf("fill email: %v", err)
	}
	if session.ClientEmail == nil || *session.ClientEmail != "first@client.test" {
		t.Fatalf("email not filled: %v", session.ClientEmail)
	}

	// A later different email never overwrites.
	session, err = GetOrCreateSession(db, token, "second@client.test")
	if err != nil {
		t.Fatalf("second email: %v", err)
	}
	if session.ClientEmail == nil || *session.ClientEmail != "first@client.test" {
		t.Errorf("email overwritten: %v", session.ClientEmail)
	}
}
