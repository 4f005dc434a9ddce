package negotiation

import (
	"context"
	"sync"
	"testing"
	"time"

	scopedb "github.com/lanternworks/scopeline/internal/db"
	"github.com/lanternworks/scopeline/internal/llm"
	"github.com/lanternworks/scopeline/internal/models"
	"github.com/lanternworks/scopeline/internal/notify"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens an in-memory SQLite DB with the full schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := scopedb.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

const testShareToken = "a1b2c3d4e5f60718293a4b5c6d7e8f90"

const testTimelineJSON = `{"phases":[{"id":"phase-1","name":"Build","duration_weeks":10,"tasks":["Build it"],"dependencies":[]}],"total_weeks":10,"total_hours":400,"total_cost":40000,"assumptions":[],"risks":[]}`

// seedSharedTimeline creates an org, owner, project and shared timeline.
// Returns the timeline's share token.
func seedSharedTimeline(t *testing.T, db *gorm.DB) string {
	t.Helper()
	owner := models.User{ID: "user-1", Email: "owner@studio.test", Name: "Ora Owner", PasswordHash: "x"}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	org := models.Organization{ID: "org-1", Name: "Studio", OwnerID: owner.ID}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("seed org: %v", err)
	}
	if err := db.Create(&models.OrganizationMember{
		ID: "mem-1", OrganizationID: org.ID, UserID: owner.ID, Role: models.RoleOwner,
	}).Error; err != nil {
		t.Fatalf("seed membership: %v", err)
	}
	if err := db.Create(&models.OrganizationSettings{
		ID: "set-1", OrganizationID: org.ID, HourlyRate: 100, HoursPerWeek: 40,
	}).Error; err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	project := models.Project{
		ID: "proj-1", OrganizationID: org.ID, Name: "Acme Site",
		ClientName: "Acme", ClientEmail: "client@acme.test",
		ProjectType: "web", Budget: 50000, EstimatedWeeks: 10,
		Status: models.ProjectApproved,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	token := testShareToken
	now := time.Now()
	timeline := models.ProjectTimeline{
		ID: "tl-1", ProjectID: project.ID,
		TimelineData: testTimelineJSON,
		TotalWeeks:   10, TotalHours: 400, TotalCost: 40000,
		ShareToken: &token, SharedAt: &now,
	}
	if err := db.Create(&timeline).Error; err != nil {
		t.Fatalf("seed timeline: %v", err)
	}
	return token
}

// fakeCompleter returns a canned reply and records what it was asked.
type fakeCompleter struct {
	reply      string
	err        error
	calls      int
	lastSystem string
	lastMsgs   []llm.Message
}

func (f *fakeCompleter) Complete(ctx context.Context, system string, messages []llm.Message) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastMsgs = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// captureSender records notices instead of delivering them. Safe for use
// from the detached notification goroutine.
type captureSender struct {
	mu      sync.Mutex
	notices []notify.Notice
}

func (c *captureSender) Notify(ctx context.Context, n notify.Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}

func (c *captureSender) snapshot() []notify.Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notify.Notice(nil), c.notices...)
}

// waitForNotices polls until n notices have arrived or the deadline hits.
func (c *captureSender) waitForNotices(t *testing.T, n int) []notify.Notice {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		notices := c.snapshot()
		if len(notices) >= n {
			return notices
		}
		if time.Now().After(deadline) {
			t.Fatalf("notices = %d, want %d", len(notices), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func newTestService(t *testing.T, db *gorm.DB, completer llm.Completer, sender notify.Sender) *Service {
	t.Helper()
	svc, err := NewService(ServiceOpts{DB: db, Completer: completer, Notifier: sender})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}
