package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/lanternworks/scopeline/internal/models"
	"gorm.io/gorm"
)

// Digester builds and sends the daily summary of change orders still
// awaiting review, one notice per organization.
type Digester struct {
	db     *gorm.DB
	sender Sender
}

// NewDigester creates a Digester.
func NewDigester(db *gorm.DB, sender Sender) (*Digester, error) {
	if db == nil {
		return nil, fmt.Errorf("notify: digester: db is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("notify: digester: sender is required")
	}
	return &Digester{db: db, sender: sender}, nil
}

// pendingItem is one row of the digest query.
type pendingItem struct {
	OrganizationID string
	ProjectName    string
	ClientEmail    string
	Summary        string
}

// Run sends one digest notice per organization that has pending change
// orders. Organizations with nothing pending get no mail. Intended to be
// invoked from the scheduler; failures for one organization do not stop
// the others.
func (d *Digester) Run(ctx context.Context) error {
	var items []pendingItem
	err := d.db.Model(&models.ChangeOrder{}).
		Select("projects.organization_id AS organization_id, projects.name AS project_name, change_orders.client_email AS client_email, proposals.summary AS summary").
		Joins("JOIN projects ON projects.id = change_orders.project_id").
		Joins("JOIN proposals ON proposals.id = change_orders.proposal_id").
		Where("change_orders.status = ?", models.ChangeOrderPending).
		Order("projects.organization_id, change_orders.created_at").
		Scan(&items).Error
	if err != nil {
		return fmt.Errorf("notify: digest query: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	byOrg := make(map[string][]pendingItem)
	for _, item := range items {
		byOrg[item.OrganizationID] = append(byOrg[item.OrganizationID], item)
	}

	for orgID, orgItems := range byOrg {
		emails, err := d.ownerEmails(orgID)
		if err != nil {
			log.Printf("notify: digest for org %s: %v", orgID, err)
			continue
		}
		if len(emails) == 0 {
			continue
		}
		d.sender.Notify(ctx, buildDigestNotice(orgItems, emails))
	}
	return nil
}

func (d *Digester) ownerEmails(orgID string) ([]string, error) {
	var owners []models.User
	err := d.db.Model(&models.User{}).
		Joins("JOIN organization_members ON organization_members.user_id = users.id").
		Where("organization_members.organization_id = ? AND organization_members.role = ?", orgID, models.RoleOwner).
		Find(&owners).Error
	if err != nil {
		return nil, fmt.Errorf("load owners: %w", err)
	}
	emails := make([]string, 0, len(owners))
	for _, o := range owners {
		if o.Email != "" {
			emails = append(emails, o.Email)
		}
	}
	return emails, nil
}

func buildDigestNotice(items []pendingItem, emails []string) Notice {
	noun := "change orders"
	if len(items) == 1 {
		noun = "change order"
	}

	var text strings.Builder
	fmt.Fprintf(&text, "You have %d %s awaiting review:\n\n", len(items), noun)
	for _, item := range items {
		fmt.Fprintf(&text, "- %s: %s (from %s)\n", item.ProjectName, item.Summary, item.ClientEmail)
	}
	text.WriteString("\nReview them in your dashboard.\n")

	var html strings.Builder
	fmt.Fprintf(&html, "<h2>Pending Change Orders</h2><p>You have %d %s awaiting review:</p><ul>", len(items), noun)
	for _, item := range items {
		fmt.Fprintf(&html, "<li><strong>%s</strong>: %s <em>(from %s)</em></li>", item.ProjectName, item.Summary, item.ClientEmail)
	}
	html.WriteString("</ul><p>Review them in your dashboard.</p>")

	return Notice{
		Subject: fmt.Sprintf("Daily Digest: %d pending %s", len(items), noun),
		Body:    text.String(),
		HTML:    html.String(),
		Emails:  emails,
		Fields: []Field{
			{Name: "Pending", Value: fmt.Sprintf("%d", len(items)), Short: true},
		},
	}
}
