package negotiation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lanternworks/scopeline/internal/models"
	"github.com/lanternworks/scopeline/internal/notify"
	"gorm.io/gorm"
)

// notifyTimeout bounds the detached owner notification send so a stalled
// channel cannot pin the goroutine forever.
const notifyTimeout = 30 * time.Second

// ChangeOrderRequest holds the client-side inputs for raising a change
// order from a proposal.
type ChangeOrderRequest struct {
	ProposalID  string
	ClientEmail string
	ClientNotes string
	ShareToken  string
}

// RequestChangeOrder converts a proposal into a pending change order and
// notifies the organization's owners.
//
// The share token is the bearer credential: it must match the proposal's
// session or the request is rejected with ErrForbidden. At most one change
// order may exist per proposal (ErrConflict on repeat requests; the unique
// index closes the race the pre-check leaves open).
//
// The change order is durable before any notification is attempted, and
// the notice goes out on a detached goroutine so a slow channel never
// delays the response or surfaces a failure to the caller.
func (s *Service) RequestChangeOrder(ctx context.Context, req ChangeOrderRequest) (*models.ChangeOrder, error) {
	if !notify.ValidEmail(req.ClientEmail) {
		return nil, validationErrorf("clientEmail %q is not a valid email", req.ClientEmail)
	}

	var proposal models.Proposal
	err := s.db.First(&proposal, "id = ?", req.ProposalID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("negotiation: load proposal: %w", err)
	}

	var session models.ChatSession
	if err := s.db.First(&session, "id = ?", proposal.SessionID).Error; err != nil {
		return nil, fmt.Errorf("negotiation: load session: %w", err)
	}
	if session.ShareToken != req.ShareToken {
		return nil, ErrForbidden
	}

	var existing models.ChangeOrder
	err = s.db.Where("proposal_id = ?", req.ProposalID).First(&existing).Error
	if err == nil {
		return nil, ErrConflict
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("negotiation: check existing change order: %w", err)
	}

	order := models.ChangeOrder{
		ID:          uuid.NewString(),
		ProjectID:   session.ProjectID,
		ProposalID:  req.ProposalID,
		ClientEmail: req.ClientEmail,
		ClientNotes: req.ClientNotes,
		Status:      models.ChangeOrderPending,
	}
	if err := s.db.Create(&order).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("negotiation: create change order: %w", err)
	}

	go func() {
		nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		s.notifyOwners(nctx, &order, &proposal, &session)
	}()
	return &order, nil
}

// ResolveChangeOrder is the organization-side terminal transition: approve
// or reject a pending change order. The linked proposal moves to the
// matching status in the same transaction, which is the contract the read
// path relies on.
func (s *Service) ResolveChangeOrder(changeOrderID, approverID string, approve bool) (*models.ChangeOrder, error) {
	var order models.ChangeOrder
	err := s.db.First(&order, "id = ?", changeOrderID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("negotiation: load change order: %w", err)
	}
	if order.Status != models.ChangeOrderPending {
		return nil, ErrConflict
	}

	orderStatus := models.ChangeOrderApproved
	proposalStatus := models.ProposalApproved
	if !approve {
		orderStatus = models.ChangeOrderRejected
		proposalStatus = models.ProposalRejected
	}
	now := time.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ChangeOrder{}).
			Where("id = ? AND status = ?", changeOrderID, models.ChangeOrderPending).
			Updates(map[string]interface{}{
				"status":      orderStatus,
				"approved_by": approverID,
				"resolved_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return tx.Model(&models.Proposal{}).
			Where("id = ?", order.ProposalID).
			Update("status", proposalStatus).Error
	})
	if err == ErrConflict {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("negotiation: resolve change order: %w", err)
	}

	order.Status = orderStatus
	order.ApprovedBy = &approverID
	order.ResolvedAt = &now
	return &order, nil
}

// notifyOwners sends the change-order notice to every owner of the
// project's organization. Best-effort: any failure is logged and dropped.
func (s *Service) notifyOwners(ctx context.Context, order *models.ChangeOrder, proposal *models.Proposal, session *models.ChatSession) {
	if s.notifier == nil {
		return
	}

	var project models.Project
	if err := s.db.First(&project, "id = ?", session.ProjectID).Error; err != nil {
		log.Printf("negotiation: notify change order %s: load project: %v", order.ID, err)
		return
	}

	var owners []models.User
	err := s.db.Model(&models.User{}).
		Joins("JOIN organization_members ON organization_members.user_id = users.id").
		Where("organization_members.organization_id = ? AND organization_members.role = ?",
			project.OrganizationID, models.RoleOwner).
		Find(&owners).Error
	if err != nil {
		log.Printf("negotiation: notify change order %s: load owners: %v", order.ID, err)
		return
	}

	emails := make([]string, 0, len(owners))
	for _, owner := range owners {
		if owner.Email != "" {
			emails = append(emails, owner.Email)
		}
	}

	summary, err := summarize(proposal)
	if err != nil {
		log.Printf("negotiation: notify change order %s: %v", order.ID, err)
		return
	}

	s.notifier.Notify(ctx, buildChangeOrderNotice(&project, summary, order, emails))
}

// buildChangeOrderNotice formats the owner-facing notification.
func buildChangeOrderNotice(project *models.Project, proposal *ProposalSummary, order *models.ChangeOrder, emails []string) notify.Notice {
	cost := FormatCostDelta(proposal.DeltaCost)
	weeks := FormatWeeksDelta(proposal.DeltaWeeks)

	var text strings.Builder
	fmt.Fprintf(&text, "A client has requested a scope change for %s.\n\n", project.Name)
	fmt.Fprintf(&text, "Proposal Summary:\n%s\n\n", proposal.Summary)
	fmt.Fprintf(&text, "Impact:\n- Cost Change: %s\n- Timeline Change: %s\n\n", cost, weeks)
	if len(proposal.Payload.Changes) > 0 {
		text.WriteString("Proposed Changes:\n")
		for _, change := range proposal.Payload.Changes {
			fmt.Fprintf(&text, "- %s\n", change)
		}
		text.WriteString("\n")
	}
	if order.ClientNotes != "" {
		fmt.Fprintf(&text, "Client Notes:\n%s\n\n", order.ClientNotes)
	}
	fmt.Fprintf(&text, "Client Email: %s\n\n", order.ClientEmail)
	text.WriteString("Please review this change order request in your dashboard.\n")

	var html strings.Builder
	html.WriteString("<h2>New Change Order Request</h2>")
	fmt.Fprintf(&html, "<p>A client has requested a scope change for <strong>%s</strong>.</p>", project.Name)
	fmt.Fprintf(&html, "<h3>Proposal Summary</h3><p>%s</p>", proposal.Summary)
	fmt.Fprintf(&html, "<h3>Impact</h3><ul><li><strong>Cost Change:</strong> %s</li><li><strong>Timeline Change:</strong> %s</li></ul>", cost, weeks)
	if len(proposal.Payload.Changes) > 0 {
		html.WriteString("<h3>Proposed Changes</h3><ul>")
		for _, change := range proposal.Payload.Changes {
			fmt.Fprintf(&html, "<li>%s</li>", change)
		}
		html.WriteString("</ul>")
	}
	if order.ClientNotes != "" {
		fmt.Fprintf(&html, "<h3>Client Notes</h3><p>%s</p>", order.ClientNotes)
	}
	fmt.Fprintf(&html, "<p><strong>Client Email:</strong> %s</p>", order.ClientEmail)
	html.WriteString("<p>Please review this change order request in your dashboard.</p>")

	return notify.Notice{
		Subject: fmt.Sprintf("New Change Order Request: %s", project.Name),
		Body:    text.String(),
		HTML:    html.String(),
		Emails:  emails,
		Fields: []notify.Field{
			{Name: "Project", Value: project.Name, Short: true},
			{Name: "Cost Change", Value: cost, Short: true},
			{Name: "Timeline Change", Value: weeks, Short: true},
			{Name: "Client", Value: order.ClientEmail, Short: true},
		},
	}
}

// isUniqueViolation detects duplicate-key failures across the MySQL and
// SQLite drivers without importing either.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate entry") || strings.Contains(msg, "unique constraint")
}
