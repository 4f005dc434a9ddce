// Package negotiation implements the timeline scope-change negotiation
// engine: chat sessions keyed by share token, LLM-driven proposal
// extraction, and the change-order flow.
package negotiation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lanternworks/scopeline/internal/llm"
	"github.com/lanternworks/scopeline/internal/models"
	"github.com/lanternworks/scopeline/internal/notify"
	"gorm.io/gorm"
)

// Message length bounds for a single chat turn.
const (
	MinMessageLen = 1
	MaxMessageLen = 5000
)

// DefaultHistoryLimit is how many recent messages form the model context.
const DefaultHistoryLimit = 20

// Service runs negotiation chat turns and the change-order flow.
type Service struct {
	db           *gorm.DB
	completer    llm.Completer
	notifier     notify.Sender
	historyLimit int
}

// ServiceOpts holds parameters for creating a Service.
type ServiceOpts struct {
	DB           *gorm.DB
	Completer    llm.Completer
	Notifier     notify.Sender // optional; nil disables change-order notifications
	HistoryLimit int           // defaults to DefaultHistoryLimit
}

// NewService creates a negotiation Service.
func NewService(opts ServiceOpts) (*Service, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("negotiation: db is required")
	}
	if opts.Completer == nil {
		return nil, fmt.Errorf("negotiation: completer is required")
	}
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Service{
		db:           opts.DB,
		completer:    opts.Completer,
		notifier:     opts.Notifier,
		historyLimit: limit,
	}, nil
}

// TurnResult is the outcome of one chat turn.
type TurnResult struct {
	SessionID     string
	AssistantText string
	Proposal      *ProposalSummary // nil when the turn produced no proposal
}

// Converse runs one negotiation chat turn: persist the user message, call
// the completion service with the rolling context window, persist the
// assistant reply, and best-effort extract a scope-change proposal.
//
// The transcript is always fully persisted regardless of extraction
// outcome. Proposal creation never fails the turn; a malformed or absent
// structured payload simply yields a nil Proposal.
func (s *Service) Converse(ctx context.Context, shareToken, message, clientEmail string) (*TurnResult, error) {
	if n := utf8.RuneCountInString(message); n < MinMessageLen || n > MaxMessageLen {
		return nil, validationErrorf("message must be %d-%d characters, got %d", MinMessageLen, MaxMessageLen, n)
	}

	timeline, err := ResolveSharedTimeline(s.db, shareToken)
	if err != nil {
		return nil, err
	}
	session, err := sessionForTimeline(s.db, timeline, shareToken, clientEmail)
	if err != nil {
		return nil, err
	}

	// The user turn is durable before the completion call is issued, so a
	// provider failure never loses the client's message.
	userMsg := models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      models.RoleUser,
		Content:   message,
	}
	if err := s.db.Create(&userMsg).Error; err != nil {
		return nil, fmt.Errorf("negotiation: persist user message: %w", err)
	}

	history, err := s.contextWindow(session.ID, message)
	if err != nil {
		return nil, err
	}

	system, err := s.buildSystemPrompt(session, timeline)
	if err != nil {
		return nil, err
	}

	assistantText, err := s.completer.Complete(ctx, system, history)
	if err != nil {
		return nil, fmt.Errorf("negotiation: completion: %w", err)
	}

	assistantMsg := models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      models.RoleAssistant,
		Content:   assistantText,
	}
	if err := s.db.Create(&assistantMsg).Error; err != nil {
		return nil, fmt.Errorf("negotiation: persist assistant message: %w", err)
	}

	result := &TurnResult{
		SessionID:     session.ID,
		AssistantText: assistantText,
	}

	if sc := ExtractScopeChange(assistantText); sc != nil {
		proposal, err := s.createProposal(session, timeline, sc)
		if err != nil {
			// Best-effort: the chat turn already succeeded.
			log.Printf("negotiation: drop proposal for session %s: %v", session.ID, err)
		} else {
			result.Proposal = proposal
		}
	}

	return result, nil
}

// contextWindow loads the most recent messages oldest-first and normalizes
// them for the provider: the window must open with a user turn and close
// with the current message.
func (s *Service) contextWindow(sessionID, current string) ([]llm.Message, error) {
	var rows []models.ChatMessage
	err := s.db.Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		Limit(s.historyLimit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("negotiation: load history: %w", err)
	}

	// Stored newest-first; reverse to chronological order.
	msgs := make([]llm.Message, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Role != models.RoleUser && rows[i].Role != models.RoleAssistant {
			continue
		}
		msgs = append(msgs, llm.Message{Role: rows[i].Role, Content: rows[i].Content})
	}

	// The provider requires the first turn to be a user turn.
	for len(msgs) > 0 && msgs[0].Role == llm.RoleAssistant {
		msgs = msgs[1:]
	}
	if len(msgs) == 0 || msgs[len(msgs)-1].Role != llm.RoleUser {
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: current})
	}
	return msgs, nil
}

func (s *Service) buildSystemPrompt(session *models.ChatSession, timeline *models.ProjectTimeline) (string, error) {
	var project models.Project
	if err := s.db.First(&project, "id = ?", session.ProjectID).Error; err != nil {
		return "", fmt.Errorf("negotiation: load project: %w", err)
	}

	hourlyRate := 150.0
	var settings models.OrganizationSettings
	if err := s.db.Where("organization_id = ?", project.OrganizationID).First(&settings).Error; err == nil {
		hourlyRate = settings.HourlyRate
	}

	budget := "Not specified"
	if project.Budget > 0 {
		budget = "$" + thousands(project.Budget)
	}

	return renderSystemPrompt(systemPromptParams{
		ProjectName:    project.Name,
		ProjectType:    project.ProjectType,
		Budget:         budget,
		EstimatedWeeks: project.EstimatedWeeks,
		HourlyRate:     hourlyRate,
		TimelineJSON:   timeline.TimelineData,
	})
}

// createProposal persists a validated scope change as a draft proposal.
func (s *Service) createProposal(session *models.ChatSession, timeline *models.ProjectTimeline, sc *ScopeChange) (*ProposalSummary, error) {
	payload, err := json.Marshal(sc)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	row := models.Proposal{
		ID:             uuid.NewString(),
		SessionID:      session.ID,
		BaseTimelineID: timeline.ID,
		PayloadJSON:    string(payload),
		Summary:        sc.Summary,
		DeltaCost:      strconv.FormatFloat(sc.DeltaCost, 'f', -1, 64),
		DeltaWeeks:     strconv.FormatFloat(sc.DeltaWeeks, 'f', -1, 64),
		Status:         models.ProposalDraft,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("insert proposal: %w", err)
	}

	return &ProposalSummary{
		ID:         row.ID,
		Summary:    row.Summary,
		DeltaCost:  sc.DeltaCost,
		DeltaWeeks: sc.DeltaWeeks,
		Status:     row.Status,
		Payload:    *sc,
		CreatedAt:  row.CreatedAt,
	}, nil
}
