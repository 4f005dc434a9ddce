package negotiation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/lanternworks/scopeline/internal/models"
	"gorm.io/gorm"
)

// ProposalSummary is the API-facing view of a proposal with deltas decoded
// back to numbers.
type ProposalSummary struct {
	ID         string
	Summary    string
	DeltaCost  float64
	DeltaWeeks float64
	Status     string
	Payload    ScopeChange
	CreatedAt  time.Time
}

// Comparison holds baseline-vs-proposed totals for one proposal. Proposed
// values are always base + delta, never independently recomputed.
type Comparison struct {
	BaseCost      float64
	BaseWeeks     float64
	DeltaCost     float64
	DeltaWeeks    float64
	ProposedCost  float64
	ProposedWeeks float64
}

// ListProposals returns a session's proposals newest-first.
func (s *Service) ListProposals(sessionID string) ([]ProposalSummary, error) {
	var rows []models.Proposal
	err := s.db.Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("negotiation: list proposals: %w", err)
	}

	summaries := make([]ProposalSummary, 0, len(rows))
	for i := range rows {
		summary, err := summarize(&rows[i])
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// GetProposal loads one proposal scoped to its session.
func (s *Service) GetProposal(sessionID, proposalID string) (*ProposalSummary, error) {
	var row models.Proposal
	err := s.db.Where("id = ? AND session_id = ?", proposalID, sessionID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("negotiation: load proposal: %w", err)
	}
	return summarize(&row)
}

// Compare computes the baseline-vs-proposed totals for a proposal against
// its base timeline's stored aggregates.
func (s *Service) Compare(proposalID string) (*Comparison, error) {
	var row models.Proposal
	err := s.db.First(&row, "id = ?", proposalID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("negotiation: load proposal: %w", err)
	}

	var base models.ProjectTimeline
	if err := s.db.First(&base, "id = ?", row.BaseTimelineID).Error; err != nil {
		return nil, fmt.Errorf("negotiation: load base timeline: %w", err)
	}

	deltaCost, deltaWeeks, err := parseDeltas(&row)
	if err != nil {
		return nil, err
	}

	return &Comparison{
		BaseCost:      base.TotalCost,
		BaseWeeks:     base.TotalWeeks,
		DeltaCost:     deltaCost,
		DeltaWeeks:    deltaWeeks,
		ProposedCost:  base.TotalCost + deltaCost,
		ProposedWeeks: base.TotalWeeks + deltaWeeks,
	}, nil
}

func summarize(row *models.Proposal) (*ProposalSummary, error) {
	deltaCost, deltaWeeks, err := parseDeltas(row)
	if err != nil {
		return nil, err
	}

	var payload ScopeChange
	if err := json.Unmarshal([]byte(row.PayloadJSON), &payload); err != nil {
		return nil, fmt.Errorf("negotiation: decode proposal %s payload: %w", row.ID, err)
	}

	return &ProposalSummary{
		ID:         row.ID,
		Summary:    row.Summary,
		DeltaCost:  deltaCost,
		DeltaWeeks: deltaWeeks,
		Status:     row.Status,
		Payload:    payload,
		CreatedAt:  row.CreatedAt,
	}, nil
}

func parseDeltas(row *models.Proposal) (float64, float64, error) {
	deltaCost, err := strconv.ParseFloat(row.DeltaCost, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("negotiation: proposal %s has invalid delta cost %q", row.ID, row.DeltaCost)
	}
	deltaWeeks, err := strconv.ParseFloat(row.DeltaWeeks, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("negotiation: proposal %s has invalid delta weeks %q", row.ID, row.DeltaWeeks)
	}
	return deltaCost, deltaWeeks, nil
}
