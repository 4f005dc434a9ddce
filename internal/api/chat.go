package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lanternworks/scopeline/internal/models"
	"github.com/lanternworks/scopeline/internal/negotiation"
)

// handleChatHistory returns the session transcript and proposals for a
// shared timeline, messages oldest-first.
func handleChatHistory(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := negotiation.GetOrCreateSession(deps.DB, c.Param("token"), "")
		if err != nil {
			writeError(c, err)
			return
		}

		var rows []models.ChatMessage
		err = deps.DB.Where("session_id = ?", session.ID).
			Order("created_at ASC, id ASC").
			Find(&rows).Error
		if err != nil {
			writeError(c, err)
			return
		}
		messages := make([]gin.H, 0, len(rows))
		for _, row := range rows {
			messages = append(messages, gin.H{
				"id":        row.ID,
				"role":      row.Role,
				"content":   row.Content,
				"createdAt": row.CreatedAt,
			})
		}

		proposals, err := deps.Negotiator.ListProposals(session.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		proposalsOut := make([]gin.H, 0, len(proposals))
		for i := range proposals {
			proposalsOut = append(proposalsOut, proposalJSON(&proposals[i]))
		}

		clientEmail := ""
		if session.ClientEmail != nil {
			clientEmail = *session.ClientEmail
		}
		c.JSON(http.StatusOK, gin.H{
			"sessionId": session.ID,
			"session":   gin.H{"clientEmail": clientEmail},
			"messages":  messages,
			"proposals": proposalsOut,
		})
	}
}

type chatRequest struct {
	Message     string `json:"message"`
	ClientEmail string `json:"clientEmail"`
}

// handleChat runs one negotiation turn.
func handleChat(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		result, err := deps.Negotiator.Converse(c.Request.Context(), c.Param("token"), req.Message, req.ClientEmail)
		if err != nil {
			writeError(c, err)
			return
		}
		resp := gin.H{
			"sessionId": result.SessionID,
			"message":   result.AssistantText,
			"proposal":  nil,
		}
		if result.Proposal != nil {
			resp["proposal"] = proposalJSON(result.Proposal)
		}
		c.JSON(http.StatusOK, resp)
	}
}

func proposalJSON(p *negotiation.ProposalSummary) gin.H {
	return gin.H{
		"id":         p.ID,
		"summary":    p.Summary,
		"deltaCost":  p.DeltaCost,
		"deltaWeeks": p.DeltaWeeks,
		"status":     p.Status,
		"payload":    p.Payload,
		"createdAt":  p.CreatedAt,
	}
}
