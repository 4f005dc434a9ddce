package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lanternworks/scopeline/internal/models"
	"github.com/lanternworks/scopeline/internal/negotiation"
	"gorm.io/gorm"
)

type changeOrderRequest struct {
	ProposalID  string `json:"proposalId"`
	ClientEmail string `json:"clientEmail"`
	ClientNotes string `json:"clientNotes"`
	ShareToken  string `json:"shareToken"`
}

// handleCreateChangeOrder is the public endpoint converting a proposal into
// a pending change order.
func handleCreateChangeOrder(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ProposalID == "" || req.ShareToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "proposalId and shareToken are required"})
			return
		}
		order, err := deps.Negotiator.RequestChangeOrder(c.Request.Context(), negotiation.ChangeOrderRequest{
			ProposalID:  req.ProposalID,
			ClientEmail: req.ClientEmail,
			ClientNotes: req.ClientNotes,
			ShareToken:  req.ShareToken,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"id":        order.ID,
			"status":    order.Status,
			"createdAt": order.CreatedAt,
			"message":   "Change order submitted for approval",
		})
	}
}

// handleListChangeOrders returns an organization's change orders with their
// proposal context, newest first.
func handleListChangeOrders(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("id")
		if !requireMember(c, deps, orgID) {
			return
		}
		type orderRow struct {
			models.ChangeOrder
			ProjectName string
			Summary     string
			DeltaCost   string
			DeltaWeeks  string
		}
		var rows []orderRow
		err := deps.DB.Model(&models.ChangeOrder{}).
			Select("change_orders.*, projects.name AS project_name, proposals.summary AS summary, proposals.delta_cost AS delta_cost, proposals.delta_weeks AS delta_weeks").
			Joins("JOIN projects ON projects.id = change_orders.project_id").
			Joins("JOIN proposals ON proposals.id = change_orders.proposal_id").
			Where("projects.organization_id = ?", orgID).
			Order("change_orders.created_at DESC").
			Scan(&rows).Error
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]gin.H, 0, len(rows))
		for _, row := range rows {
			out = append(out, gin.H{
				"id":          row.ID,
				"projectName": row.ProjectName,
				"proposalId":  row.ProposalID,
				"summary":     row.Summary,
				"deltaCost":   row.DeltaCost,
				"deltaWeeks":  row.DeltaWeeks,
				"clientEmail": row.ClientEmail,
				"clientNotes": row.ClientNotes,
				"status":      row.Status,
				"createdAt":   row.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"changeOrders": out})
	}
}

type resolveChangeOrderRequest struct {
	Action string `json:"action"` // approve or reject
}

// handleResolveChangeOrder is the owner-only approve/reject transition.
func handleResolveChangeOrder(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resolveChangeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil || (req.Action != "approve" && req.Action != "reject") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "action must be approve or reject"})
			return
		}

		var order models.ChangeOrder
		err := deps.DB.First(&order, "id = ?", c.Param("id")).Error
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if err != nil {
			writeError(c, err)
			return
		}
		var project models.Project
		if err := deps.DB.First(&project, "id = ?", order.ProjectID).Error; err != nil {
			writeError(c, err)
			return
		}
		if !requireOwner(c, deps, project.OrganizationID) {
			return
		}

		user := currentUser(c)
		resolved, err := deps.Negotiator.ResolveChangeOrder(order.ID, user.ID, req.Action == "approve")
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":         resolved.ID,
			"status":     resolved.Status,
			"resolvedAt": resolved.ResolvedAt,
		})
	}
}
