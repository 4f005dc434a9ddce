package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lanternworks/scopeline/internal/db"
	"github.com/lanternworks/scopeline/internal/models"
)

func handleListOrgs(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		var orgs []models.Organization
		err := deps.DB.Model(&models.Organization{}).
			Joins("JOIN organization_members ON organization_members.organization_id = organizations.id").
			Where("organization_members.user_id = ?", user.ID).
			Order("organizations.created_at").
			Find(&orgs).Error
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]gin.H, 0, len(orgs))
		for _, org := range orgs {
			out = append(out, gin.H{"id": org.ID, "name": org.Name})
		}
		c.JSON(http.StatusOK, gin.H{"organizations": out})
	}
}

func handleGetOrg(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("id")
		if !requireMember(c, deps, orgID) {
			return
		}
		var org models.Organization
		if err := deps.DB.First(&org, "id = ?", orgID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": org.ID, "name": org.Name, "ownerId": org.OwnerID})
	}
}

func handleListMembers(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("id")
		if !requireMember(c, deps, orgID) {
			return
		}
		type memberRow struct {
			UserID string
			Email  string
			Name   string
			Role   string
		}
		var rows []memberRow
		err := deps.DB.Model(&models.OrganizationMember{}).
			Select("organization_members.user_id AS user_id, users.email AS email, users.name AS name, organization_members.role AS role").
			Joins("JOIN users ON users.id = organization_members.user_id").
			Where("organization_members.organization_id = ?", orgID).
			Order("organization_members.created_at").
			Scan(&rows).Error
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]gin.H, 0, len(rows))
		for _, row := range rows {
			out = append(out, gin.H{
				"userId": row.UserID,
				"email":  row.Email,
				"name":   row.Name,
				"role":   row.Role,
			})
		}
		c.JSON(http.StatusOK, gin.H{"members": out})
	}
}

type updateMemberRequest struct {
	Role string `json:"role"`
}

func handleUpdateMember(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("id")
		targetID := c.Param("userID")
		if !requireOwner(c, deps, orgID) {
			return
		}
		var req updateMemberRequest
		if err := c.ShouldBindJSON(&req); err != nil || (req.Role != models.RoleOwner && req.Role != models.RoleMember) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "role must be owner or member"})
			return
		}
		member, err := deps.Auth.Membership(orgID, targetID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		// An organization must always retain at least one owner.
		if member.Role == models.RoleOwner && req.Role == models.RoleMember {
			if lastOwner(deps, orgID) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot demote the last owner"})
				return
			}
		}
		if err := deps.DB.Model(member).Update("role", req.Role).Error; err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": targetID, "role": req.Role})
	}
}

func handleRemoveMember(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("id")
		targetID := c.Param("userID")
		if !requireOwner(c, deps, orgID) {
			return
		}
		member, err := deps.Auth.Membership(orgID, targetID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if member.Role == models.RoleOwner && lastOwner(deps, orgID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot remove the last owner"})
			return
		}
		if err := deps.DB.Delete(member).Error; err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
	}
}

func lastOwner(deps Deps, orgID string) bool {
	var count int64
	deps.DB.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND role = ?", orgID, models.RoleOwner).
		Count(&count)
	return count <= 1
}

func handleGetSettings(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("id")
		if !requireMember(c, deps, orgID) {
			return
		}
		settings, err := db.EnsureSettings(deps.DB, orgID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, settingsJSON(settings))
	}
}

type updateSettingsRequest struct {
	HourlyRate     *float64 `json:"hourlyRate"`
	HoursPerWeek   *float64 `json:"hoursPerWeek"`
	TimelinePrompt *string  `json:"timelinePrompt"`
	FormPrompt     *string  `json:"formPrompt"`
}

func handleUpdateSettings(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("id")
		if !requireOwner(c, deps, orgID) {
			return
		}
		var req updateSettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		settings, err := db.EnsureSettings(deps.DB, orgID)
		if err != nil {
			writeError(c, err)
			return
		}
		updates := map[string]interface{}{}
		if req.HourlyRate != nil {
			if *req.HourlyRate <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "hourlyRate must be positive"})
				return
			}
			updates["hourly_rate"] = *req.HourlyRate
		}
		if req.HoursPerWeek != nil {
			if *req.HoursPerWeek <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "hoursPerWeek must be positive"})
				return
			}
			updates["hours_per_week"] = *req.HoursPerWeek
		}
		if req.TimelinePrompt != nil {
			updates["timeline_prompt"] = *req.TimelinePrompt
		}
		if req.FormPrompt != nil {
			updates["form_prompt"] = *req.FormPrompt
		}
		if len(updates) > 0 {
			if err := deps.DB.Model(settings).Updates(updates).Error; err != nil {
				writeError(c, err)
				return
			}
		}
		fresh, err := db.EnsureSettings(deps.DB, orgID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, settingsJSON(fresh))
	}
}

func settingsJSON(s *models.OrganizationSettings) gin.H {
	return gin.H{
		"hourlyRate":     s.HourlyRate,
		"hoursPerWeek":   s.HoursPerWeek,
		"timelinePrompt": s.TimelinePrompt,
		"formPrompt":     s.FormPrompt,
	}
}
