package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lanternworks/scopeline/internal/models"
	"github.com/lanternworks/scopeline/internal/negotiation"
	"github.com/lanternworks/scopeline/internal/timeline"
)

// handleGetSharedTimeline is the public timeline view behind a share token.
func handleGetSharedTimeline(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		row, err := negotiation.ResolveSharedTimeline(deps.DB, c.Param("token"))
		if err != nil {
			writeError(c, err)
			return
		}
		data, err := timeline.Parse(row.TimelineData)
		if err != nil {
			writeError(c, err)
			return
		}
		var project models.Project
		if err := deps.DB.First(&project, "id = ?", row.ProjectID).Error; err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"projectName": project.Name,
			"projectType": project.ProjectType,
			"timeline":    data,
			"totals": gin.H{
				"weeks": row.TotalWeeks,
				"hours": row.TotalHours,
				"cost":  row.TotalCost,
			},
		})
	}
}
