package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lanternworks/scopeline/internal/auth"
	"github.com/lanternworks/scopeline/internal/db"
	"github.com/lanternworks/scopeline/internal/intake"
	"github.com/lanternworks/scopeline/internal/models"
	"github.com/lanternworks/scopeline/internal/notify"
	"github.com/lanternworks/scopeline/internal/timeline"
	"gorm.io/gorm"
)

// notifyTimeout bounds fire-and-forget notification sends so a stalled
// SMTP server cannot pin goroutines forever.
const notifyTimeout = 30 * time.Second

var validProjectTypes = map[string]bool{
	"saas": true, "mobile": true, "web": true, "ecommerce": true, "custom": true,
}

type projectRequest struct {
	Name           string  `json:"name"`
	ClientName     string  `json:"clientName"`
	ClientEmail    string  `json:"clientEmail"`
	ProjectType    string  `json:"projectType"`
	Brief          string  `json:"brief"`
	Budget         float64 `json:"budget"`
	EstimatedWeeks float64 `json:"estimatedWeeks"`
}

func handleCreateProject(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("id")
		if !requireMember(c, deps, orgID) {
			return
		}
		var req projectRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		if req.ProjectType == "" {
			req.ProjectType = "web"
		}
		if !validProjectTypes[req.ProjectType] {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("projectType %q is not supported", req.ProjectType)})
			return
		}
		project := models.Project{
			ID:             uuid.NewString(),
			OrganizationID: orgID,
			Name:           req.Name,
			ClientName:     req.ClientName,
			ClientEmail:    req.ClientEmail,
			ProjectType:    req.ProjectType,
			Brief:          req.Brief,
			Budget:         req.Budget,
			EstimatedWeeks: req.EstimatedWeeks,
			Status:         models.ProjectDraft,
		}
		if err := deps.DB.Create(&project).Error; err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, projectJSON(&project))
	}
}

func handleListProjects(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("id")
		if !requireMember(c, deps, orgID) {
			return
		}
		var projects []models.Project
		err := deps.DB.Where("organization_id = ?", orgID).
			Order("created_at DESC").
			Find(&projects).Error
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]gin.H, 0, len(projects))
		for i := range projects {
			out = append(out, projectJSON(&projects[i]))
		}
		c.JSON(http.StatusOK, gin.H{"projects": out})
	}
}

func handleGetProject(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadProject(c, deps)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, projectJSON(project))
	}
}

func handleUpdateProject(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadProject(c, deps)
		if !ok {
			return
		}
		var req projectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		updates := map[string]interface{}{}
		if req.Name != "" {
			updates["name"] = req.Name
		}
		if req.ClientName != "" {
			updates["client_name"] = req.ClientName
		}
		if req.ClientEmail != "" {
			updates["client_email"] = req.ClientEmail
		}
		if req.ProjectType != "" {
			if !validProjectTypes[req.ProjectType] {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("projectType %q is not supported", req.ProjectType)})
				return
			}
			updates["project_type"] = req.ProjectType
		}
		if req.Brief != "" {
			updates["brief"] = req.Brief
		}
		if req.Budget > 0 {
			updates["budget"] = req.Budget
		}
		if req.EstimatedWeeks > 0 {
			updates["estimated_weeks"] = req.EstimatedWeeks
		}
		if len(updates) > 0 {
			if err := deps.DB.Model(project).Updates(updates).Error; err != nil {
				writeError(c, err)
				return
			}
		}
		c.JSON(http.StatusOK, projectJSON(project))
	}
}

func handleDeleteProject(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadProject(c, deps)
		if !ok {
			return
		}
		if !requireOwner(c, deps, project.OrganizationID) {
			return
		}
		if err := deps.DB.Delete(project).Error; err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
	}
}

func handleGenerateForm(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadProject(c, deps)
		if !ok {
			return
		}
		settings, err := db.EnsureSettings(deps.DB, project.OrganizationID)
		if err != nil {
			writeError(c, err)
			return
		}
		form, err := intake.Generate(c.Request.Context(), deps.Completer, intake.PromptParams{
			ProjectType:        project.ProjectType,
			Brief:              project.Brief,
			CustomInstructions: settings.FormPrompt,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		encoded, err := form.Encode()
		if err != nil {
			writeError(c, err)
			return
		}
		token, err := auth.NewShareToken()
		if err != nil {
			writeError(c, err)
			return
		}
		row := models.ProjectForm{
			ID:          uuid.NewString(),
			ProjectID:   project.ID,
			ShareToken:  token,
			FormData:    encoded,
			ClientEmail: project.ClientEmail,
		}
		if err := deps.DB.Create(&row).Error; err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"id":         row.ID,
			"shareToken": row.ShareToken,
			"form":       form,
		})
	}
}

func handleSendForm(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadProject(c, deps)
		if !ok {
			return
		}
		var form models.ProjectForm
		err := deps.DB.Where("project_id = ?", project.ID).
			Order("created_at DESC").
			First(&form).Error
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Generate a form before sending it"})
			return
		}
		if err != nil {
			writeError(c, err)
			return
		}
		if project.ClientEmail == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Project has no client email"})
			return
		}

		now := time.Now()
		err = deps.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&form).Update("sent_at", now).Error; err != nil {
				return err
			}
			return tx.Model(project).Update("status", models.ProjectFormSent).Error
		})
		if err != nil {
			writeError(c, err)
			return
		}

		link := fmt.Sprintf("%s/forms/%s", deps.Cfg.Server.BaseURL, form.ShareToken)
		sendAsync(deps, notify.Notice{
			Subject: fmt.Sprintf("Project Questionnaire: %s", project.Name),
			Body: fmt.Sprintf("Hi %s,\n\nPlease fill out the project questionnaire for %s:\n\n%s\n\nThanks!",
				project.ClientName, project.Name, link),
			Emails: []string{project.ClientEmail},
		})
		c.JSON(http.StatusOK, gin.H{"message": "Form sent", "shareToken": form.ShareToken})
	}
}

func handleGenerateTimeline(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadProject(c, deps)
		if !ok {
			return
		}
		settings, err := db.EnsureSettings(deps.DB, project.OrganizationID)
		if err != nil {
			writeError(c, err)
			return
		}

		// The latest submitted questionnaire enriches the prompt when present.
		responses := ""
		var form models.ProjectForm
		err = deps.DB.Where("project_id = ? AND submitted_at IS NOT NULL", project.ID).
			Order("submitted_at DESC").
			First(&form).Error
		if err == nil {
			responses = formatFormResponses(&form)
		} else if err != gorm.ErrRecordNotFound {
			writeError(c, err)
			return
		}

		data, err := timeline.Generate(c.Request.Context(), deps.Completer, timeline.PromptParams{
			ProjectType:        project.ProjectType,
			ClientName:         project.ClientName,
			Brief:              project.Brief,
			HourlyRate:         settings.HourlyRate,
			FormResponses:      responses,
			CustomInstructions: settings.TimelinePrompt,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		encoded, err := data.Encode()
		if err != nil {
			writeError(c, err)
			return
		}

		row := models.ProjectTimeline{
			ID:           uuid.NewString(),
			ProjectID:    project.ID,
			TimelineData: encoded,
			TotalWeeks:   data.TotalWeeks,
			TotalHours:   data.TotalHours,
			TotalCost:    data.TotalCost,
		}
		err = deps.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			return tx.Model(project).Update("status", models.ProjectScoping).Error
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"id":       row.ID,
			"timeline": data,
		})
	}
}

func handleApproveTimeline(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadProject(c, deps)
		if !ok {
			return
		}
		var count int64
		deps.DB.Model(&models.ProjectTimeline{}).Where("project_id = ?", project.ID).Count(&count)
		if count == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Project has no timeline to approve"})
			return
		}
		if err := deps.DB.Model(project).Update("status", models.ProjectApproved).Error; err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": models.ProjectApproved})
	}
}

func handleShareTimeline(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadProject(c, deps)
		if !ok {
			return
		}
		// A timeline only goes public once the project is approved.
		if project.Status != models.ProjectApproved {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Approve the timeline before sharing it"})
			return
		}
		var row models.ProjectTimeline
		err := deps.DB.Where("project_id = ?", project.ID).
			Order("created_at DESC").
			First(&row).Error
		if err != nil {
			writeError(c, err)
			return
		}

		// Minted once; resharing returns the existing link.
		if row.ShareToken == nil {
			token, err := auth.NewShareToken()
			if err != nil {
				writeError(c, err)
				return
			}
			now := time.Now()
			err = deps.DB.Model(&row).Updates(map[string]interface{}{
				"share_token": token,
				"shared_at":   now,
			}).Error
			if err != nil {
				writeError(c, err)
				return
			}
			row.ShareToken = &token
			row.SharedAt = &now

			if project.ClientEmail != "" {
				link := fmt.Sprintf("%s/timelines/%s", deps.Cfg.Server.BaseURL, token)
				sendAsync(deps, notify.Notice{
					Subject: fmt.Sprintf("Project Timeline: %s", project.Name),
					Body: fmt.Sprintf("Hi %s,\n\nYour project timeline for %s is ready for review:\n\n%s\n\nYou can discuss scope changes directly on that page.\n\nThanks!",
						project.ClientName, project.Name, link),
					Emails: []string{project.ClientEmail},
				})
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"shareToken": *row.ShareToken,
			"shareUrl":   fmt.Sprintf("%s/timelines/%s", deps.Cfg.Server.BaseURL, *row.ShareToken),
		})
	}
}

// loadProject resolves :id and checks the caller's membership. Writes the
// error response itself when the lookup or check fails.
func loadProject(c *gin.Context, deps Deps) (*models.Project, bool) {
	var project models.Project
	err := deps.DB.First(&project, "id = ?", c.Param("id")).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return nil, false
	}
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if !requireMember(c, deps, project.OrganizationID) {
		return nil, false
	}
	return &project, true
}

// sendAsync fires a notification without blocking the response.
func sendAsync(deps Deps, notice notify.Notice) {
	if deps.Notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		deps.Notifier.Notify(ctx, notice)
	}()
}

func projectJSON(p *models.Project) gin.H {
	return gin.H{
		"id":             p.ID,
		"organizationId": p.OrganizationID,
		"name":           p.Name,
		"clientName":     p.ClientName,
		"clientEmail":    p.ClientEmail,
		"projectType":    p.ProjectType,
		"brief":          p.Brief,
		"budget":         p.Budget,
		"estimatedWeeks": p.EstimatedWeeks,
		"status":         p.Status,
		"createdAt":      p.CreatedAt,
	}
}
