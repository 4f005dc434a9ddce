package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lanternworks/scopeline/internal/intake"
	"github.com/lanternworks/scopeline/internal/models"
	"gorm.io/gorm"
)

func handleGetForm(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, ok := loadFormByToken(c, deps)
		if !ok {
			return
		}
		if form.SubmittedAt != nil {
			c.JSON(http.StatusGone, gin.H{"error": "This questionnaire has already been submitted"})
			return
		}
		schema, err := intake.Parse(form.FormData)
		if err != nil {
			writeError(c, err)
			return
		}
		var project models.Project
		if err := deps.DB.First(&project, "id = ?", form.ProjectID).Error; err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"projectName": project.Name,
			"form":        schema,
		})
	}
}

type submitFormRequest struct {
	ClientEmail string                 `json:"clientEmail"`
	Responses   map[string]interface{} `json:"responses"`
}

func handleSubmitForm(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, ok := loadFormByToken(c, deps)
		if !ok {
			return
		}
		if form.SubmittedAt != nil {
			c.JSON(http.StatusGone, gin.H{"error": "This questionnaire has already been submitted"})
			return
		}
		var req submitFormRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Responses == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "responses are required"})
			return
		}
		schema, err := intake.Parse(form.FormData)
		if err != nil {
			writeError(c, err)
			return
		}
		if errs := intake.ValidateResponses(schema, req.Responses); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": errs})
			return
		}
		encoded, err := json.Marshal(req.Responses)
		if err != nil {
			writeError(c, err)
			return
		}

		now := time.Now()
		updates := map[string]interface{}{
			"responses":    string(encoded),
			"submitted_at": now,
		}
		if req.ClientEmail != "" {
			updates["client_email"] = req.ClientEmail
		}
		err = deps.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(form).Updates(updates).Error; err != nil {
				return err
			}
			return tx.Model(&models.Project{}).
				Where("id = ?", form.ProjectID).
				Update("status", models.ProjectScoping).Error
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Thanks! Your responses have been submitted."})
	}
}

func loadFormByToken(c *gin.Context, deps Deps) (*models.ProjectForm, bool) {
	var form models.ProjectForm
	err := deps.DB.First(&form, "share_token = ?", c.Param("token")).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return nil, false
	}
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return &form, true
}

// formatFormResponses renders a submitted questionnaire as a Q&A block for
// the timeline prompt. Unreadable stored data degrades to an empty block.
func formatFormResponses(form *models.ProjectForm) string {
	if form.Responses == "" {
		return ""
	}
	schema, err := intake.Parse(form.FormData)
	if err != nil {
		log.Printf("api: form %s: unreadable schema: %v", form.ID, err)
		return ""
	}
	var responses map[string]interface{}
	if err := json.Unmarshal([]byte(form.Responses), &responses); err != nil {
		log.Printf("api: form %s: unreadable responses: %v", form.ID, err)
		return ""
	}
	return intake.FormatResponses(schema, responses)
}
