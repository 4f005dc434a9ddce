package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

const testFormJSON = `{
	"sections": [
		{
			"title": "Project Goals",
			"questions": [
				{"id": "goals", "label": "What are your goals?", "type": "textarea", "required": true},
				{"id": "launch", "label": "When do you want to launch?", "type": "text", "required": false}
			]
		}
	]
}`

// signup returns a session token and the new organization's ID.
func signup(t *testing.T, env *testEnv, email string) (string, string) {
	t.Helper()
	rec, resp := env.do(t, http.MethodPost, "/api/auth/signup", gin.H{
		"email":    email,
		"name":     "Dana",
		"password": "correct horse",
		"orgName":  "Studio",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d: %s", rec.Code, rec.Body.String())
	}
	token, _ := resp["token"].(string)
	org, _ := resp["organization"].(map[string]interface{})
	orgID, _ := org["id"].(string)
	if token == "" || orgID == "" {
		t.Fatalf("signup response = %v", resp)
	}
	return token, orgID
}

func TestProjectLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token, orgID := signup(t, env, "dana@studio.test")
	headers := authHeader(token)

	// Create.
	rec, project := env.do(t, http.MethodPost, "/api/orgs/"+orgID+"/projects", gin.H{
		"name":        "Acme Site",
		"clientName":  "Acme",
		"clientEmail": "client@acme.test",
		"projectType": "web",
		"brief":       "Marketing site with a blog",
		"budget":      50000,
	}, headers)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	projectID, _ := project["id"].(string)
	if project["status"] != "draft" {
		t.Errorf("status = %v, want draft", project["status"])
	}

	// Generate the intake form.
	env.completer.reply = "```json\n" + testFormJSON + "\n```"
	rec, form := env.do(t, http.MethodPost, "/api/projects/"+projectID+"/generate-form", nil, headers)
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate form status = %d: %s", rec.Code, rec.Body.String())
	}
	formToken, _ := form["shareToken"].(string)
	if len(formToken) != 32 {
		t.Fatalf("form shareToken = %q", formToken)
	}

	// Send it to the client.
	rec, _ = env.do(t, http.MethodPost, "/api/projects/"+projectID+"/send-form", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("send form status = %d: %s", rec.Code, rec.Body.String())
	}
	rec, got := env.do(t, http.MethodGet, "/api/projects/"+projectID, nil, headers)
	if rec.Code != http.StatusOK || got["status"] != "form_sent" {
		t.Fatalf("after send: status code %d, project status %v", rec.Code, got["status"])
	}

	// The client fills it in anonymously.
	rec, public := env.do(t, http.MethodGet, "/api/forms/"+formToken, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get form status = %d", rec.Code)
	}
	if public["projectName"] != "Acme Site" {
		t.Errorf("projectName = %v", public["projectName"])
	}

	rec, _ = env.do(t, http.MethodPost, "/api/forms/"+formToken, gin.H{
		"responses": gin.H{"goals": "Sell more widgets"},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d: %s", rec.Code, rec.Body.String())
	}

	// Submitted forms are closed.
	rec, _ = env.do(t, http.MethodGet, "/api/forms/"+formToken, nil, nil)
	if rec.Code != http.StatusGone {
		t.Errorf("reopened form status = %d, want 410", rec.Code)
	}
	rec, _ = env.do(t, http.MethodPost, "/api/forms/"+formToken, gin.H{
		"responses": gin.H{"goals": "Changed my mind"},
	}, nil)
	if rec.Code != http.StatusGone {
		t.Errorf("resubmit status = %d, want 410", rec.Code)
	}

	// Generate the timeline from the submission.
	env.completer.reply = "```json\n" + testTimelineJSON + "\n```"
	rec, generated := env.do(t, http.MethodPost, "/api/projects/"+projectID+"/generate-timeline", nil, headers)
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate timeline status = %d: %s", rec.Code, rec.Body.String())
	}
	if generated["timeline"] == nil {
		t.Fatal("no timeline in response")
	}

	// Sharing requires approval first.
	rec, _ = env.do(t, http.MethodPost, "/api/projects/"+projectID+"/share-timeline", nil, headers)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("premature share status = %d, want 400", rec.Code)
	}

	rec, _ = env.do(t, http.MethodPost, "/api/projects/"+projectID+"/approve-timeline", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d: %s", rec.Code, rec.Body.String())
	}

	rec, shared := env.do(t, http.MethodPost, "/api/projects/"+projectID+"/share-timeline", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("share status = %d: %s", rec.Code, rec.Body.String())
	}
	shareToken, _ := shared["shareToken"].(string)
	if len(shareToken) != 32 {
		t.Fatalf("shareToken = %q", shareToken)
	}

	// Resharing returns the same link.
	rec, reshared := env.do(t, http.MethodPost, "/api/projects/"+projectID+"/share-timeline", nil, headers)
	if rec.Code != http.StatusOK || reshared["shareToken"] != shareToken {
		t.Errorf("reshare = %d %v, want same token", rec.Code, reshared["shareToken"])
	}

	// The client can now view the shared timeline.
	rec, view := env.do(t, http.MethodGet, "/api/timelines/"+shareToken, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("view status = %d", rec.Code)
	}
	if view["projectName"] != "Acme Site" {
		t.Errorf("projectName = %v", view["projectName"])
	}
}

func TestSubmitForm_Validation(t *testing.T) {
	env := newTestEnv(t)
	token, orgID := signup(t, env, "dana@studio.test")
	headers := authHeader(token)

	rec, project := env.do(t, http.MethodPost, "/api/orgs/"+orgID+"/projects", gin.H{"name": "Acme Site"}, headers)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	projectID, _ := project["id"].(string)

	env.completer.reply = "```json\n" + testFormJSON + "\n```"
	rec, form := env.do(t, http.MethodPost, "/api/projects/"+projectID+"/generate-form", nil, headers)
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate form status = %d", rec.Code)
	}
	formToken, _ := form["shareToken"].(string)

	tests := []struct {
		name string
		body gin.H
	}{
		{"no responses", gin.H{}},
		{"missing required", gin.H{"responses": gin.H{"launch": "June"}}},
		{"unknown question", gin.H{"responses": gin.H{"goals": "x", "bogus": "y"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := env.do(t, http.MethodPost, "/api/forms/"+formToken, tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestProject_TenantIsolation(t *testing.T) {
	env := newTestEnv(t)
	ownerToken, orgID := signup(t, env, "dana@studio.test")

	rec, project := env.do(t, http.MethodPost, "/api/orgs/"+orgID+"/projects", gin.H{"name": "Acme Site"}, authHeader(ownerToken))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	projectID, _ := project["id"].(string)

	outsiderToken, _ := signup(t, env, "other@agency.test")

	rec, _ = env.do(t, http.MethodGet, "/api/projects/"+projectID, nil, authHeader(outsiderToken))
	if rec.Code != http.StatusForbidden {
		t.Errorf("outsider get status = %d, want 403", rec.Code)
	}
	rec, _ = env.do(t, http.MethodGet, "/api/orgs/"+orgID+"/projects", nil, authHeader(outsiderToken))
	if rec.Code != http.StatusForbidden {
		t.Errorf("outsider list status = %d, want 403", rec.Code)
	}
}

func TestCreateProject_Validation(t *testing.T) {
	env := newTestEnv(t)
	token, orgID := signup(t, env, "dana@studio.test")
	headers := authHeader(token)

	rec, _ := env.do(t, http.MethodPost, "/api/orgs/"+orgID+"/projects", gin.H{}, headers)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing name status = %d, want 400", rec.Code)
	}
	rec, _ = env.do(t, http.MethodPost, "/api/orgs/"+orgID+"/projects", gin.H{
		"name":        "Acme Site",
		"projectType": "spaceship",
	}, headers)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad type status = %d, want 400", rec.Code)
	}
}

func TestUpdateSettings(t *testing.T) {
	env := newTestEnv(t)
	token, orgID := signup(t, env, "dana@studio.test")
	headers := authHeader(token)

	rec, settings := env.do(t, http.MethodGet, "/api/orgs/"+orgID+"/settings", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("get settings status = %d: %s", rec.Code, rec.Body.String())
	}
	if settings["hourlyRate"] != float64(150) {
		t.Errorf("hourlyRate = %v, want default 150", settings["hourlyRate"])
	}

	rec, settings = env.do(t, http.MethodPut, "/api/orgs/"+orgID+"/settings", gin.H{
		"hourlyRate":     200,
		"timelinePrompt": "Always include a QA phase",
	}, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("update settings status = %d: %s", rec.Code, rec.Body.String())
	}
	if settings["hourlyRate"] != float64(200) {
		t.Errorf("hourlyRate = %v, want 200", settings["hourlyRate"])
	}
	if settings["timelinePrompt"] != "Always include a QA phase" {
		t.Errorf("timelinePrompt = %v", settings["timelinePrompt"])
	}

	rec, _ = env.do(t, http.MethodPut, "/api/orgs/"+orgID+"/settings", gin.H{"hourlyRate": -5}, headers)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative rate status = %d, want 400", rec.Code)
	}
}
