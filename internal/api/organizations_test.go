package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lanternworks/scopeline/internal/models"
)

// addMember seeds a plain member into an existing organization.
func addMember(t *testing.T, env *testEnv, orgID, userID, email string) {
	t.Helper()
	rows := []interface{}{
		&models.User{ID: userID, Email: email, Name: "Sam", PasswordHash: "x"},
		&models.OrganizationMember{ID: "m-" + userID, OrganizationID: orgID, UserID: userID, Role: models.RoleMember, CreatedAt: time.Now()},
	}
	for _, row := range rows {
		if err := env.db.Create(row).Error; err != nil {
			t.Fatalf("seed %T: %v", row, err)
		}
	}
}

func TestListMembers(t *testing.T) {
	env := newTestEnv(t)
	token, orgID := signup(t, env, "dana@studio.test")
	addMember(t, env, orgID, "u-sam", "sam@studio.test")

	rec, resp := env.do(t, http.MethodGet, "/api/orgs/"+orgID+"/members", nil, authHeader(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	members, _ := resp["members"].([]interface{})
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2", len(members))
	}
	first, _ := members[0].(map[string]interface{})
	if first["role"] != models.RoleOwner {
		t.Errorf("first member role = %v, want the founding owner", first["role"])
	}
}

func TestUpdateMember(t *testing.T) {
	env := newTestEnv(t)
	token, orgID := signup(t, env, "dana@studio.test")
	addMember(t, env, orgID, "u-sam", "sam@studio.test")
	headers := authHeader(token)

	rec, resp := env.do(t, http.MethodPatch, "/api/orgs/"+orgID+"/members/u-sam", gin.H{"role": "owner"}, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("promote status = %d: %s", rec.Code, rec.Body.String())
	}
	if resp["role"] != models.RoleOwner {
		t.Errorf("role = %v", resp["role"])
	}

	rec, _ = env.do(t, http.MethodPatch, "/api/orgs/"+orgID+"/members/u-sam", gin.H{"role": "admin"}, headers)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad role status = %d, want 400", rec.Code)
	}
	rec, _ = env.do(t, http.MethodPatch, "/api/orgs/"+orgID+"/members/u-nobody", gin.H{"role": "member"}, headers)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown member status = %d, want 404", rec.Code)
	}
}

func TestLastOwnerProtection(t *testing.T) {
	env := newTestEnv(t)
	token, orgID := signup(t, env, "dana@studio.test")
	headers := authHeader(token)

	var owner models.OrganizationMember
	if err := env.db.First(&owner, "organization_id = ? AND role = ?", orgID, models.RoleOwner).Error; err != nil {
		t.Fatalf("load owner membership: %v", err)
	}

	rec, _ := env.do(t, http.MethodPatch, "/api/orgs/"+orgID+"/members/"+owner.UserID, gin.H{"role": "member"}, headers)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("demote last owner status = %d, want 400", rec.Code)
	}
	rec, _ = env.do(t, http.MethodDelete, "/api/orgs/"+orgID+"/members/"+owner.UserID, nil, headers)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("remove last owner status = %d, want 400", rec.Code)
	}

	// With a second owner in place the original can step down.
	addMember(t, env, orgID, "u-sam", "sam@studio.test")
	rec, _ = env.do(t, http.MethodPatch, "/api/orgs/"+orgID+"/members/u-sam", gin.H{"role": "owner"}, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("promote status = %d", rec.Code)
	}
	rec, _ = env.do(t, http.MethodPatch, "/api/orgs/"+orgID+"/members/"+owner.UserID, gin.H{"role": "member"}, headers)
	if rec.Code != http.StatusOK {
		t.Errorf("demote with second owner status = %d, want 200", rec.Code)
	}
}

func TestRemoveMember(t *testing.T) {
	env := newTestEnv(t)
	token, orgID := signup(t, env, "dana@studio.test")
	addMember(t, env, orgID, "u-sam", "sam@studio.test")

	rec, _ := env.do(t, http.MethodDelete, "/api/orgs/"+orgID+"/members/u-sam", nil, authHeader(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d: %s", rec.Code, rec.Body.String())
	}
	var count int64
	env.db.Model(&models.OrganizationMember{}).Where("organization_id = ?", orgID).Count(&count)
	if count != 1 {
		t.Errorf("memberships = %d, want 1", count)
	}
}

func TestMemberManagement_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	_, orgID := signup(t, env, "dana@studio.test")
	addMember(t, env, orgID, "u-sam", "sam@studio.test")
	memberToken := loginAs(t, env, "u-sam")

	rec, _ := env.do(t, http.MethodPatch, "/api/orgs/"+orgID+"/members/u-sam", gin.H{"role": "owner"}, authHeader(memberToken))
	if rec.Code != http.StatusForbidden {
		t.Errorf("member promote status = %d, want 403", rec.Code)
	}
	rec, _ = env.do(t, http.MethodPut, "/api/orgs/"+orgID+"/settings", gin.H{"hourlyRate": 99}, authHeader(memberToken))
	if rec.Code != http.StatusForbidden {
		t.Errorf("member settings update status = %d, want 403", rec.Code)
	}
}

func TestListOrgs(t *testing.T) {
	env := newTestEnv(t)
	token, orgID := signup(t, env, "dana@studio.test")

	rec, resp := env.do(t, http.MethodGet, "/api/orgs", nil, authHeader(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	orgs, _ := resp["organizations"].([]interface{})
	if len(orgs) != 1 {
		t.Fatalf("orgs = %d, want 1", len(orgs))
	}
	first, _ := orgs[0].(map[string]interface{})
	if first["id"] != orgID {
		t.Errorf("org id = %v, want %v", first["id"], orgID)
	}
}
