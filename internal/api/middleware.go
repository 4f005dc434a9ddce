package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lanternworks/scopeline/internal/models"
)

const userKey = "scopeline.user"

// requireUser authenticates the bearer token and stores the user on the
// request context. Unauthenticated requests get 401.
func requireUser(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		user, err := deps.Auth.ResolveToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// currentUser returns the authenticated user set by requireUser.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	return v.(*models.User)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Cookie fallback for browser clients.
	if cookie, err := c.Cookie("scopeline_session"); err == nil {
		return cookie
	}
	return ""
}

// requireMember checks that the authenticated user belongs to the
// organization; writes 403 and returns false otherwise.
func requireMember(c *gin.Context, deps Deps, orgID string) bool {
	user := currentUser(c)
	if user == nil || !deps.Auth.IsMember(orgID, user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a member of this organization"})
		return false
	}
	return true
}

// requireOwner checks that the authenticated user owns the organization.
func requireOwner(c *gin.Context, deps Deps, orgID string) bool {
	user := currentUser(c)
	if user == nil || !deps.Auth.IsOwner(orgID, user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Owner role required"})
		return false
	}
	return true
}
