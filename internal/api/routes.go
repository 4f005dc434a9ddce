package api

import (
	"github.com/gin-gonic/gin"
	"github.com/lanternworks/scopeline/internal/ratelimit"
)

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, deps Deps) {
	api := router.Group("/api")

	// Public: account endpoints, throttled against credential stuffing.
	authGroup := api.Group("/auth")
	if deps.AuthLimiter != nil {
		authGroup.Use(ratelimit.Middleware(deps.AuthLimiter))
	}
	authGroup.POST("/signup", handleSignup(deps))
	authGroup.POST("/login", handleLogin(deps))
	api.POST("/auth/logout", handleLogout(deps))

	// Public: share-token surfaces for anonymous clients.
	api.GET("/forms/:token", handleGetForm(deps))
	api.POST("/forms/:token", handleSubmitForm(deps))
	api.GET("/timelines/:token", handleGetSharedTimeline(deps))
	api.GET("/timelines/:token/chat", handleChatHistory(deps))
	chat := api.Group("/timelines/:token")
	if deps.ChatLimiter != nil {
		chat.Use(ratelimit.Middleware(deps.ChatLimiter))
	}
	chat.POST("/chat", handleChat(deps))
	api.POST("/change-orders", handleCreateChangeOrder(deps))

	// Authenticated: organization-side endpoints.
	authed := api.Group("", requireUser(deps))
	authed.GET("/me", handleMe(deps))

	authed.GET("/orgs", handleListOrgs(deps))
	authed.GET("/orgs/:id", handleGetOrg(deps))
	authed.GET("/orgs/:id/members", handleListMembers(deps))
	authed.PATCH("/orgs/:id/members/:userID", handleUpdateMember(deps))
	authed.DELETE("/orgs/:id/members/:userID", handleRemoveMember(deps))
	authed.GET("/orgs/:id/settings", handleGetSettings(deps))
	authed.PUT("/orgs/:id/settings", handleUpdateSettings(deps))
	authed.GET("/orgs/:id/projects", handleListProjects(deps))
	authed.POST("/orgs/:id/projects", handleCreateProject(deps))
	authed.GET("/orgs/:id/change-orders", handleListChangeOrders(deps))

	authed.GET("/projects/:id", handleGetProject(deps))
	authed.PATCH("/projects/:id", handleUpdateProject(deps))
	authed.DELETE("/projects/:id", handleDeleteProject(deps))
	authed.POST("/projects/:id/generate-form", handleGenerateForm(deps))
	authed.POST("/projects/:id/send-form", handleSendForm(deps))
	authed.POST("/projects/:id/generate-timeline", handleGenerateTimeline(deps))
	authed.POST("/projects/:id/approve-timeline", handleApproveTimeline(deps))
	authed.POST("/projects/:id/share-timeline", handleShareTimeline(deps))

	authed.PATCH("/change-orders/:id", handleResolveChangeOrder(deps))
}
