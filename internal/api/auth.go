package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lanternworks/scopeline/internal/auth"
	"github.com/lanternworks/scopeline/internal/ratelimit"
)

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	OrgName  string `json:"orgName"`
}

func handleSignup(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		user, org, err := deps.Auth.Signup(auth.SignupOpts{
			Email:    req.Email,
			Name:     req.Name,
			Password: req.Password,
			OrgName:  req.OrgName,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		session, err := deps.Auth.Login(req.Email, req.Password, ratelimit.ClientIP(c.Request), c.Request.UserAgent())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"token": session.Token,
			"user": gin.H{
				"id":    user.ID,
				"email": user.Email,
				"name":  user.Name,
			},
			"organization": gin.H{
				"id":   org.ID,
				"name": org.Name,
			},
		})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func handleLogin(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		session, err := deps.Auth.Login(req.Email, req.Password, ratelimit.ClientIP(c.Request), c.Request.UserAgent())
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token": session.Token,
			"user": gin.H{
				"id":    session.User.ID,
				"email": session.User.Email,
				"name":  session.User.Name,
			},
		})
	}
}

func handleLogout(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if err := deps.Auth.Logout(token); err != nil {
				writeError(c, err)
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

func handleMe(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		c.JSON(http.StatusOK, gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		})
	}
}
