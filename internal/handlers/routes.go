package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker-api/internal/middleware"
)

// RegisterRoutes mounts the API under /api. Reads are public; writes require a session.
func RegisterRoutes(r gin.IRouter, auth *AuthHandler, issues *IssueHandler, projects *ProjectHandler) {
	api := r.Group("/api")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", auth.Signup)
		authGroup.POST("/login", auth.Login)
		authGroup.POST("/logout", auth.Logout)
		authGroup.GET("/me", middleware.RequireAuth(), auth.GetCurrentUser)
	}

	api.GET("/users", auth.ListUsers)

	// Issue routes
	issueGroup := api.Group("/issues")
	{
		issueGroup.GET("", issues.ListIssues)
		issueGroup.GET("/summary", issues.Summary)
		issueGroup.GET("/:id", middleware.RequireIDParam("issue"), issues.GetIssue)
		issueGroup.POST("", middleware.RequireAuth(), issues.CreateIssue)
		issueGroup.POST("/generate", middleware.RequireAuth(), issues.GenerateIssues)
		issueGroup.PATCH("/:id", middleware.RequireAuth(), middleware.RequireIDParam("issue"), issues.UpdateIssue)
	}

	// Project routes
	projectGroup := api.Group("/projects")
	{
		projectGroup.GET("", projects.ListProjects)
		projectGroup.GET("/:id", middleware.RequireIDParam("project"), projects.GetProject)
		projectGroup.POST("", middleware.RequireAuth(), projects.CreateProject)
		projectGroup.PATCH("/:id", middleware.RequireAuth(), middleware.RequireIDParam("project"), projects.UpdateProject)
		projectGroup.DELETE("/:id", middleware.RequireAuth(), middleware.RequireIDParam("project"), projects.DeleteProject)
	}
}
