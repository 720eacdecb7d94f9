package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/haritsetu/backend/internal/controllers"
	"github.com/haritsetu/backend/internal/middleware"
	"github.com/haritsetu/backend/internal/services"
	"github.com/haritsetu/backend/internal/store"
)

// Dependencies are the collaborators the HTTP surface needs.
type Dependencies struct {
	Users      store.UserStore
	Grievances *services.GrievanceService
	Health     *controllers.HealthController
	JWTSecret  string
}

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, deps Dependencies) {
	complaintController := controllers.NewComplaintController(deps.Grievances)
	userController := controllers.NewUserController(deps.Users)

	if deps.Health != nil {
		r.GET("/health", deps.Health.Health)
	}

	// API routes
	api := r.Group("/api/v1")
	{
		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(deps.JWTSecret))
		{
			// Users
			users := protected.Group("/users")
			{
				users.GET("/me", userController.GetCurrentUser)
			}

			// Complaints
			complaints := protected.Group("/complaints")
			{
				complaints.POST("", complaintController.CreateComplaint)
				complaints.GET("", complaintController.GetComplaints)
				complaints.GET("/:id", complaintController.GetComplaint)
				complaints.PUT("/:id", complaintController.UpdateComplaint)
				complaints.POST("/:id/comments", complaintController.AddComment)
				complaints.GET("/:id/comments", complaintController.GetComments)
			}
		}
	}
}
