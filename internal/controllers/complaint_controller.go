package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/haritsetu/backend/internal/logger"
	"github.com/haritsetu/backend/internal/middleware"
	"github.com/haritsetu/backend/internal/models"
	"github.com/haritsetu/backend/internal/services"
)

type ComplaintController struct {
	grievances *services.GrievanceService
}

func NewComplaintController(grievances *services.GrievanceService) *ComplaintController {
	return &ComplaintController{grievances: grievances}
}

type CreateComplaintRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Location    string `json:"location" binding:"required"`
}

// optionalUint tells an absent field from an explicit null.
type optionalUint struct {
	Set   bool
	Value *uint
}

func (o *optionalUint) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v uint
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// UpdateComplaintRequest is a partial update. "assigned_to": null unassigns
// the complaint; a null status or priority is the same as leaving it out.
type UpdateComplaintRequest struct {
	Status     *models.ComplaintStatus   `json:"status"`
	Priority   *models.ComplaintPriority `json:"priority"`
	AssignedTo optionalUint              `json:"assigned_to"`
}

type CreateCommentRequest struct {
	Comment      string                  `json:"comment" binding:"required"`
	StatusChange *models.ComplaintStatus `json:"status_change"`
}

// currentActor reads the identity placed on the context by AuthMiddleware.
func currentActor(c *gin.Context) (services.Actor, bool) {
	id, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return services.Actor{}, false
	}
	userID, ok := id.(uint)
	if !ok || userID == 0 {
		return services.Actor{}, false
	}
	role, _ := c.Get(middleware.UserRoleKey)
	userRole, ok := role.(models.UserRole)
	if !ok {
		return services.Actor{}, false
	}
	return services.Actor{ID: userID, Role: userRole}, true
}

func requireActor(c *gin.Context) (services.Actor, bool) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "User not authenticated",
		})
	}
	return actor, ok
}

func complaintID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid complaint ID",
		})
		return 0, false
	}
	return uint(id), true
}

// respondError maps workflow errors onto status codes.
func respondError(c *gin.Context, err error, fallback string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": verr.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Complaint not found"})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
	default:
		logger.WithRequest(c.GetString(middleware.RequestIDKey)).
			WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": fallback})
	}
}

func (cc *ComplaintController) CreateComplaint(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request data",
			"errors":  err.Error(),
		})
		return
	}

	complaint, err := cc.grievances.Submit(c.Request.Context(), actor, services.SubmitInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
	})
	if err != nil {
		respondError(c, err, "Failed to create complaint")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    complaint,
	})
}

func (cc *ComplaintController) GetComplaints(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var filter services.ListFilter
	if status := c.Query("status"); status != "" {
		s := models.ComplaintStatus(status)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid status value",
			})
			return
		}
		filter.Status = &s
	}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"skip", &filter.Skip},
		{"limit", &filter.Limit},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid " + p.name + " value",
			})
			return
		}
		*p.dst = n
	}

	complaints, err := cc.grievances.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, err, "Failed to fetch complaints")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    complaints,
	})
}

func (cc *ComplaintController) GetComplaint(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := complaintID(c)
	if !ok {
		return
	}

	complaint, err := cc.grievances.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, "Failed to fetch complaint")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    complaint,
	})
}

func (cc *ComplaintController) UpdateComplaint(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := complaintID(c)
	if !ok {
		return
	}

	var req UpdateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request data",
			"errors":  err.Error(),
		})
		return
	}

	complaint, err := cc.grievances.UpdateFields(c.Request.Context(), actor, id, services.FieldChanges{
		Status:        req.Status,
		Priority:      req.Priority,
		AssignedTo:    req.AssignedTo.Value,
		ClearAssignee: req.AssignedTo.Set && req.AssignedTo.Value == nil,
	})
	if err != nil {
		respondError(c, err, "Failed to update complaint")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    complaint,
	})
}

func (cc *ComplaintController) AddComment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := complaintID(c)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request data",
			"errors":  err.Error(),
		})
		return
	}

	update, err := cc.grievances.AddComment(c.Request.Context(), actor, id, services.CommentInput{
		Comment:      req.Comment,
		StatusChange: req.StatusChange,
	})
	if err != nil {
		respondError(c, err, "Failed to add comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    update,
	})
}

func (cc *ComplaintController) GetComments(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := complaintID(c)
	if !ok {
		return
	}

	updates, err := cc.grievances.ListComments(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, "Failed to fetch comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updates,
	})
}
