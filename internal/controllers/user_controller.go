package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haritsetu/backend/internal/logger"
	"github.com/haritsetu/backend/internal/store"
)

type UserController struct {
	users store.UserStore
}

func NewUserController(users store.UserStore) *UserController {
	return &UserController{users: users}
}

func (uc *UserController) GetCurrentUser(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	user, err := uc.users.FindUser(c.Request.Context(), actor.ID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		logger.WithUser(actor.ID).WithError(err).Error("Failed to load current user")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}
