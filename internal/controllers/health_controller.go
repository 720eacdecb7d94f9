package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const Version = "1.0.0"

// Pinger is anything /health can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	database Pinger
	redis    Pinger
}

// NewHealthController pings the store and, when redis is non-nil, the event
// bus.
func NewHealthController(database, redis Pinger) *HealthController {
	return &HealthController{database: database, redis: redis}
}

func pingStatus(ctx context.Context, p Pinger) gin.H {
	if p == nil {
		return gin.H{"status": "error", "error": "connection not initialized"}
	}
	if err := p.Ping(ctx); err != nil {
		return gin.H{"status": "error", "error": err.Error()}
	}
	return gin.H{"status": "ok"}
}

func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{"database": pingStatus(ctx, hc.database)}
	if hc.redis != nil {
		checks["redis"] = pingStatus(ctx, hc.redis)
	}

	// Determine overall health
	overallStatus := "ok"
	statusCode := http.StatusOK
	for _, s := range checks {
		if s.(gin.H)["status"] != "ok" {
			overallStatus = "error"
			statusCode = http.StatusServiceUnavailable
		}
	}

	c.JSON(statusCode, gin.H{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
		"services":  checks,
	})
}
