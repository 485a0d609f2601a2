package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eston/admissions/internal/app/models/dto"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"up"`
	Uptime   string `json:"uptime" example:"1h2m3s"`
}

// HealthController reports service liveness
type HealthController struct {
	db        Pinger
	startedAt time.Time
	logger    zerolog.Logger
}

// NewHealthController creates a new HealthController
func NewHealthController(db Pinger, logger zerolog.Logger) *HealthController {
	return &HealthController{db: db, startedAt: time.Now(), logger: logger}
}

// Check pings the database
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=controllers.HealthResponse} "Healthy"
// @Failure 503 {object} dto.APIResponse{data=controllers.HealthResponse} "Database unreachable"
// @Router /health [get]
func (c *HealthController) Check(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:   "ok",
		Database: "up",
		Uptime:   time.Since(c.startedAt).Round(time.Second).String(),
	}
	status := http.StatusOK
	if err := c.db.Ping(pingCtx); err != nil {
		c.logger.Error().Err(err).Msg("Health check database ping failed")
		resp.Status, resp.Database = "degraded", "down"
		status = http.StatusServiceUnavailable
	}

	ctx.JSON(status, dto.NewAPIResponse(resp))
}
