package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eston/admissions/internal/app/models/dto"
	"github.com/eston/admissions/internal/app/services"
	"github.com/eston/admissions/internal/middleware"
)

// DashboardController serves the admin overview
type DashboardController struct {
	dashboardService services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// Summary returns system-wide counts
// @Summary Admin dashboard
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardResponse} "Dashboard"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /admin/dashboard [get]
func (c *DashboardController) Summary(ctx *gin.Context) {
	summary, err := c.dashboardService.Summary(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(summary))
}
