package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/eston/admissions/internal/middleware"
	"github.com/eston/admissions/internal/pkg/apperrors"
	"github.com/eston/admissions/internal/pkg/helpers"
)

// pathID reads the :id parameter, reporting a VAL_001 error and returning false when it is invalid
func pathID(ctx *gin.Context) (int64, bool) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("id", err.Error()))
		return 0, false
	}
	return id, true
}
