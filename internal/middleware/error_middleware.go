package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eston/admissions/internal/app/models/dto"
	"github.com/eston/admissions/internal/pkg/apperrors"
	"github.com/eston/admissions/internal/pkg/logger"
)

type errorMapping struct {
	sentinel error
	status   int
	code     dto.ErrorCode
	message  string
}

// Checked in order; the first sentinel in the error chain wins
var errorMappings = []errorMapping{
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{apperrors.ErrResourceAlreadyExists, http.StatusBadRequest, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token has expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeForbidden, "account is disabled"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
}

// HandleAPIError maps a service error to its HTTP status and error envelope and aborts
// the request. Unmapped errors are logged and reported as a generic 500.
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.sentinel) {
			continue
		}

		detail := dto.NewErrorDetail(m.code, m.message)
		if msg, ok := apperrors.Message(err); ok {
			detail.Message = msg
		} else if m.sentinel == apperrors.ErrValidationFailed {
			detail.WithDetails(err.Error())
		}

		var ce *apperrors.CustomError
		if errors.As(err, &ce) && ce.Details != nil {
			if field, ok := ce.Details["field"].(string); ok {
				detail.WithField(field)
				detail.WithDetails([]dto.FieldError{{Field: field, Message: detail.Message}})
			} else {
				detail.WithDetails(ce.Details)
			}
		}

		c.AbortWithStatusJSON(m.status, dto.NewErrorResponse(detail))
		return
	}

	logger.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("requestID", c.GetString(RequestIDKey)).
		Msg("Unhandled error")

	detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
		WithSeverity(dto.ErrorSeverityCritical)
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
}

// HandleBindingError reports a request binding or validation failure as VAL_001
func HandleBindingError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
}

// AbortUnauthorized ends the request with 401 AUTH_008
func AbortUnauthorized(c *gin.Context, details string) {
	detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
}

// AbortForbidden ends the request with 403 FORBIDDEN
func AbortForbidden(c *gin.Context, details string) {
	detail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(detail))
}
