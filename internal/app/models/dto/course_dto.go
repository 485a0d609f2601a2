package dto

import (
	"strings"

	"github.com/eston/admissions/internal/app/models"
)

// CreateCourseRequest represents a new catalog entry
type CreateCourseRequest struct {
	Name         string   `json:"name" binding:"required,notblank"`
	Code         string   `json:"code" binding:"required,notblank"`
	Description  *string  `json:"description"`
	Duration     *string  `json:"duration"`
	Requirements *string  `json:"requirements"`
	Fee          *float64 `json:"fee" binding:"omitempty,gte=0"`
}

// ToModel converts the request into an active course
func (r *CreateCourseRequest) ToModel() *models.Course {
	return &models.Course{
		Name:         strings.TrimSpace(r.Name),
		Code:         NormalizeCourseCode(r.Code),
		Description:  trimOptional(r.Description),
		Duration:     trimOptional(r.Duration),
		Requirements: trimOptional(r.Requirements),
		Fee:          r.Fee,
		IsActive:     true,
	}
}

// UpdateCourseRequest is a partial patch; nil fields keep their stored value
type UpdateCourseRequest struct {
	Name         *string  `json:"name" binding:"omitempty,notblank"`
	Code         *string  `json:"code" binding:"omitempty,notblank"`
	Description  *string  `json:"description"`
	Duration     *string  `json:"duration"`
	Requirements *string  `json:"requirements"`
	Fee          *float64 `json:"fee" binding:"omitempty,gte=0"`
	IsActive     *bool    `json:"is_active"`
}

// Changes returns the column/value pairs the patch touches
func (r *UpdateCourseRequest) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if r.Name != nil {
		changes["name"] = strings.TrimSpace(*r.Name)
	}
	if r.Code != nil {
		changes["code"] = NormalizeCourseCode(*r.Code)
	}
	if r.Description != nil {
		changes["description"] = trimOptional(r.Description)
	}
	if r.Duration != nil {
		changes["duration"] = trimOptional(r.Duration)
	}
	if r.Requirements != nil {
		changes["requirements"] = trimOptional(r.Requirements)
	}
	if r.Fee != nil {
		changes["fee"] = *r.Fee
	}
	if r.IsActive != nil {
		changes["is_active"] = *r.IsActive
	}
	return changes
}

// CourseDetailResponse is a course together with its application statistics
type CourseDetailResponse struct {
	*models.Course
	Statistics models.CourseStatistics `json:"statistics"`
}

// CourseFilter narrows course listings
type CourseFilter struct {
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     uint64
}

// NormalizeCourseCode trims and upper-cases a course code
func NormalizeCourseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
