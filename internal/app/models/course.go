package models

import "time"

// Course is a catalog entry applicants can choose
type Course struct {
	ID           int64     `json:"id" db:"id" example:"1"`
	Name         string    `json:"name" db:"name" example:"Diploma in Business Administration"`
	Code         string    `json:"code" db:"code" example:"DBA"`
	Description  *string   `json:"description,omitempty" db:"description"`
	Duration     *string   `json:"duration,omitempty" db:"duration" example:"2 years"`
	Requirements *string   `json:"requirements,omitempty" db:"requirements"`
	Fee          *float64  `json:"fee,omitempty" db:"fee" example:"2500.00"`
	IsActive     bool      `json:"is_active" db:"is_active" example:"true"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// CourseStatistics summarizes the applications received for a course
type CourseStatistics struct {
	TotalApplications int64 `json:"total_applications"`
	Pending           int64 `json:"pending"`
	Approved          int64 `json:"approved"`
	Rejected          int64 `json:"rejected"`
}
