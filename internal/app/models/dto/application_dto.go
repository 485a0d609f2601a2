package dto

import (
	"strings"
	"time"

	"github.com/eston/admissions/internal/app/models"
)

// DateLayout is the wire format of dateOfBirth
const DateLayout = "2006-01-02"

// SubmitApplicationRequest is the public application form payload
type SubmitApplicationRequest struct {
	FirstName          string  `json:"firstName" binding:"required,notblank"`
	MiddleName         *string `json:"middleName"`
	LastName           string  `json:"lastName" binding:"required,notblank"`
	Email              string  `json:"email" binding:"required,email"`
	PhoneNumber        *string `json:"phoneNumber"`
	Gender             string  `json:"gender" binding:"required,notblank"`
	DateOfBirth        string  `json:"dateOfBirth" binding:"required,datetime=2006-01-02"`
	ResidentialAddress string  `json:"residentialAddress" binding:"required,notblank"`
	StreetAddress      string  `json:"streetAddress" binding:"required,notblank"`
	StreetAddressLine2 string  `json:"streetAddressLine2" binding:"required,notblank"`
	CityStateProvince  string  `json:"cityStateProvince" binding:"required,notblank"`
	Country            string  `json:"country" binding:"required,notblank"`
	Course             string  `json:"course" binding:"required,notblank"`
	CourseID           *int64  `json:"courseId" binding:"omitempty,gt=0"`
	InstitutionName    string  `json:"institutionName" binding:"required,notblank"`
	HighestEducation   string  `json:"highestEducation" binding:"required,notblank"`
	ReasonForCourse    string  `json:"reasonForCourse" binding:"required,notblank"`
	HowHear            string  `json:"howHear" binding:"required,notblank"`
	Declaration        bool    `json:"declaration" binding:"accepted"`
}

// ToModel converts the request into a pending application. The date has already been
// validated by the binding layer; a parse failure here yields the zero time.
func (r *SubmitApplicationRequest) ToModel() *models.Application {
	dob, _ := time.Parse(DateLayout, r.DateOfBirth)
	return &models.Application{
		FirstName:          strings.TrimSpace(r.FirstName),
		MiddleName:         trimOptional(r.MiddleName),
		LastName:           strings.TrimSpace(r.LastName),
		Email:              strings.ToLower(r.Email),
		PhoneNumber:        trimOptional(r.PhoneNumber),
		Gender:             strings.TrimSpace(r.Gender),
		DateOfBirth:        dob,
		ResidentialAddress: strings.TrimSpace(r.ResidentialAddress),
		StreetAddress:      strings.TrimSpace(r.StreetAddress),
		StreetAddressLine2: strings.TrimSpace(r.StreetAddressLine2),
		CityStateProvince:  strings.TrimSpace(r.CityStateProvince),
		Country:            strings.TrimSpace(r.Country),
		CourseID:           r.CourseID,
		CourseName:         strings.TrimSpace(r.Course),
		InstitutionName:    strings.TrimSpace(r.InstitutionName),
		HighestEducation:   strings.TrimSpace(r.HighestEducation),
		ReasonForCourse:    strings.TrimSpace(r.ReasonForCourse),
		HowHear:            strings.TrimSpace(r.HowHear),
		Declaration:        r.Declaration,
		Status:             models.StatusPending,
	}
}

// SubmitApplicationResponse acknowledges a public submission
type SubmitApplicationResponse struct {
	Message       string `json:"message" example:"Application submitted successfully!"`
	ApplicationID int64  `json:"application_id" example:"42"`
}

// UpdateStatusRequest records an admin review decision
type UpdateStatusRequest struct {
	Status     string  `json:"status" binding:"required,oneof=pending approved rejected"`
	AdminNotes *string `json:"admin_notes"`
	// Version makes the update conditional on the row not having changed since it was read
	Version *int `json:"version" binding:"omitempty,gt=0"`
}

// UpdateDocumentsRequest sets the documents-submitted flag
type UpdateDocumentsRequest struct {
	DocumentsSubmitted *bool `json:"documents_submitted" binding:"required"`
}

// ApplicationFilter narrows application listings
type ApplicationFilter struct {
	Search string
	// Status is empty for "all"
	Status models.ApplicationStatus
	Limit  int
	Offset uint64
}

// DashboardResponse summarizes the system for the admin landing page
type DashboardResponse struct {
	TotalUsers           int64                          `json:"total_users"`
	TotalCourses         int64                          `json:"total_courses"`
	TotalApplications    int64                          `json:"total_applications"`
	ApplicationsByStatus models.ApplicationStatusCounts `json:"applications_by_status"`
	RecentApplications   []*models.Application          `json:"recent_applications"`
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
