package models

import "time"

// Application is a single admissions submission
type Application struct {
	ID int64 `json:"id" db:"id" example:"42"`

	FirstName   string    `json:"first_name" db:"first_name"`
	MiddleName  *string   `json:"middle_name,omitempty" db:"middle_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	Email       string    `json:"email" db:"email"`
	PhoneNumber *string   `json:"phone_number,omitempty" db:"phone_number"`
	Gender      string    `json:"gender" db:"gender"`
	DateOfBirth time.Time `json:"date_of_birth" db:"date_of_birth"`

	ResidentialAddress string `json:"residential_address" db:"residential_address"`
	StreetAddress      string `json:"street_address" db:"street_address"`
	StreetAddressLine2 string `json:"street_address_line2" db:"street_address_line2"`
	CityStateProvince  string `json:"city_state_province" db:"city_state_province"`
	Country            string `json:"country" db:"country"`

	// CourseID is nil when the submitted course did not match a catalog entry
	CourseID   *int64 `json:"course_id,omitempty" db:"course_id"`
	CourseName string `json:"course" db:"course_name"`

	InstitutionName  string `json:"institution_name" db:"institution_name"`
	HighestEducation string `json:"highest_education" db:"highest_education"`
	ReasonForCourse  string `json:"reason_for_course" db:"reason_for_course"`
	HowHear          string `json:"how_hear" db:"how_hear"`
	Declaration      bool   `json:"declaration" db:"declaration"`

	Status          ApplicationStatus `json:"status" db:"status" example:"pending"`
	ApplicationDate time.Time         `json:"application_date" db:"application_date"`
	ReviewDate      *time.Time        `json:"review_date" db:"review_date"`
	AdminNotes      *string           `json:"admin_notes" db:"admin_notes"`

	DocumentsSubmitted bool       `json:"documents_submitted" db:"documents_submitted"`
	DocumentsUpdatedAt *time.Time `json:"documents_updated_at" db:"documents_updated_at"`

	Version   int       `json:"version" db:"version" example:"1"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName joins the applicant's name parts
func (a *Application) FullName() string {
	name := a.FirstName
	if a.MiddleName != nil && *a.MiddleName != "" {
		name += " " + *a.MiddleName
	}
	return name + " " + a.LastName
}

// ApplicationStatusCounts holds per-status totals
type ApplicationStatusCounts struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// Total sums all statuses
func (c ApplicationStatusCounts) Total() int64 {
	return c.Pending + c.Approved + c.Rejected
}

// Add increments the counter for status by n
func (c *ApplicationStatusCounts) Add(status ApplicationStatus, n int64) {
	switch status {
	case StatusPending:
		c.Pending += n
	case StatusApproved:
		c.Approved += n
	case StatusRejected:
		c.Rejected += n
	}
}
