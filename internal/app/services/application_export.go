package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/eston/admissions/internal/app/models"
)

var exportHeader = []string{
	"ID", "First Name", "Middle Name", "Last Name", "Email", "Phone Number", "Gender", "Date of Birth",
	"Residential Address", "Street Address", "Street Address Line 2", "City/State/Province", "Country",
	"Course", "Institution Name", "Highest Education", "Reason for Course", "How did you hear",
	"Status", "Application Date", "Review Date", "Admin Notes", "Documents Submitted",
}

// WriteApplicationsCSV writes apps as CSV with a header row
func WriteApplicationsCSV(w io.Writer, apps []*models.Application) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("error writing csv header: %w", err)
	}

	for _, app := range apps {
		record := []string{
			strconv.FormatInt(app.ID, 10),
			app.FirstName,
			deref(app.MiddleName),
			app.LastName,
			app.Email,
			deref(app.PhoneNumber),
			app.Gender,
			app.DateOfBirth.Format("2006-01-02"),
			app.ResidentialAddress,
			app.StreetAddress,
			app.StreetAddressLine2,
			app.CityStateProvince,
			app.Country,
			app.CourseName,
			app.InstitutionName,
			app.HighestEducation,
			app.ReasonForCourse,
			app.HowHear,
			string(app.Status),
			app.ApplicationDate.UTC().Format(time.RFC3339),
			formatOptionalTime(app.ReviewDate),
			deref(app.AdminNotes),
			yesNo(app.DocumentsSubmitted),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("error writing csv row for application %d: %w", app.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
