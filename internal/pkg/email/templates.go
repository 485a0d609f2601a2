package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/eston/admissions/internal/app/models"
)

// Branding carries the institution details rendered into outgoing mail
type Branding struct {
	CollegeName     string
	Website         string
	AdmissionsDesk  string
	RegistrationFee string
}

// ApplicationConfirmation is sent to the applicant after a successful submission
func ApplicationConfirmation(app *models.Application, b Branding) *Message {
	firstName := html.EscapeString(app.FirstName)
	course := html.EscapeString(app.CourseName)

	var sb strings.Builder
	fmt.Fprintf(&sb, "<p>Dear %s,</p>\n", firstName)
	fmt.Fprintf(&sb, "<p>We have received your application to %s. This is just the first step in the application process.</p>\n", course)
	fmt.Fprintf(&sb, "<p>To complete the application process, you are required to visit our admissions desk at the address below "+
		"with your registration fee (%s), two passport size photos and any government issued identification card.</p>\n",
		html.EscapeString(b.RegistrationFee))
	fmt.Fprintf(&sb, "<p><strong>Admissions Desk</strong><br>%s</p>\n",
		strings.ReplaceAll(html.EscapeString(b.AdmissionsDesk), "\n", "<br>"))
	sb.WriteString("<p>Thank you and we hope to see you soon.</p>\n")
	sb.WriteString(signature(b))

	text := fmt.Sprintf("Dear %s,\n\nWe have received your application to %s. "+
		"Please visit our admissions desk with your registration fee (%s), two passport size photos "+
		"and any government issued identification card.\n\n%s\n\n%s\n",
		app.FirstName, app.CourseName, b.RegistrationFee, b.AdmissionsDesk, b.CollegeName)

	return &Message{
		To:       []string{app.Email},
		Subject:  fmt.Sprintf("Received %s Admission Form", b.CollegeName),
		HTMLBody: sb.String(),
		TextBody: text,
	}
}

// NewApplicationBroadcast notifies staff that an application arrived. Recipients are
// placed in Bcc so addresses are not disclosed to each other.
func NewApplicationBroadcast(app *models.Application, recipients []string, b Branding) *Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<p>A new application has been submitted to %s.</p>\n", html.EscapeString(b.CollegeName))
	fmt.Fprintf(&sb, "<p><strong>Applicant:</strong> %s<br><strong>Course:</strong> %s<br><strong>Reference:</strong> #%d</p>\n",
		html.EscapeString(app.FullName()), html.EscapeString(app.CourseName), app.ID)
	sb.WriteString(signature(b))

	return &Message{
		Bcc:      recipients,
		Subject:  "New Application Submitted",
		HTMLBody: sb.String(),
		TextBody: fmt.Sprintf("A new application has been submitted to %s.\nApplicant: %s\nCourse: %s\nReference: #%d\n",
			b.CollegeName, app.FullName(), app.CourseName, app.ID),
	}
}

func signature(b Branding) string {
	if b.Website == "" {
		return fmt.Sprintf("<p>%s</p>\n", html.EscapeString(b.CollegeName))
	}
	site := html.EscapeString(b.Website)
	label := strings.TrimPrefix(strings.TrimPrefix(site, "https://"), "http://")
	return fmt.Sprintf("<p>%s | <a href=\"%s\">%s</a></p>\n", html.EscapeString(b.CollegeName), site, label)
}
