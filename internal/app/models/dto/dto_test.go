package dto

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eston/admissions/internal/app/models"
	"github.com/eston/admissions/internal/pkg/validation"
)

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, validation.Register(v))
	return v
}

func strPtr(s string) *string { return &s }

func validSubmission() SubmitApplicationRequest {
	return SubmitApplicationRequest{
		FirstName:          " Ama ",
		MiddleName:         strPtr("  "),
		LastName:           "Mensah",
		Email:              "Ama.Mensah@Example.com",
		PhoneNumber:        strPtr("+233201234567"),
		Gender:             "Female",
		DateOfBirth:        "2001-04-12",
		ResidentialAddress: "12 Ring Road",
		StreetAddress:      "Ring Road",
		StreetAddressLine2: "Osu",
		CityStateProvince:  "Accra",
		Country:            "Ghana",
		Course:             " Diploma in Data Science ",
		InstitutionName:    "Accra Academy",
		HighestEducation:   "WASSCE",
		ReasonForCourse:    "I like data",
		HowHear:            "Social Media",
		Declaration:        true,
	}
}

func TestSubmitApplicationRequest_Validation(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name      string
		mutate    func(r *SubmitApplicationRequest)
		wantField string
	}{
		{name: "valid", mutate: func(r *SubmitApplicationRequest) {}},
		{name: "declaration false", mutate: func(r *SubmitApplicationRequest) { r.Declaration = false }, wantField: "declaration"},
		{name: "bad email", mutate: func(r *SubmitApplicationRequest) { r.Email = "not-an-email" }, wantField: "email"},
		{name: "padded email", mutate: func(r *SubmitApplicationRequest) { r.Email = " ama@example.com " }, wantField: "email"},
		{name: "bad date", mutate: func(r *SubmitApplicationRequest) { r.DateOfBirth = "12/04/2001" }, wantField: "dateOfBirth"},
		{name: "blank course", mutate: func(r *SubmitApplicationRequest) { r.Course = "   " }, wantField: "course"},
		{name: "zero course id", mutate: func(r *SubmitApplicationRequest) { id := int64(0); r.CourseID = &id }, wantField: "courseId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSubmission()
			tt.mutate(&req)
			err := v.Struct(req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			detail := HandleValidationError(err)
			assert.Equal(t, ErrorCodeValidationFailed, detail.Code)
			assert.Equal(t, tt.wantField, detail.Field)
		})
	}
}

func TestSubmitApplicationRequest_ToModel(t *testing.T) {
	req := validSubmission()
	app := req.ToModel()

	assert.Equal(t, "Ama", app.FirstName)
	assert.Nil(t, app.MiddleName, "blank optional values are dropped")
	assert.Equal(t, "ama.mensah@example.com", app.Email)
	assert.Equal(t, "Diploma in Data Science", app.CourseName)
	assert.Equal(t, time.Date(2001, 4, 12, 0, 0, 0, 0, time.UTC), app.DateOfBirth)
	assert.Equal(t, models.StatusPending, app.Status)
	assert.True(t, app.Declaration)
}

func TestUpdateCourseRequest_Changes(t *testing.T) {
	fee := 1200.5
	active := false
	req := UpdateCourseRequest{
		Code:        strPtr(" dds "),
		Description: strPtr(""),
		Fee:         &fee,
		IsActive:    &active,
	}

	changes := req.Changes()
	assert.Len(t, changes, 4)
	assert.Equal(t, "DDS", changes["code"])
	assert.Nil(t, changes["description"])
	assert.Contains(t, changes, "description", "an empty string clears the column")
	assert.Equal(t, 1200.5, changes["fee"])
	assert.Equal(t, false, changes["is_active"])

	assert.Empty(t, (&UpdateCourseRequest{}).Changes())
}

func TestCreateCourseRequest_ToModel(t *testing.T) {
	req := CreateCourseRequest{Name: " Diploma in Web Development ", Code: "dwd"}
	course := req.ToModel()

	assert.Equal(t, "Diploma in Web Development", course.Name)
	assert.Equal(t, "DWD", course.Code)
	assert.True(t, course.IsActive)
}

func TestUpdateProfileRequest_IsEmpty(t *testing.T) {
	assert.True(t, (&UpdateProfileRequest{}).IsEmpty())
	assert.False(t, (&UpdateProfileRequest{Phone: strPtr("")}).IsEmpty())
}

func TestHandleValidationError_JSONErrors(t *testing.T) {
	var req UpdateDocumentsRequest
	err := json.Unmarshal([]byte(`{"documents_submitted":"yes"}`), &req)
	require.Error(t, err)

	detail := HandleValidationError(err)
	assert.Equal(t, "documents_submitted", detail.Field)
	assert.Equal(t, "documents_submitted must be of type bool", detail.Details)

	err = json.Unmarshal([]byte(`{`), &req)
	require.Error(t, err)
	detail = HandleValidationError(err)
	assert.Equal(t, ErrorCodeValidationFailed, detail.Code)

	detail = HandleValidationError(errors.New("EOF"))
	assert.Equal(t, "EOF", detail.Details)
}

func TestHandleValidationError_MultipleFields(t *testing.T) {
	v := newValidator(t)
	err := v.Struct(RegisterRequest{Email: "bad", Password: "123"})
	detail := HandleValidationError(err)

	fields, ok := detail.Details.([]FieldError)
	require.True(t, ok)
	assert.Empty(t, detail.Field, "field is only set for a single failure")
	assert.Contains(t, fields, FieldError{Field: "password", Message: "password must be at least 6 characters"})
	assert.Contains(t, fields, FieldError{Field: "email", Message: "email must be a valid email address"})
}

func TestResponses(t *testing.T) {
	resp := NewPaginatedResponse([]int{1, 2}, PaginationInfo{CurrentPage: 1, TotalPages: 1, PageSize: 10, TotalItems: 2})
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Pagination)

	msg := NewMessageResponse("done")
	assert.Equal(t, SuccessResponse{Message: "done"}, msg.Data)

	errResp := NewErrorResponse(NewErrorDetail(ErrorCodeConflict, "conflict").WithField("version"))
	assert.False(t, errResp.Success)
	assert.Equal(t, "version", errResp.Error.Field)
	assert.Equal(t, ErrorSeverityError, errResp.Error.Severity)
}
