package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	Name        string  `json:"name" binding:"required,notblank"`
	Nickname    *string `json:"nickname" binding:"omitempty,notblank"`
	Declaration bool    `json:"declaration" binding:"accepted"`
	Internal    string  `json:"-"`
	Untagged    string  `binding:"notblank"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, Register(v))
	return v
}

func failedFields(t *testing.T, err error) []string {
	t.Helper()
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+":"+fe.Tag())
	}
	return fields
}

func TestRules(t *testing.T) {
	v := newValidator(t)
	blank := "   "
	nick := "Ama"

	tests := []struct {
		name string
		in   form
		want []string
	}{
		{
			name: "valid",
			in:   form{Name: "Ama", Nickname: &nick, Declaration: true, Untagged: "x"},
		},
		{
			name: "whitespace name",
			in:   form{Name: "  ", Declaration: true, Untagged: "x"},
			want: []string{"name:notblank"},
		},
		{
			name: "blank optional pointer",
			in:   form{Name: "Ama", Nickname: &blank, Declaration: true, Untagged: "x"},
			want: []string{"nickname:notblank"},
		},
		{
			name: "declaration not ticked",
			in:   form{Name: "Ama", Untagged: "x"},
			want: []string{"declaration:accepted"},
		},
		{
			name: "field without json tag reported by Go name",
			in:   form{Name: "Ama", Declaration: true},
			want: []string{"Untagged:notblank"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failedFields(t, v.Struct(tt.in)))
		})
	}
}

func TestRegister_Twice(t *testing.T) {
	v := newValidator(t)
	assert.NoError(t, Register(v))
}
