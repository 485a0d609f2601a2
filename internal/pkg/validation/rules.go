package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Custom tags usable in `binding` struct tags
const (
	TagNotBlank = "notblank"
	TagAccepted = "accepted"
)

// NotBlank fails strings that are empty after trimming whitespace. Nil pointers are
// left to `required`/`omitempty`.
func NotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

// Accepted passes only a boolean true, the way a ticked declaration box arrives
func Accepted(fl validator.FieldLevel) bool {
	field := fl.Field()
	return field.Kind() == reflect.Bool && field.Bool()
}

// JSONTagName reports fields by their JSON name so errors match the request payload
func JSONTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// Register installs the custom tags and JSON field naming on v
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(JSONTagName)

	if err := v.RegisterValidation(TagNotBlank, NotBlank); err != nil {
		return fmt.Errorf("register %s: %w", TagNotBlank, err)
	}
	// accepted must run on false values, which validator treats as empty
	if err := v.RegisterValidation(TagAccepted, Accepted, true); err != nil {
		return fmt.Errorf("register %s: %w", TagAccepted, err)
	}
	return nil
}
