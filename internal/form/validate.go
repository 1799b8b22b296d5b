package form

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the only accepted birthday format.
const DateLayout = "2006-01-02"

// Field names as they appear in error maps and in SetField.
// They match the json tags on types.Student.
const (
	FieldID       = "id"
	FieldName     = "name"
	FieldGender   = "gender"
	FieldBirthday = "birthday"
	FieldHometown = "hometown"
	FieldAddress  = "address"
	FieldAge      = "age"
)

var labels = map[string]string{
	FieldID:       "student id",
	FieldName:     "student name",
	FieldGender:   "gender",
	FieldBirthday: "birthday",
	FieldHometown: "hometown",
	FieldAddress:  "address",
	FieldAge:      "age",
}

// Errors maps a field name to a human-readable message.
// It implements error so Submit can hand it back directly.
type Errors map[string]string

// Error joins the messages in field order, e.g.
//
//	"id: student id already exists; name: student name is required"
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

// newValidator returns a validator whose field names are the json tag
// names and which knows the "notfuture" rule, judged against now.
func newValidator(now func() time.Time) *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("notfuture", notFuture(now))

	return v
}

// notFuture accepts a YYYY-MM-DD date that is today or earlier, in the
// clock's own location.
func notFuture(now func() time.Time) validator.Func {
	return func(fl validator.FieldLevel) bool {
		t := now()
		d, err := time.ParseInLocation(DateLayout, fl.Field().String(), t.Location())
		if err != nil {
			return false
		}
		today := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return !d.After(today)
	}
}

// message converts one failing rule into the text shown next to the field.
func message(fe validator.FieldError) string {
	label, ok := labels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", label)
	case "notfuture":
		return fmt.Sprintf("%s cannot be in the future", label)
	case "min":
		return fmt.Sprintf("%s must be %s or greater", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func alreadyExists(field string) string {
	return fmt.Sprintf("%s already exists", labels[field])
}
