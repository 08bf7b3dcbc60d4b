// Package validator runs struct tag validation for request types. A single
// shared instance is used because go-playground caches struct metadata per
// validator.
package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	ierr "github.com/printprice/printprice/internal/errors"
)

var instance = sync.OnceValue(func() *validator.Validate {
	v := validator.New()

	// Report fields under their wire names so error messages read like the
	// request the client actually sent. Fields without either tag keep their
	// Go name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	return v
})

// ValidateRequest checks req against its validate struct tags. Failures are
// marked as validation errors, named by the first violated constraint and
// carrying a readable message per field in the reportable details, so
// handlers can return them to clients as-is.
func ValidateRequest(req interface{}) error {
	err := instance().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !ierr.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return ierr.WithError(err).
			WithHint("Request validation failed").
			Mark(ierr.ErrValidation)
	}

	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fieldMessage(fe)
	}

	// Fields validate in declaration order, so the first failure is stable.
	return ierr.NewError(fieldMessage(fieldErrs[0])).
		WithHint("Request validation failed").
		WithReportableDetails(details).
		Mark(ierr.ErrValidation)
}

// fieldMessage renders one constraint violation the way a person would say
// it.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
