package domain

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields under their JSON names so callers can key messages by form field
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsInf(f, 0) && !math.IsNaN(f)
	})
	return v
}

// ValidateDraft trims the draft and checks it before any network call.
// It returns the normalized draft, and a *ValidationError keyed by JSON field name on failure.
func ValidateDraft(d ProductDraft) (ProductDraft, error) {
	d = d.Normalize()
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return d, err
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = msgForTag(fe)
		}
		return d, NewValidationError(fields)
	}
	return d, nil
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.StructField())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.StructField(), fe.Param())
	case "finite":
		return fmt.Sprintf("%s must be a finite number", fe.StructField())
	default:
		return fmt.Sprintf("%s failed on '%s' validation", fe.StructField(), fe.Tag())
	}
}
