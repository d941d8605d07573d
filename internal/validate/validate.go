// Package validate wraps go-playground/validator with the custom tags the
// booking API needs and turns its errors into field/message pairs.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationErrors is returned whenever input is malformed or out of range.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Field builds a single-field ValidationErrors.
func Field(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

// IsValidation reports whether err carries ValidationErrors.
func IsValidation(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// Validator is safe for concurrent use once built.
type Validator struct {
	v *validator.Validate
}

// New registers the custom tags:
//
//	ymd         – YYYY-MM-DD calendar date
//	hhmm        – HH:MM 24h time of day
//	ticket_type – one of standard, member, group, family
//	slug        – lower-case letters, digits and dashes
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names so messages match what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			name = f.Name
		}
		return name
	})
	mustRegister(v, "ymd", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	mustRegister(v, "hhmm", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		_, err := time.Parse("15:04", s)
		return err == nil && len(s) == 5
	})
	mustRegister(v, "ticket_type", func(fl validator.FieldLevel) bool {
		return model.TicketType(fl.Field().String()).Valid()
	})
	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return false
		}
		for _, r := range s {
			if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
				return false
			}
		}
		return true
	})
	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// Struct validates s and returns ValidationErrors on failure.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "ymd":
		return "must be a date in YYYY-MM-DD format"
	case "hhmm":
		return "must be a time in HH:MM format"
	case "ticket_type":
		return "must be one of standard, member, group, family"
	case "oneof":
		return "must be one of " + fe.Param()
	case "slug":
		return "must contain only lower-case letters, digits and dashes"
	}
	return "is invalid"
}
