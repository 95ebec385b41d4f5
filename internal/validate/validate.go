// Package validate checks submitted forms against struct tags and reports
// failures as an apperror validation error keyed by form field name.
//
//	type LoginForm struct {
//		Email    string `form:"email"    validate:"required,email"`
//		Password string `form:"password" validate:"required"`
//	}
//
// The "form" tag names the field in the error map, so templates can show the
// message next to the matching input.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/bloghub/internal/apperror"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return strings.ToLower(fld.Name)
			}
			return name
		})
		instance = v
	})
	return instance
}

// Struct validates s. It returns nil, an *apperror.AppError wrapping
// apperror.ErrValidation with one message per failing field, or a plain
// error when s is not a struct.
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = message(fe)
		}
	}
	return apperror.Invalid(fields)
}

func message(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}

	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "Please enter a valid email address."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return label + " must be a URL."
	}
	return fmt.Sprintf("%s is invalid.", label)
}
