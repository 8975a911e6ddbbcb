// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate checks request payloads and collects field-level errors
// into a single [apperr.AppError].
//
// # Architecture
//
// Two entry points share the same error shape:
//
//   - [Struct] runs go-playground struct tags on decoded DTOs (format rules).
//   - [Validator] is a chainable checker for rules that depend on several
//     fields at once, used in the service layer.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/taibuivan/certly/internal/platform/apperr"
)

var (
	codeRegex  = regexp.MustCompile(`^[A-Za-z]{3}[0-9]{3}[A-Za-z]{3}$`)
	tokenRegex = regexp.MustCompile(`^[A-Za-z0-9]{32}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.BadRequest("body")

	engine = newEngine()
)

// # Struct Tags

func newEngine() *validator.Validate {
	engine := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names, not Go field names
	engine.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := registerRules(engine); err != nil {
		panic("validate: rule registration failed: " + err.Error())
	}
	return engine
}

func registerRules(engine *validator.Validate) error {
	if err := engine.RegisterValidation("certcode", isCertCode); err != nil {
		return err
	}
	return engine.RegisterValidation("certtoken", isCertToken)
}

// isCertCode accepts three letters, three digits, three letters in any case.
func isCertCode(field validator.FieldLevel) bool {
	return codeRegex.MatchString(field.Field().String())
}

func isCertToken(field validator.FieldLevel) bool {
	return tokenRegex.MatchString(field.Field().String())
}

/*
Struct validates target against its `validate` struct tags.

Returns:
  - error: nil, or a bad_request [apperr.AppError] with one detail per failed field
*/
func Struct(target any) error {
	err := engine.Struct(target)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return apperr.BadRequest("field values")
	}

	details := make([]apperr.FieldError, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		details = append(details, apperr.FieldError{
			Field:   fieldError.Field(),
			Message: describe(fieldError),
		})
	}
	return apperr.BadRequest("field values", details...)
}

func describe(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return fmt.Sprintf("Minimum %s characters", fieldError.Param())
	case "max":
		return fmt.Sprintf("Maximum %s characters", fieldError.Param())
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fieldError.Param(), " ", ", ")
	case "certcode":
		return "Must be 3 letters, 3 digits, 3 letters"
	case "certtoken":
		return "Must be 32 letters or digits"
	default:
		return "Invalid value"
	}
}

// # Chainable Validator

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("id", purpose == "delete" && id == "", "Required for delete")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a bad_request [apperr.AppError] if any rules failed, or nil.
//
// This is the only output method; call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.BadRequest("field values", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}
