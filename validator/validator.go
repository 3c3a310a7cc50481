package validator

import (
	"errors"
	"fmt"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

var structValidator = playground.New(playground.WithRequiredStructEnabled())

type Validator struct {
	Errors map[string][]string
}

func New() *Validator {
	return &Validator{
		Errors: map[string][]string{},
	}
}

func (v *Validator) AddError(field, message string) {
	if v.Errors == nil {
		v.Errors = make(map[string][]string)
	}
	v.Errors[field] = append(v.Errors[field], message)
}

// Check adds the message to field when ok is false.
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// Struct runs the `validate` struct tags of s and records
// each failure under prefix.FieldName.
func (v *Validator) Struct(prefix string, s any) {
	err := structValidator.Struct(s)
	if err == nil {
		return
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		v.AddError(prefix, err.Error())
		return
	}

	for _, fe := range fieldErrs {
		v.AddError(prefix+"."+fe.Field(), fieldErrorMessage(fe))
	}
}

func fieldErrorMessage(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "url", "http_url":
		return fe.Field() + " must be a valid URL"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed on %q", fe.Field(), fe.Tag())
}

func (v *Validator) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *Validator) First(field string) string {
	if messages, exists := v.Errors[field]; exists && len(messages) != 0 {
		return messages[0]
	}
	return ""
}

func (v *Validator) All(field string) []string {
	if messages, exists := v.Errors[field]; exists && len(messages) != 0 {
		return messages
	}
	return nil
}

func (v *Validator) Error() string {
	if v.HasErrors() {
		var s string
		for field, msgs := range v.Errors {
			s += field + ": \n"
			for _, msg := range msgs {
				s += "\t- " + msg + "\n"
			}
		}
		return strings.TrimSpace(s)
	}
	return ""
}

func (v *Validator) AsError() error {
	if v.HasErrors() {
		return v
	}
	return nil
}
