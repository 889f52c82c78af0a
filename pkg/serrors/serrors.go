package serrors

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// BaseError is a coded error surfaced to callers of the core services.
// Code is stable and machine-readable; LocaleKey is an optional message id
// for the presentation layer.
type BaseError struct {
	Code         string
	Message      string
	LocaleKey    string
	TemplateData map[string]string
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	out := *e
	out.TemplateData = data
	return &out
}

// Is matches errors by code so wrapped copies with template data still
// compare equal to their sentinel.
func (e *BaseError) Is(target error) bool {
	other, ok := target.(*BaseError)
	if !ok {
		return false
	}
	return other.Code == e.Code
}

func NewFieldRequiredError(field, localeKey string) *BaseError {
	return &BaseError{
		Code:      "FIELD_REQUIRED",
		Message:   fmt.Sprintf("field %q is required", field),
		LocaleKey: localeKey,
		TemplateData: map[string]string{
			"field": field,
		},
	}
}

// ValidationErrors maps DTO field names to their coded errors.
type ValidationErrors map[string]*BaseError

// First returns the error of the lexicographically first failing field, so a
// multi-field failure surfaces the same error on every run. Nil when empty.
func (v ValidationErrors) First() *BaseError {
	if len(v) == 0 {
		return nil
	}
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return v[fields[0]]
}

// ProcessValidatorErrors converts go-playground validator errors into coded
// errors keyed by field, using getFieldLocaleKey to resolve message ids.
func ProcessValidatorErrors(
	errs validator.ValidationErrors,
	getFieldLocaleKey func(field string) string,
) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, fieldErr := range errs {
		field := fieldErr.Field()
		out[field] = &BaseError{
			Code:      fmt.Sprintf("VALIDATION_%s", fieldErr.Tag()),
			Message:   fmt.Sprintf("field %q failed on the %q rule", field, fieldErr.Tag()),
			LocaleKey: getFieldLocaleKey(field),
			TemplateData: map[string]string{
				"field": field,
				"rule":  fieldErr.Tag(),
				"param": fieldErr.Param(),
			},
		}
	}
	return out
}
