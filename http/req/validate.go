package req

import (
	"errors"
	"reflect"
	"strings"

	v10 "github.com/go-playground/validator/v10"
	"github.com/xy-planning-network/trailhead"
)

type validator struct {
	valid *v10.Validate
}

// newValidator constructs a validator naming fields after their "json" or "schema" tags
// and understanding the "enum" rule.
func newValidator() validator {
	v := v10.New()
	v.RegisterValidation("enum", validateEnumerable)
	v.RegisterTagNameFunc(tagName)

	return validator{v}
}

// tagName prefers the name a field has in JSON over its name in a form.
func tagName(field reflect.StructField) string {
	for _, tag := range []string{"json", "schema"} {
		name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}

	return ""
}

// validate checks the fields on structPtr match the rules set by "validate" struct tags.
// On failure, validate translates each issue to a ValidationError,
// returning them all as ValidationErrors.
func (v validator) validate(structPtr any) error {
	err := v.valid.Struct(structPtr)
	if err == nil {
		return nil
	}

	var errs v10.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	validateErrs := make(ValidationErrors, 0, len(errs))
	for _, fe := range errs {
		// Drop the name of the top-level struct.
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}

		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		rule += "; " + fe.Type().String()

		validateErrs = append(validateErrs, ValidationError{
			Field: field,
			Got:   fe.Value(),
			Rule:  rule,
		})
	}

	return validateErrs
}

// validateEnumerable validates whether field is a valid Enumerable or slice of valid Enumerable.
func validateEnumerable(fl v10.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return checkEnums(field)
	}

	vals := make([]reflect.Value, 0, field.Len())
	for i := 0; i < field.Len(); i++ {
		vals = append(vals, field.Index(i))
	}

	return checkEnums(vals...)
}

// checkEnums asserts each [reflect.Value] is an Enumerable and valid.
func checkEnums(items ...reflect.Value) bool {
	if len(items) == 0 {
		return false
	}

	for _, item := range items {
		enum, ok := item.Interface().(trailhead.Enumerable)
		if !ok || enum.Valid() != nil {
			return false
		}
	}

	return true
}
