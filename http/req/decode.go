package req

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gorilla/schema"
	"github.com/xy-planning-network/trailhead"
)

func newFormDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	return dec
}

// translateDecoderError converts an error returned by *schema.Decoder into standardized errors.
// Some *schema.Decoder errors are issues with calling code;
// some errors are unexpected issues;
// still some are mismatches between a request's form values and the expected shape.
func translateDecoderError(err error) error {
	var pkgErrs schema.MultiError
	// NOTE: schema wraps field errors up in a MultiError.
	if !errors.As(err, &pkgErrs) {
		if strings.Contains(err.Error(), "interface must be a pointer to struct") {
			return fmt.Errorf("%w: %s", trailhead.ErrBadAny, err)
		}

		return fmt.Errorf("%w: %s", trailhead.ErrBadFormat, err)
	}

	var validErrs ValidationErrors
	for _, pkgErr := range pkgErrs {
		switch err := pkgErr.(type) {
		case schema.ConversionError:
			validErrs = append(validErrs, ValidationError{
				Field: err.Key,
				// NOTE: for non-slice values, Index is -1.
				Got:  fmt.Sprintf("bad value at index %d", max(0, err.Index)),
				Rule: "must be " + err.Type.String(),
			})

		case schema.EmptyFieldError:
			return fmt.Errorf(`%w: use validate tags to set "required" fields, not schema`, trailhead.ErrNotImplemented)

		case schema.UnknownKeyError:
			validErrs = append(validErrs, ValidationError{
				Field: err.Key,
				Got:   "value is set",
				Rule:  "unexpected key should not be set",
			})

		default:
			// A field lacking a registered schema.Converter only errors once a value for it is set.
			if strings.Contains(err.Error(), "schema: converter not found for") {
				return fmt.Errorf("%w: cannot convert values into unsupported type", trailhead.ErrNotImplemented)
			}

			return fmt.Errorf("%w: %s", trailhead.ErrUnexpected, err)
		}
	}

	return validErrs
}
