package req

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xy-planning-network/trailhead"
)

// A ValidationError is an issue with a concrete value not matching the rule set on its field.
type ValidationError struct {
	Field string `json:"field"`
	Got   any    `json:"got"`
	Rule  string `json:"rule,omitempty"`
}

// Describe phrases the ValidationError for the person who submitted the payload,
// leaving out the value they sent.
func (ve ValidationError) Describe() string {
	rule, _, _ := strings.Cut(ve.Rule, "; ")
	switch {
	case rule == "required":
		return ve.Field + " is required"
	case rule == "email":
		return ve.Field + " must be a valid email"
	case strings.HasPrefix(rule, "min="):
		return fmt.Sprintf("%s must be at least %s characters", ve.Field, strings.TrimPrefix(rule, "min="))
	case strings.HasPrefix(rule, "max="):
		return fmt.Sprintf("%s must be at most %s characters", ve.Field, strings.TrimPrefix(rule, "max="))
	default:
		return fmt.Sprintf("%s is invalid (%s)", ve.Field, rule)
	}
}

// ValidationErrors is a set of ValidationError.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msg := fmt.Sprintf("field=%q rule=%q got=%q", err.Field, err.Rule, fmt.Sprint(err.Got))
		msgs = append(msgs, msg)
	}

	return strings.Join(msgs, "\n")
}

// Describe joins the descriptions of each ValidationError into one sentence.
func (v ValidationErrors) Describe() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Describe())
	}

	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) MarshalJSON() ([]byte, error) {
	var errs struct {
		E []ValidationError `json:"validationErrors,omitempty"`
	}

	errs.E = append(errs.E, v...)

	return json.Marshal(errs)
}

func (ValidationErrors) Unwrap() error { return trailhead.ErrNotValid }
