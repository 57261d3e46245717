package gate

import "fmt"

// An Outcome is what a Gate decided should happen to a request.
type Outcome int

const (
	// Allow lets the request continue to routing.
	Allow Outcome = iota

	// Redirect sends the client elsewhere.
	Redirect
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// A Decision is the result of gating a single request.
// Target is only set when Outcome is Redirect.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Allowed is the Decision letting a request through.
var Allowed = Decision{Outcome: Allow}

// RedirectTo constructs the Decision sending a request to target.
func RedirectTo(target string) Decision {
	return Decision{Outcome: Redirect, Target: target}
}

// IsAllow asserts whether d lets the request through.
func (d Decision) IsAllow() bool { return d.Outcome == Allow }

// String implements fmt.Stringer.
func (d Decision) String() string {
	if d.IsAllow() {
		return d.Outcome.String()
	}

	return d.Outcome.String() + " " + d.Target
}
