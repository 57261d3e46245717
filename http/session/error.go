package session

import "errors"

var (
	ErrNotValid = errors.New("not valid")
	ErrNoCSRF   = errors.New("no csrf token")
)
