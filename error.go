package trailhead

import "errors"

var (
	ErrBadAny         = errors.New("bad argument")
	ErrBadConfig      = errors.New("bad config")
	ErrBadFormat      = errors.New("bad format")
	ErrExists         = errors.New("exists")
	ErrMissingData    = errors.New("missing data")
	ErrNotExist       = errors.New("not exist")
	ErrNotImplemented = errors.New("not implemented")
	ErrNotValid       = errors.New("invalid")
	ErrUnexpected     = errors.New("unexpected")
)
