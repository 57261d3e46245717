package auth

import "errors"

var (
	ErrBadConfig  = errors.New("bad config")
	ErrNoToken    = errors.New("no token")
	ErrNotValid   = errors.New("not valid")
	ErrUnexpected = errors.New("unexpected")
)
