package gate

import "errors"

var (
	ErrBadConfig = errors.New("bad gate config")
)
