package account

import (
	"errors"
	"fmt"

	"github.com/xy-planning-network/trailhead"
)

var (
	ErrBadCredentials = errors.New("bad credentials")
	ErrNoAccess       = fmt.Errorf("%w: access revoked", ErrBadCredentials)
	ErrExists         = fmt.Errorf("%w: user already exists", trailhead.ErrExists)
	ErrNotExist       = fmt.Errorf("%w: no such user", trailhead.ErrNotExist)
)
