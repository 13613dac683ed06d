package auth

import (
	"errors"
	"fmt"
)

// ErrRejected matches every reason a request is refused a session.
var ErrRejected = errors.New("authentication rejected")

var (
	ErrMissing        = fmt.Errorf("%w: no token presented", ErrRejected)
	ErrInvalidToken   = fmt.Errorf("%w: invalid token", ErrRejected)
	ErrExpired        = fmt.Errorf("%w: token expired", ErrRejected)
	ErrUnknownSubject = fmt.Errorf("%w: unknown subject", ErrRejected)
)
