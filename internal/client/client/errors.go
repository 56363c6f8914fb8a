package client

import "errors"

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("listing belongs to another seller")
	ErrRejected     = errors.New("rejected by server")
)
