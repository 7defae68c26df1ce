package client

import "errors"

var (
	ErrUnavailable = errors.New("remote unavailable")
	ErrNoSuchItem  = errors.New("item not in remote catalog")
)
