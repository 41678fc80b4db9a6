package payments

import "errors"

var (
	ErrInvalidPayRate = errors.New("invalid pay rate")
	ErrNoPayRate      = errors.New("pay rate not set")
)
