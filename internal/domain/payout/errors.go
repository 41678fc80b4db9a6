package payout

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid payout request")
	ErrNoRecords      = errors.New("no records selected")
)
