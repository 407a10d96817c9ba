package models

import "errors"

var (
	ErrDirectoryUnavailable = errors.New("service center directory unavailable")
	ErrCenterNotFound       = errors.New("service center not found")
	ErrInvalidCenter        = errors.New("invalid service center record")

	ErrTicketNotFound    = errors.New("ticket not found")
	ErrInvalidTransition = errors.New("invalid ticket status transition")
	ErrInvalidLeadTime   = errors.New("notification lead time must not be negative")
)
