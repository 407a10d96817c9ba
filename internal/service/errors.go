package service

import (
	"errors"

	"github.com/vogiaan1904/spotqueue/internal/models"
)

var (
	ErrDirectoryUnavailable = models.ErrDirectoryUnavailable
	ErrCenterNotFound       = models.ErrCenterNotFound
	ErrTicketNotFound       = models.ErrTicketNotFound
	ErrInvalidTransition    = models.ErrInvalidTransition
	ErrInvalidLeadTime      = models.ErrInvalidLeadTime

	ErrPassEmpty               = errors.New("ticket pass is empty")
	ErrPassInvalid             = errors.New("ticket pass is invalid")
	ErrPassUnexpectedSignature = errors.New("unexpected ticket pass signing method")
	ErrPassRevoked             = errors.New("ticket is no longer active")

	ErrRefresherRunning    = errors.New("directory refresher is already running")
	ErrRefresherNotRunning = errors.New("directory refresher is not running")
)
