package http

import (
	"errors"
	"net/http"

	"github.com/vogiaan1904/spotqueue/internal/service"
	pkgErrors "github.com/vogiaan1904/spotqueue/pkg/errors"
)

var (
	errCenterNotFound       = pkgErrors.NewHTTPError(40401, "Center not found", http.StatusNotFound)
	errTicketNotFound       = pkgErrors.NewHTTPError(40402, "Ticket not found", http.StatusNotFound)
	errInvalidTransition    = pkgErrors.NewHTTPError(40901, "Ticket cannot change to the requested status", http.StatusConflict)
	errPassRevoked          = pkgErrors.NewHTTPError(40902, "Ticket is no longer active", http.StatusConflict)
	errDirectoryUnavailable = pkgErrors.NewHTTPError(50301, "Center directory is unavailable, try again", http.StatusServiceUnavailable)
	errInvalidLeadTime      = pkgErrors.NewHTTPError(40001, "Notification lead time must not be negative", http.StatusBadRequest)
	errInvalidBody          = pkgErrors.NewHTTPError(40002, "Invalid request body", http.StatusBadRequest)
	errValidation           = pkgErrors.NewHTTPError(40003, "Validation failed", http.StatusBadRequest)
	errPassInvalid          = pkgErrors.NewHTTPError(40004, "Ticket pass is invalid", http.StatusBadRequest)
)

func (h *HTTPHandler) mapHTTPError(err error) error {
	switch {
	case errors.Is(err, service.ErrCenterNotFound):
		return errCenterNotFound
	case errors.Is(err, service.ErrTicketNotFound):
		return errTicketNotFound
	case errors.Is(err, service.ErrInvalidTransition):
		return errInvalidTransition
	case errors.Is(err, service.ErrPassRevoked):
		return errPassRevoked
	case errors.Is(err, service.ErrDirectoryUnavailable):
		return errDirectoryUnavailable
	case errors.Is(err, service.ErrInvalidLeadTime):
		return errInvalidLeadTime
	case errors.Is(err, service.ErrPassInvalid), errors.Is(err, service.ErrPassEmpty):
		return errPassInvalid
	default:
		return err
	}
}
