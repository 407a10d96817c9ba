package grpc

import (
	"errors"

	"github.com/vogiaan1904/spotqueue/internal/service"
	pkgErrors "github.com/vogiaan1904/spotqueue/pkg/errors"
	"google.golang.org/grpc/codes"
)

var (
	errCenterNotFound       = pkgErrors.NewGRPCError("SPQ001", "Center not found", codes.NotFound)
	errTicketNotFound       = pkgErrors.NewGRPCError("SPQ002", "Ticket not found", codes.NotFound)
	errInvalidTransition    = pkgErrors.NewGRPCError("SPQ003", "Ticket cannot change to the requested status", codes.FailedPrecondition)
	errDirectoryUnavailable = pkgErrors.NewGRPCError("SPQ004", "Center directory is unavailable, try again", codes.Unavailable)
	errInvalidLeadTime      = pkgErrors.NewGRPCError("SPQ005", "Notification lead time must not be negative", codes.InvalidArgument)
	errPassInvalid          = pkgErrors.NewGRPCError("SPQ006", "Ticket pass is invalid", codes.InvalidArgument)
	errPassRevoked          = pkgErrors.NewGRPCError("SPQ007", "Ticket is no longer active", codes.FailedPrecondition)
	errCenterIDRequired     = pkgErrors.NewGRPCError("SPQ008", "center_id is required", codes.InvalidArgument)
	errTicketIDRequired     = pkgErrors.NewGRPCError("SPQ009", "ticket_id is required", codes.InvalidArgument)
	errInvalidNumber        = pkgErrors.NewGRPCError("SPQ010", "Numeric fields must be whole numbers within range", codes.InvalidArgument)
)

func (s *grpcService) mapGRPCError(err error) error {
	switch {
	case errors.Is(err, service.ErrCenterNotFound):
		return errCenterNotFound
	case errors.Is(err, service.ErrTicketNotFound):
		return errTicketNotFound
	case errors.Is(err, service.ErrInvalidTransition):
		return errInvalidTransition
	case errors.Is(err, service.ErrDirectoryUnavailable):
		return errDirectoryUnavailable
	case errors.Is(err, service.ErrInvalidLeadTime):
		return errInvalidLeadTime
	case errors.Is(err, service.ErrPassRevoked):
		return errPassRevoked
	case errors.Is(err, service.ErrPassInvalid), errors.Is(err, service.ErrPassEmpty):
		return errPassInvalid
	default:
		return err
	}
}
