package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgErrors "github.com/vogiaan1904/spotqueue/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Resp struct {
	ErrorCode int    `json:"error_code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Errors    any    `json:"errors,omitempty"`
}

func parseHttpError(err error) (int, Resp) {
	var parsedErr *pkgErrors.HTTPError
	if errors.As(err, &parsedErr) {
		statusCode := parsedErr.StatusCode
		if statusCode == 0 {
			statusCode = http.StatusBadRequest
		}

		return statusCode, Resp{
			ErrorCode: parsedErr.Code,
			Message:   parsedErr.Message,
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, Resp{
			ErrorCode: http.StatusGatewayTimeout,
			Message:   "Request timed out",
		}
	case errors.Is(err, context.Canceled):
		return 499, Resp{
			ErrorCode: 499,
			Message:   "Request cancelled",
		}
	}

	return http.StatusInternalServerError, Resp{
		ErrorCode: 500,
		Message:   "Internal server error",
	}
}

// HttpError writes err as a JSON error body with the matching status code.
func HttpError(w http.ResponseWriter, err error) {
	statusCode, body := parseHttpError(err)
	JSON(w, statusCode, body)
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Resp{Message: "Success", Data: data})
}

func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Resp{Message: "Success", Data: data})
}

func JSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func ParseGRPCError(err error) error {
	var parsedErr *pkgErrors.GRPCError
	if errors.As(err, &parsedErr) {
		grpcCode := parsedErr.GrpcCode
		if grpcCode == 0 {
			grpcCode = codes.InvalidArgument
		}
		return status.Error(grpcCode, parsedErr.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return status.FromContextError(err).Err()
	}

	return status.Error(codes.Internal, "Internal server error")
}
