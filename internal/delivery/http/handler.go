package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vogiaan1904/spotqueue/internal/service"
	pkgErrors "github.com/vogiaan1904/spotqueue/pkg/errors"
	"github.com/vogiaan1904/spotqueue/pkg/logger"
	"github.com/vogiaan1904/spotqueue/pkg/response"
)

type HTTPHandler struct {
	svc       service.QueueService
	refresher service.DirectoryRefresher
	l         logger.Logger
	validator *validator.Validate
}

// NewHTTPHandler builds the JSON API. refresher may be nil.
func NewHTTPHandler(svc service.QueueService, refresher service.DirectoryRefresher, l logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:       svc,
		refresher: refresher,
		l:         l,
		validator: validator.New(),
	}
}

type verifyPassRequest struct {
	Pass string `json:"pass" validate:"required"`
}

// HealthCheck handles health check requests
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "healthy",
		"service": "spotqueue-service",
		"version": "1.0.0",
	}
	if h.refresher != nil {
		body["directory"] = h.refresher.GetStatus()
	}
	response.JSON(w, http.StatusOK, body)
}

func (h *HTTPHandler) ListCenters(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.svc.ListCenters(r.Context()))
}

func (h *HTTPHandler) GetCenter(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCenter(r.Context(), chi.URLParam(r, "centerId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	response.OK(w, c)
}

func (h *HTTPHandler) RefreshDirectory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RefreshDirectory(r.Context()); err != nil {
		h.respondError(w, r, err)
		return
	}
	response.OK(w, h.svc.ListCenters(r.Context()))
}

func (h *HTTPHandler) BookTicket(w http.ResponseWriter, r *http.Request) {
	var req service.BookTicketInput
	if !h.decode(w, r, &req) {
		return
	}

	out, err := h.svc.BookTicket(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	response.Created(w, out)
}

func (h *HTTPHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.svc.ListTickets(r.Context()))
}

func (h *HTTPHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetTicket(r.Context(), chi.URLParam(r, "ticketId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	response.OK(w, t)
}

func (h *HTTPHandler) CancelTicket(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.CancelTicket(r.Context(), chi.URLParam(r, "ticketId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	response.OK(w, t)
}

func (h *HTTPHandler) UpdateNotificationLeadTime(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateLeadTimeInput
	if !h.decode(w, r, &req) {
		return
	}

	t, err := h.svc.UpdateNotificationLeadTime(r.Context(), chi.URLParam(r, "ticketId"), req.NotifyBeforeMinutes)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	response.OK(w, t)
}

func (h *HTTPHandler) VerifyTicketPass(w http.ResponseWriter, r *http.Request) {
	var req verifyPassRequest
	if !h.decode(w, r, &req) {
		return
	}

	v, err := h.svc.VerifyTicketPass(r.Context(), req.Pass)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	response.OK(w, v)
}

func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.l.Debugf(r.Context(), "delivery.http.decode: %v", err)
		response.HttpError(w, errInvalidBody)
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.l.Debugf(r.Context(), "delivery.http.decode: %v", err)
		response.JSON(w, http.StatusBadRequest, response.Resp{
			ErrorCode: errValidation.Code,
			Message:   errValidation.Message,
			Errors:    validationErrors(err),
		})
		return false
	}

	return true
}

func validationErrors(err error) map[string]string {
	out := map[string]string{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return out
	}
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	mapped := h.mapHTTPError(err)
	if _, ok := mapped.(*pkgErrors.HTTPError); !ok {
		h.l.Errorf(r.Context(), "delivery.http: %s %s: %v", r.Method, r.URL.Path, err)
	}
	response.HttpError(w, mapped)
}
