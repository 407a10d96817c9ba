package http

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *HTTPHandler, timeout time.Duration) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/centers", func(r chi.Router) {
			r.Get("/", h.ListCenters)
			r.Post("/refresh", h.RefreshDirectory)
			r.Get("/{centerId}", h.GetCenter)
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", h.ListTickets)
			r.Post("/", h.BookTicket)
			r.Post("/verify-pass", h.VerifyTicketPass)
			r.Get("/{ticketId}", h.GetTicket)
			r.Post("/{ticketId}/cancel", h.CancelTicket)
			r.Put("/{ticketId}/lead-time", h.UpdateNotificationLeadTime)
		})
	})

	return r
}
