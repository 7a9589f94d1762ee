// Package server wires the HTTP API: routing, bearer auth, and capability
// gating over the identity, member, role, and payment services.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"membership-backoffice/internal/access"
)

// NewRouter builds the API router. Auth endpoints and the health check are
// public; everything else requires a Bearer token and a capability grant.
func NewRouter(h *Handlers, validator AccessValidator, roles RoleResolver) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(traceRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/v1/auth/login", h.login)
	r.Post("/v1/auth/refresh", h.refresh)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth(validator))
		r.Post("/v1/auth/logout", h.logout)

		r.With(requireCapability(roles, access.CapabilityUsers)).
			Get("/v1/members", h.listMembers)

		r.With(requireCapability(roles, access.CapabilityFinancials)).
			Post("/v1/payment-requests", h.createPaymentRequest)
		r.With(requireCapability(roles, access.CapabilityFinancials)).
			Get("/v1/payment-requests", h.listPendingPaymentRequests)

		r.With(requireCapability(roles, access.CapabilitySystem)).
			Get("/v1/audit-logs", h.listAuditLogs)
	})

	return r
}
