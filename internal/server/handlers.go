package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	auditrepo "membership-backoffice/internal/audit/repository"
	"membership-backoffice/internal/authn"
	"membership-backoffice/internal/credentials"
	identityservice "membership-backoffice/internal/identity/service"
	memberrepo "membership-backoffice/internal/member/repository"
	paymentdomain "membership-backoffice/internal/payments/domain"
	paymentservice "membership-backoffice/internal/payments/service"
)

// Handlers carries the services the HTTP routes delegate to.
type Handlers struct {
	verifier  authn.MemberVerifier
	deriver   *credentials.Deriver
	identity  *identityservice.Service
	members   memberrepo.Repository
	payments  *paymentservice.Service
	audit     authn.AuditLogger
	auditLogs auditrepo.Repository
}

func NewHandlers(verifier authn.MemberVerifier, deriver *credentials.Deriver, identity *identityservice.Service, members memberrepo.Repository, payments *paymentservice.Service, audit authn.AuditLogger, auditLogs auditrepo.Repository) *Handlers {
	return &Handlers{
		verifier:  verifier,
		deriver:   deriver,
		identity:  identity,
		members:   members,
		payments:  payments,
		audit:     audit,
		auditLogs: auditLogs,
	}
}

type loginRequest struct {
	MemberNumber string `json:"member_number"`
}

type sessionResponse struct {
	SessionID    string    `json:"session_id"`
	SubjectID    string    `json:"subject_id"`
	MemberNumber string    `json:"member_number"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func toSessionResponse(s *authn.Session) sessionResponse {
	return sessionResponse{
		SessionID:    s.ID,
		SubjectID:    s.SubjectID,
		MemberNumber: s.MemberNumber,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.ExpiresAt,
	}
}

// login runs the full sign-in flow: verify the member number, derive
// credentials, exchange them for a session. Each request gets its own session
// store so one caller's state never touches another's.
func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MemberNumber == "" {
		writeError(w, http.StatusBadRequest, "member_number is required")
		return
	}

	store := authn.NewStore(h.verifier, h.deriver, h.identity, nil, h.audit)
	if err := store.SignIn(r.Context(), req.MemberNumber); err != nil {
		snap := store.Snapshot()
		status := http.StatusUnauthorized
		switch snap.Reason {
		case authn.ReasonNetwork:
			status = http.StatusServiceUnavailable
		case authn.ReasonUnexpected:
			status = http.StatusInternalServerError
		}
		writeError(w, status, err.Error())
		return
	}
	snap := store.Snapshot()
	writeJSON(w, http.StatusOK, toSessionResponse(snap.Session))
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := GetSessionID(r.Context())
	subjectID, _ := GetSubjectID(r.Context())
	// Sign-out is soft: cleanup failures still count as logged out.
	if err := h.identity.SignOut(r.Context(), sessionID); err != nil {
		writeJSON(w, http.StatusOK, map[string]bool{"signed_out": true})
		return
	}
	if h.audit != nil && subjectID != "" {
		h.audit.LogEvent(r.Context(), subjectID, "logout", "session", "")
	}
	writeJSON(w, http.StatusOK, map[string]bool{"signed_out": true})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handlers) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	session, err := h.identity.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

type memberResponse struct {
	ID           string `json:"id"`
	MemberNumber string `json:"member_number"`
	FullName     string `json:"full_name"`
	Email        string `json:"email,omitempty"`
	Status       string `json:"status"`
}

func (h *Handlers) listMembers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	members, err := h.members.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse{
			ID:           m.ID,
			MemberNumber: m.MemberNumber,
			FullName:     m.FullName,
			Email:        m.Email,
			Status:       string(m.Status),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": out})
}

type createPaymentRequest struct {
	MemberID      string  `json:"member_id"`
	MemberNumber  string  `json:"member_number"`
	Amount        float64 `json:"amount"`
	PaymentType   string  `json:"payment_type"`
	PaymentMethod string  `json:"payment_method"`
	CollectorName string  `json:"collector_name"`
}

type paymentRequestResponse struct {
	ID            string    `json:"id"`
	MemberID      string    `json:"member_id"`
	MemberNumber  string    `json:"member_number"`
	Amount        float64   `json:"amount"`
	PaymentType   string    `json:"payment_type"`
	PaymentMethod string    `json:"payment_method"`
	CollectorID   string    `json:"collector_id"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func toPaymentRequestResponse(p *paymentdomain.PaymentRequest) paymentRequestResponse {
	return paymentRequestResponse{
		ID:            p.ID,
		MemberID:      p.MemberID,
		MemberNumber:  p.MemberNumber,
		Amount:        p.Amount,
		PaymentType:   string(p.PaymentType),
		PaymentMethod: string(p.PaymentMethod),
		CollectorID:   p.CollectorID,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
	}
}

func (h *Handlers) createPaymentRequest(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.payments.CreatePaymentRequest(r.Context(), paymentservice.CreatePaymentRequestInput{
		MemberID:            req.MemberID,
		MemberNumber:        req.MemberNumber,
		Amount:              req.Amount,
		PaymentType:         paymentdomain.PaymentType(req.PaymentType),
		PaymentMethod:       paymentdomain.PaymentMethod(req.PaymentMethod),
		ActingCollectorName: req.CollectorName,
	})
	if err != nil {
		switch {
		case errors.Is(err, paymentservice.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, paymentservice.ErrCollectorNotFound):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentRequestResponse(created))
}

func (h *Handlers) listPendingPaymentRequests(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	pending, err := h.payments.ListPending(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list payment requests")
		return
	}
	out := make([]paymentRequestResponse, 0, len(pending))
	for _, p := range pending {
		out = append(out, toPaymentRequestResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"payment_requests": out})
}

type auditLogResponse struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subject_id,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handlers) listAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	logs, err := h.auditLogs.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list audit logs")
		return
	}
	out := make([]auditLogResponse, 0, len(logs))
	for _, a := range logs {
		out = append(out, auditLogResponse{
			ID:        a.ID,
			SubjectID: a.SubjectID,
			Action:    a.Action,
			Resource:  a.Resource,
			IP:        a.IP,
			Metadata:  a.Metadata,
			CreatedAt: a.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"audit_logs": out})
}

func pagination(r *http.Request) (limit, offset int32) {
	limit = 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 500 {
		limit = int32(v)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = int32(v)
	}
	return limit, offset
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
