package server

import (
	"context"
	"net/http"
	"strings"

	"membership-backoffice/internal/access"
	"membership-backoffice/internal/authn"
	rolesdomain "membership-backoffice/internal/roles/domain"
	rolesservice "membership-backoffice/internal/roles/service"
)

const bearerPrefix = "bearer "

// AccessValidator checks a bearer token and returns the session it belongs
// to. The identity service implements it.
type AccessValidator interface {
	ValidateAccess(ctx context.Context, accessToken string) (*authn.Session, error)
}

// RoleResolver resolves a subject's synchronized role snapshot for capability
// checks. The role registry implements it, so every request shares the
// synchronizer's caching, retry, and fail-closed behavior.
type RoleResolver interface {
	Resolve(ctx context.Context, subjectID string) rolesservice.Snapshot
}

// requireAuth validates the Bearer token and sets the caller identity in
// context. Requests without a valid token get 401.
func requireAuth(validator AccessValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "missing or invalid authorization")
				return
			}
			session, err := validator.ValidateAccess(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "missing or invalid authorization")
				return
			}
			ctx := WithIdentity(r.Context(), session.SubjectID, session.MemberNumber, session.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireCapability gates a route on the caller's synchronized permissions.
// Role lookup failures fail closed inside the synchronizer, so a fault can
// hide elevated capabilities but never grant them.
func requireCapability(roles RoleResolver, capability access.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subjectID, hasSession := GetSubjectID(r.Context())
			var perms rolesdomain.PermissionSet
			rolesLoaded := false
			if hasSession && subjectID != "" {
				snap := roles.Resolve(r.Context(), subjectID)
				perms = snap.Permissions
				rolesLoaded = snap.Loaded
			}
			switch access.Evaluate(hasSession, rolesLoaded, perms, capability) {
			case access.DecisionAllow:
				next.ServeHTTP(w, r)
			case access.DecisionRedirect:
				writeError(w, http.StatusUnauthorized, "missing or invalid authorization")
			case access.DecisionWait:
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusServiceUnavailable, "authorization state is still resolving")
			default:
				writeError(w, http.StatusForbidden, "forbidden")
			}
		})
	}
}

// extractBearer returns the Bearer token from the request, or "" if missing
// or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
