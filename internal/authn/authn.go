// Package authn holds the client-facing session store: the state machine that
// turns a member number into an authenticated session and keeps that session
// consistent with the credential service's notifications.
package authn

import (
	"context"
	"time"
)

// Session is the token bundle for an authenticated subject. Treated as
// immutable: replaced wholesale on refresh, never mutated field by field.
type Session struct {
	ID           string
	SubjectID    string
	MemberNumber string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// EventType tags credential-service notifications.
type EventType string

const (
	EventSignedIn           EventType = "SIGNED_IN"
	EventSignedOut          EventType = "SIGNED_OUT"
	EventTokenRefreshed     EventType = "TOKEN_REFRESHED"
	EventTokenRefreshFailed EventType = "TOKEN_REFRESH_FAILED"
)

// Event is one credential-service notification. Session is the current
// session if the event carries one; a TokenRefreshed event without a session
// is treated as a failed refresh.
type Event struct {
	Type    EventType
	Session *Session
}

// CredentialService is the external credential-verification service. The
// in-repo implementation lives in internal/identity; the store only consumes
// this surface.
type CredentialService interface {
	SignIn(ctx context.Context, loginIdentity, secret string) (*Session, error)
	// SignOut revokes the session remotely. sessionID may be empty when no
	// session is held; implementations treat that as a no-op.
	SignOut(ctx context.Context, sessionID string) error
}

// Cache is the client-side query cache the store clears around sign-in and
// sign-out so no state from a prior session leaks into the next one.
type Cache interface {
	Clear()
	Invalidate(key string)
}

// NoopCache satisfies Cache when no query cache is wired (tests, CLIs).
type NoopCache struct{}

func (NoopCache) Clear()            {}
func (NoopCache) Invalidate(string) {}
