package authn

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"membership-backoffice/internal/credentials"
	memberdomain "membership-backoffice/internal/member/domain"
	memberservice "membership-backoffice/internal/member/service"
)

// Sentinel errors credential-service implementations return so sign-in
// failures classify without leaking backend internals.
var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailUnconfirmed   = errors.New("email not confirmed")
)

// State is the session store's state machine position.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
	StateError           State = "error"
)

// Reason is the user-facing classification of a sign-in failure. Raw backend
// text is never surfaced for unrecognized cases.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonMemberNotFound     Reason = "member_not_found"
	ReasonInvalidCredentials Reason = "invalid_credentials"
	ReasonEmailUnconfirmed   Reason = "email_unconfirmed"
	ReasonNetwork            Reason = "network"
	ReasonUnexpected         Reason = "unexpected"
)

// Message returns the display text for the reason.
func (r Reason) Message() string {
	switch r {
	case ReasonMemberNotFound:
		return "Member number not found or inactive"
	case ReasonInvalidCredentials:
		return "Invalid member number. Please try again."
	case ReasonEmailUnconfirmed:
		return "Please verify your email before logging in"
	case ReasonNetwork:
		return "Network error - please check your connection and try again"
	case ReasonUnexpected:
		return "An unexpected error occurred"
	default:
		return ""
	}
}

// Snapshot is the store's published state. Subscribers receive a copy; the
// Session pointer is shared but immutable by convention.
type Snapshot struct {
	State   State
	Session *Session
	Reason  Reason
}

// HasSession reports whether a session is held. Input to the access gate.
func (s Snapshot) HasSession() bool {
	return s.Session != nil
}

// MemberVerifier confirms a member number maps to an active member record.
type MemberVerifier interface {
	Verify(ctx context.Context, memberNumber string) (*memberdomain.Member, error)
}

// AuditLogger records auth events, best-effort. May be nil.
type AuditLogger interface {
	LogEvent(ctx context.Context, subjectID, action, resource, metadata string)
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Store owns the current session and exposes subscribe/notify semantics.
// It is the sole mutator of the Session value: sign-in, sign-out, and
// credential-service events replace it wholesale.
type Store struct {
	verifier MemberVerifier
	deriver  *credentials.Deriver
	creds    CredentialService
	cache    Cache
	audit    AuditLogger

	mu      sync.Mutex
	state   State
	session *Session
	reason  Reason
	subs    []subscriber
	nextID  int
}

// NewStore returns a Store in the Unauthenticated state. cache may be nil
// (a no-op cache is used); audit may be nil.
func NewStore(verifier MemberVerifier, deriver *credentials.Deriver, creds CredentialService, cache Cache, audit AuditLogger) *Store {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Store{
		verifier: verifier,
		deriver:  deriver,
		creds:    creds,
		cache:    cache,
		audit:    audit,
		state:    StateUnauthenticated,
	}
}

// Snapshot returns the current published state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, Session: s.session, Reason: s.reason}
}

// Subscribe registers fn for synchronous notification on every state change,
// in registration order. The returned function unsubscribes; call it on
// teardown.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// set replaces the published state and notifies subscribers synchronously in
// registration order before returning.
func (s *Store) set(state State, session *Session, reason Reason) {
	s.mu.Lock()
	s.state = state
	s.session = session
	s.reason = reason
	snap := Snapshot{State: state, Session: session, Reason: reason}
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, sub := range subs {
		sub.fn(snap)
	}
}

// SignIn verifies the member number, derives credentials, and exchanges them
// for a session. Any pre-existing local session and cached derived data are
// cleared before the exchange so nothing from a prior session leaks into the
// new one. On failure the store lands in the Error state with a classified
// reason and SignIn returns that reason's message as an error.
func (s *Store) SignIn(ctx context.Context, memberNumber string) error {
	s.set(StateAuthenticating, nil, ReasonNone)

	// Clear existing auth state before issuing the new exchange. Failures
	// here are soft, same as sign-out cleanup.
	s.clearAuthState(ctx, "")

	member, err := s.verifier.Verify(ctx, memberNumber)
	if err != nil {
		return s.failSignIn(ctx, memberNumber, err)
	}

	creds := s.deriver.Derive(member.MemberNumber)
	session, err := s.creds.SignIn(ctx, creds.LoginIdentity, creds.Secret)
	if err != nil {
		return s.failSignIn(ctx, memberNumber, err)
	}
	if session == nil {
		return s.failSignIn(ctx, memberNumber, errors.New("failed to establish session"))
	}

	s.cache.Clear()
	s.set(StateAuthenticated, session, ReasonNone)
	if s.audit != nil {
		s.audit.LogEvent(ctx, session.SubjectID, "login_success", "session", member.MemberNumber)
	}
	return nil
}

func (s *Store) failSignIn(ctx context.Context, memberNumber string, err error) error {
	reason := Classify(err)
	s.set(StateError, nil, reason)
	if s.audit != nil {
		s.audit.LogEvent(ctx, "", "login_failure", "session", credentials.Normalize(memberNumber))
	}
	return errors.New(reason.Message())
}

// SignOut always clears the local session and cached derived data. Remote
// cleanup failures are logged and soft: the user is considered logged out
// locally regardless. The redirect flag only controls a post-condition
// outside this store and is returned unchanged for the caller.
func (s *Store) SignOut(ctx context.Context, redirect bool) bool {
	s.mu.Lock()
	sessionID := ""
	subjectID := ""
	if s.session != nil {
		sessionID = s.session.ID
		subjectID = s.session.SubjectID
	}
	s.mu.Unlock()

	s.clearAuthState(ctx, sessionID)
	s.set(StateUnauthenticated, nil, ReasonNone)
	if s.audit != nil && subjectID != "" {
		s.audit.LogEvent(ctx, subjectID, "logout", "session", "")
	}
	return redirect
}

// clearAuthState clears the query cache and revokes the remote session,
// best-effort. Partial cleanup failures never propagate.
func (s *Store) clearAuthState(ctx context.Context, sessionID string) {
	s.cache.Clear()
	if err := s.creds.SignOut(ctx, sessionID); err != nil {
		log.Printf("authn: sign-out cleanup failed (continuing): %v", err)
	}
}

// HandleEvent applies one credential-service notification. The store is the
// sole consumer that mutates the session from these events.
func (s *Store) HandleEvent(ev Event) {
	switch ev.Type {
	case EventSignedOut, EventTokenRefreshFailed:
		s.set(StateUnauthenticated, nil, ReasonNone)
	case EventTokenRefreshed:
		if ev.Session == nil {
			// Refresh without a session means the token could not be
			// refreshed; treat as signed out.
			s.set(StateUnauthenticated, nil, ReasonNone)
			return
		}
		// Replace wholesale. Not a new login: no re-verification.
		s.set(StateAuthenticated, ev.Session, ReasonNone)
	case EventSignedIn:
		if ev.Session != nil {
			s.set(StateAuthenticated, ev.Session, ReasonNone)
		}
	}
}

// Classify maps a sign-in failure to its user-facing reason. Sentinels are
// checked first; message substrings cover credential services that do not
// wrap them. Unrecognized errors become ReasonUnexpected so raw backend text
// never reaches the user.
func Classify(err error) Reason {
	if err == nil {
		return ReasonNone
	}
	switch {
	case errors.Is(err, memberservice.ErrMemberNotFound):
		return ReasonMemberNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return ReasonInvalidCredentials
	case errors.Is(err, ErrEmailUnconfirmed):
		return ReasonEmailUnconfirmed
	case errors.Is(err, memberservice.ErrNetwork):
		return ReasonNetwork
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "member not found"):
		return ReasonMemberNotFound
	case strings.Contains(msg, "invalid login credentials"):
		return ReasonInvalidCredentials
	case strings.Contains(msg, "email not confirmed"):
		return ReasonEmailUnconfirmed
	case strings.Contains(msg, "network error"):
		return ReasonNetwork
	default:
		return ReasonUnexpected
	}
}
