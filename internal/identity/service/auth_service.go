package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"membership-backoffice/internal/authn"
	identitydomain "membership-backoffice/internal/identity/domain"
	"membership-backoffice/internal/security"
	sessiondomain "membership-backoffice/internal/session/domain"
)

// Sentinel errors for the credential service.
var (
	ErrLoginAlreadyRegistered = errors.New("login identity already registered")
	ErrInvalidRefreshToken    = errors.New("invalid or expired refresh token")
	ErrRefreshTokenReuse      = errors.New("refresh token reuse detected; all sessions revoked")
)

// AuthUserRepo is the minimal auth-user repository needed by the service.
type AuthUserRepo interface {
	GetByLoginIdentity(ctx context.Context, loginIdentity string) (*identitydomain.AuthUser, error)
	Create(ctx context.Context, u *identitydomain.AuthUser) error
}

// SessionRepo is the minimal session repository needed by the service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Revoke(ctx context.Context, id string) error
	RevokeAllBySubject(ctx context.Context, subjectID string) error
	UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
}

type subscriber struct {
	id int
	fn func(authn.Event)
}

// Service is the credential-verification service: sign-up provisioning,
// secret verification, JWT issuance with refresh rotation, and the
// asynchronous notification channel the session store consumes.
// It implements authn.CredentialService.
type Service struct {
	users    AuthUserRepo
	sessions SessionRepo
	hasher   *security.Hasher
	tokens   *security.TokenProvider
	refresh  time.Duration

	mu     sync.Mutex
	subs   []subscriber
	nextID int
}

// NewService returns a credential service with the given dependencies.
// refreshTTL bounds session lifetime; access TTL is owned by the token provider.
func NewService(users AuthUserRepo, sessions SessionRepo, hasher *security.Hasher, tokens *security.TokenProvider, refreshTTL time.Duration) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		refresh:  refreshTTL,
	}
}

// Subscribe registers fn on the notification channel. Events are delivered
// synchronously in registration order. The returned function unsubscribes.
func (s *Service) Subscribe(fn func(authn.Event)) func() {
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

func (s *Service) publish(ev authn.Event) {
	s.mu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, sub := range subs {
		sub.fn(ev)
	}
}

// SignUp provisions a login for a member: bcrypt-hashed secret, confirmed by
// default since the synthetic address has no mailbox to verify.
func (s *Service) SignUp(ctx context.Context, loginIdentity, secret, memberID, memberNumber string) (*identitydomain.AuthUser, error) {
	existing, err := s.users.GetByLoginIdentity(ctx, loginIdentity)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrLoginAlreadyRegistered
	}
	hashed, err := s.hasher.Hash([]byte(secret))
	if err != nil {
		return nil, err
	}
	u := &identitydomain.AuthUser{
		ID:             uuid.New().String(),
		LoginIdentity:  loginIdentity,
		SecretHash:     hashed,
		MemberID:       memberID,
		MemberNumber:   memberNumber,
		EmailConfirmed: true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SignIn verifies the identity/secret pair, creates a persisted session, and
// returns the token bundle. Unknown identities and wrong secrets are
// indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, loginIdentity, secret string) (*authn.Session, error) {
	if loginIdentity == "" || secret == "" {
		return nil, authn.ErrInvalidCredentials
	}
	user, err := s.users.GetByLoginIdentity(ctx, loginIdentity)
	if err != nil {
		return nil, err
	}
	if user == nil || user.SecretHash == "" {
		return nil, authn.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.SecretHash, []byte(secret)); err != nil {
		return nil, authn.ErrInvalidCredentials
	}
	if !user.EmailConfirmed {
		return nil, authn.ErrEmailUnconfirmed
	}

	sessionID := uuid.New().String()
	refreshToken, jti, _, err := s.tokens.IssueRefresh(sessionID, user.ID, user.MemberNumber)
	if err != nil {
		return nil, err
	}
	accessToken, _, accessExp, err := s.tokens.IssueAccess(sessionID, user.ID, user.MemberNumber)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &sessiondomain.Session{
		ID:               sessionID,
		SubjectID:        user.ID,
		MemberNumber:     user.MemberNumber,
		ExpiresAt:        now.Add(s.refresh),
		RefreshJti:       jti,
		RefreshTokenHash: security.HashRefreshToken(refreshToken),
		CreatedAt:        now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	bundle := &authn.Session{
		ID:           sessionID,
		SubjectID:    user.ID,
		MemberNumber: user.MemberNumber,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp,
	}
	s.publish(authn.Event{Type: authn.EventSignedIn, Session: bundle})
	return bundle, nil
}

// Refresh validates the refresh token, rotates it, and returns new tokens.
// Emits TokenRefreshed on success and TokenRefreshFailed on any failure so
// the session store can clear local state.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*authn.Session, error) {
	bundle, err := s.refreshOnce(ctx, refreshToken)
	if err != nil {
		s.publish(authn.Event{Type: authn.EventTokenRefreshFailed})
		return nil, err
	}
	s.publish(authn.Event{Type: authn.EventTokenRefreshed, Session: bundle})
	return bundle, nil
}

func (s *Service) refreshOnce(ctx context.Context, refreshToken string) (*authn.Session, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	sessionID, jti, subjectID, memberNumber, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.RevokedAt != nil {
		return nil, ErrInvalidRefreshToken
	}
	if sess.RefreshJti != jti {
		// Reuse of a rotated token: revoke everything for the subject.
		_ = s.sessions.RevokeAllBySubject(ctx, subjectID)
		return nil, ErrRefreshTokenReuse
	}
	if sess.RefreshTokenHash != "" && !security.RefreshTokenHashEqual(refreshToken, sess.RefreshTokenHash) {
		return nil, ErrInvalidRefreshToken
	}
	now := time.Now().UTC()
	_ = s.sessions.UpdateLastSeen(ctx, sessionID, now)
	newRefresh, newJti, _, err := s.tokens.IssueRefresh(sessionID, subjectID, memberNumber)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateRefreshToken(ctx, sessionID, newJti, security.HashRefreshToken(newRefresh)); err != nil {
		return nil, err
	}
	accessToken, _, accessExp, err := s.tokens.IssueAccess(sessionID, subjectID, memberNumber)
	if err != nil {
		return nil, err
	}
	return &authn.Session{
		ID:           sessionID,
		SubjectID:    subjectID,
		MemberNumber: memberNumber,
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresAt:    accessExp,
	}, nil
}

// SignOut revokes the session and emits SignedOut. An empty sessionID is a
// no-op so callers can clear auth state unconditionally.
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return err
	}
	s.publish(authn.Event{Type: authn.EventSignedOut})
	return nil
}

// ValidateAccess resolves an access token to its session and subject. Used by
// the HTTP auth middleware. The persisted session must still be active.
func (s *Service) ValidateAccess(ctx context.Context, accessToken string) (*authn.Session, error) {
	sessionID, subjectID, memberNumber, err := s.tokens.ValidateAccess(accessToken)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || !sess.Active(time.Now().UTC()) {
		return nil, security.ErrInvalidToken
	}
	return &authn.Session{
		ID:           sessionID,
		SubjectID:    subjectID,
		MemberNumber: memberNumber,
		AccessToken:  accessToken,
	}, nil
}
