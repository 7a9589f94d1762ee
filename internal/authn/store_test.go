package authn

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"membership-backoffice/internal/credentials"
	memberdomain "membership-backoffice/internal/member/domain"
	memberservice "membership-backoffice/internal/member/service"
)

type fakeVerifier struct {
	member *memberdomain.Member
	err    error
}

func (f *fakeVerifier) Verify(ctx context.Context, memberNumber string) (*memberdomain.Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.member, nil
}

type fakeCreds struct {
	mu         sync.Mutex
	session    *Session
	signInErr  error
	signOutErr error
	signIns    []string
	signOuts   int
}

func (f *fakeCreds) SignIn(ctx context.Context, loginIdentity, secret string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signIns = append(f.signIns, loginIdentity+"|"+secret)
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.session, nil
}

func (f *fakeCreds) SignOut(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	return f.signOutErr
}

type fakeCache struct {
	mu          sync.Mutex
	clears      int
	invalidated []string
}

func (f *fakeCache) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
}

func (f *fakeCache) Invalidate(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, key)
}

func activeMember() *memberdomain.Member {
	return &memberdomain.Member{
		ID:           "mem-1",
		MemberNumber: "TM20001",
		FullName:     "Test Member",
		Status:       memberdomain.MemberStatusActive,
	}
}

func testSession() *Session {
	return &Session{
		ID:           "sess-1",
		SubjectID:    "user-1",
		MemberNumber: "TM20001",
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func newTestStore(v MemberVerifier, c CredentialService, cache Cache) *Store {
	return NewStore(v, credentials.NewDeriver("temp.com"), c, cache, nil)
}

func TestSignIn_Success(t *testing.T) {
	creds := &fakeCreds{session: testSession()}
	cache := &fakeCache{}
	s := newTestStore(&fakeVerifier{member: activeMember()}, creds, cache)

	var states []State
	s.Subscribe(func(snap Snapshot) { states = append(states, snap.State) })

	if err := s.SignIn(context.Background(), " tm20001 "); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	snap := s.Snapshot()
	if snap.State != StateAuthenticated {
		t.Errorf("state = %v, want authenticated", snap.State)
	}
	if snap.Session == nil || snap.Session.SubjectID != "user-1" {
		t.Errorf("session = %+v", snap.Session)
	}
	// Derived credentials used the synthetic identity and the normalized
	// number as secret.
	if len(creds.signIns) != 1 || creds.signIns[0] != "tm20001@temp.com|TM20001" {
		t.Errorf("credential exchange got %v", creds.signIns)
	}
	// Authenticating was published before Authenticated.
	if len(states) < 2 || states[0] != StateAuthenticating || states[len(states)-1] != StateAuthenticated {
		t.Errorf("state sequence = %v", states)
	}
	// Prior state cleared before exchange and cache cleared after success.
	if cache.clears < 2 {
		t.Errorf("cache clears = %d, want >= 2", cache.clears)
	}
	if creds.signOuts != 1 {
		t.Errorf("prior sign-out calls = %d, want 1", creds.signOuts)
	}
}

func TestSignIn_MemberNotFound(t *testing.T) {
	s := newTestStore(&fakeVerifier{err: memberservice.ErrMemberNotFound}, &fakeCreds{}, nil)
	err := s.SignIn(context.Background(), "ZZ999")
	if err == nil {
		t.Fatal("SignIn succeeded for unknown member")
	}
	snap := s.Snapshot()
	if snap.State != StateError {
		t.Errorf("state = %v, want error", snap.State)
	}
	if snap.Reason != ReasonMemberNotFound {
		t.Errorf("reason = %v, want member_not_found", snap.Reason)
	}
	if snap.Session != nil {
		t.Error("session must remain empty on failed sign-in")
	}
	if err.Error() != ReasonMemberNotFound.Message() {
		t.Errorf("error = %q, want classified message", err)
	}
}

func TestSignIn_ClassifiesExchangeFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Reason
	}{
		{"sentinel invalid credentials", ErrInvalidCredentials, ReasonInvalidCredentials},
		{"sentinel email unconfirmed", ErrEmailUnconfirmed, ReasonEmailUnconfirmed},
		{"message invalid credentials", errors.New("Invalid login credentials"), ReasonInvalidCredentials},
		{"message email not confirmed", errors.New("Email not confirmed"), ReasonEmailUnconfirmed},
		{"raw backend text hidden", errors.New("pq: deadlock detected on relation auth_users"), ReasonUnexpected},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := newTestStore(&fakeVerifier{member: activeMember()}, &fakeCreds{signInErr: c.err}, nil)
			err := s.SignIn(context.Background(), "TM20001")
			if err == nil {
				t.Fatal("SignIn succeeded")
			}
			if got := s.Snapshot().Reason; got != c.want {
				t.Errorf("reason = %v, want %v", got, c.want)
			}
			if err.Error() != c.want.Message() {
				t.Errorf("error = %q, want %q", err, c.want.Message())
			}
		})
	}
}

func TestSignIn_NilSessionIsUnexpected(t *testing.T) {
	s := newTestStore(&fakeVerifier{member: activeMember()}, &fakeCreds{session: nil}, nil)
	if err := s.SignIn(context.Background(), "TM20001"); err == nil {
		t.Fatal("SignIn succeeded with nil session")
	}
	if got := s.Snapshot().Reason; got != ReasonUnexpected {
		t.Errorf("reason = %v, want unexpected", got)
	}
}

func TestSignOut_ClearsStateEvenWhenCleanupFails(t *testing.T) {
	creds := &fakeCreds{session: testSession()}
	cache := &fakeCache{}
	s := newTestStore(&fakeVerifier{member: activeMember()}, creds, cache)
	if err := s.SignIn(context.Background(), "TM20001"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	creds.signOutErr = errors.New("remote cleanup unavailable")
	redirect := s.SignOut(context.Background(), true)
	if !redirect {
		t.Error("redirect flag not passed through")
	}
	snap := s.Snapshot()
	if snap.State != StateUnauthenticated || snap.Session != nil {
		t.Errorf("state after sign-out = %+v", snap)
	}
}

func TestHandleEvent_TokenRefreshedReplacesWholesale(t *testing.T) {
	creds := &fakeCreds{session: testSession()}
	verifier := &fakeVerifier{member: activeMember()}
	s := newTestStore(verifier, creds, nil)
	if err := s.SignIn(context.Background(), "TM20001"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	// A refresh must not re-trigger verification.
	verifier.err = errors.New("verifier must not be called on refresh")
	refreshed := testSession()
	refreshed.AccessToken = "at-2"
	s.HandleEvent(Event{Type: EventTokenRefreshed, Session: refreshed})

	snap := s.Snapshot()
	if snap.State != StateAuthenticated {
		t.Errorf("state = %v, want authenticated", snap.State)
	}
	if snap.Session == nil || snap.Session.AccessToken != "at-2" {
		t.Errorf("session not replaced: %+v", snap.Session)
	}
}

func TestHandleEvent_RefreshFailureClearsSession(t *testing.T) {
	s := newTestStore(&fakeVerifier{member: activeMember()}, &fakeCreds{session: testSession()}, nil)
	if err := s.SignIn(context.Background(), "TM20001"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	s.HandleEvent(Event{Type: EventTokenRefreshFailed})
	if snap := s.Snapshot(); snap.State != StateUnauthenticated || snap.Session != nil {
		t.Errorf("state after refresh failure = %+v", snap)
	}
}

func TestHandleEvent_RefreshWithoutSessionIsSignOut(t *testing.T) {
	s := newTestStore(&fakeVerifier{member: activeMember()}, &fakeCreds{session: testSession()}, nil)
	if err := s.SignIn(context.Background(), "TM20001"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	s.HandleEvent(Event{Type: EventTokenRefreshed, Session: nil})
	if snap := s.Snapshot(); snap.HasSession() {
		t.Errorf("session survived failed refresh: %+v", snap)
	}
}

func TestSubscribe_NotifiedInRegistrationOrderAndUnsubscribe(t *testing.T) {
	s := newTestStore(&fakeVerifier{member: activeMember()}, &fakeCreds{session: testSession()}, nil)

	var order []string
	unsubA := s.Subscribe(func(Snapshot) { order = append(order, "a") })
	s.Subscribe(func(Snapshot) { order = append(order, "b") })

	s.HandleEvent(Event{Type: EventSignedOut})
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("notification order = %v", order)
	}

	unsubA()
	order = nil
	s.HandleEvent(Event{Type: EventSignedOut})
	if len(order) != 1 || order[0] != "b" {
		t.Errorf("after unsubscribe order = %v", order)
	}
}

func TestClassify(t *testing.T) {
	if got := Classify(nil); got != ReasonNone {
		t.Errorf("Classify(nil) = %v", got)
	}
	if got := Classify(memberservice.ErrNetwork); got != ReasonNetwork {
		t.Errorf("Classify(network) = %v, want network", got)
	}
	if got := Classify(errors.New("Member not found or inactive")); got != ReasonMemberNotFound {
		t.Errorf("Classify = %v, want member_not_found", got)
	}
}
