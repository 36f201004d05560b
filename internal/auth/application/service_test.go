package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wyfcoding/alphaview/internal/auth/domain"
)

// fakeProvider 实现 domain.IdentityProvider
type fakeProvider struct {
	outcome      *domain.AuthOutcome
	err          error
	groups       []string
	groupsErr    error
	completeCall struct {
		username        string
		newPassword     string
		providerSession string
	}
}

func (f *fakeProvider) Authenticate(ctx context.Context, username, password string) (*domain.AuthOutcome, error) {
	return f.outcome, f.err
}

func (f *fakeProvider) CompleteNewPassword(ctx context.Context, username, newPassword, providerSession string) (*domain.AuthOutcome, error) {
	f.completeCall.username = username
	f.completeCall.newPassword = newPassword
	f.completeCall.providerSession = providerSession
	return f.outcome, f.err
}

func (f *fakeProvider) GroupsForUser(ctx context.Context, username string) ([]string, error) {
	return f.groups, f.groupsErr
}

// memorySessions 实现 domain.SessionRepository
type memorySessions struct {
	store map[string]*domain.Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{store: make(map[string]*domain.Session)}
}

func (m *memorySessions) Save(ctx context.Context, s *domain.Session) error {
	m.store[s.Token] = s
	return nil
}

func (m *memorySessions) Get(ctx context.Context, token string) (*domain.Session, error) {
	s, ok := m.store[token]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (m *memorySessions) Delete(ctx context.Context, token string) error {
	delete(m.store, token)
	return nil
}

func validTokens() *domain.Tokens {
	return &domain.Tokens{
		AccessToken: "access-token",
		IDToken:     "id-token",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func TestLoginSuccess(t *testing.T) {
	provider := &fakeProvider{
		outcome: &domain.AuthOutcome{Tokens: validTokens()},
		groups:  []string{"viewer"},
	}
	sessions := newMemorySessions()
	svc := NewAuthService(provider, sessions, 12*time.Hour)

	result, err := svc.Login(context.Background(), "viewer@alphaview.com", "pw")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.ChallengeRequired {
		t.Fatal("expected no challenge")
	}
	if result.Session.State != domain.StateAuthenticated {
		t.Fatalf("expected authenticated state, got %v", result.Session.State)
	}
	if result.Session.Role != domain.RoleViewer {
		t.Fatalf("expected viewer role, got %v", result.Session.Role)
	}

	// 会话 TTL 被访问令牌有效期限定
	if result.Session.ExpiresAt.After(time.Now().Add(time.Hour + time.Minute)) {
		t.Fatalf("session TTL should be capped by token expiry, got %v", result.Session.ExpiresAt)
	}

	stored, _ := sessions.Get(context.Background(), result.Session.Token)
	if stored == nil {
		t.Fatal("expected session to be persisted")
	}
}

func TestLoginChallenge(t *testing.T) {
	provider := &fakeProvider{
		outcome: &domain.AuthOutcome{
			Challenge:       domain.ChallengeNewPasswordRequired,
			ProviderSession: "provider-session",
		},
	}
	sessions := newMemorySessions()
	svc := NewAuthService(provider, sessions, 12*time.Hour)

	result, err := svc.Login(context.Background(), "new@alphaview.com", "temp")
	if err != nil {
		t.Fatalf("challenge must not fail the login call, got %v", err)
	}
	if !result.ChallengeRequired {
		t.Fatal("expected challenge")
	}
	if result.Session.State != domain.StatePasswordChallengeRequired {
		t.Fatalf("expected challenge state, got %v", result.Session.State)
	}
	if result.Session.ProviderSession != "provider-session" {
		t.Fatalf("unexpected provider session: %q", result.Session.ProviderSession)
	}
}

func TestLoginErrorSurfacedVerbatim(t *testing.T) {
	provider := &fakeProvider{err: errors.New("Incorrect username or password.")}
	svc := NewAuthService(provider, newMemorySessions(), 12*time.Hour)

	_, err := svc.Login(context.Background(), "u", "wrong")
	if err == nil || err.Error() != "Incorrect username or password." {
		t.Fatalf("expected verbatim provider error, got %v", err)
	}
}

func TestCompleteNewPassword(t *testing.T) {
	provider := &fakeProvider{
		outcome: &domain.AuthOutcome{
			Challenge:       domain.ChallengeNewPasswordRequired,
			ProviderSession: "provider-session",
		},
	}
	sessions := newMemorySessions()
	svc := NewAuthService(provider, sessions, 12*time.Hour)

	result, err := svc.Login(context.Background(), "new@alphaview.com", "temp")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// 质询完成后身份服务签发令牌
	provider.outcome = &domain.AuthOutcome{Tokens: validTokens()}
	provider.groups = []string{"admin"}

	session, err := svc.CompleteNewPassword(context.Background(), result.Session.Token, "new-password", "new-password")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if session.State != domain.StateAuthenticated {
		t.Fatalf("expected authenticated state, got %v", session.State)
	}
	if session.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %v", session.Role)
	}
	if provider.completeCall.providerSession != "provider-session" {
		t.Fatalf("provider session not forwarded: %q", provider.completeCall.providerSession)
	}

	// 质询会话已作废
	old, _ := sessions.Get(context.Background(), result.Session.Token)
	if old != nil {
		t.Fatal("expected challenge session to be deleted")
	}
}

func TestCompleteNewPasswordPolicy(t *testing.T) {
	svc := NewAuthService(&fakeProvider{}, newMemorySessions(), 12*time.Hour)

	if _, err := svc.CompleteNewPassword(context.Background(), "tok", "abc12345", "different"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	if _, err := svc.CompleteNewPassword(context.Background(), "tok", "short", "short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected too-short error, got %v", err)
	}
	if _, err := svc.CompleteNewPassword(context.Background(), "missing", "abc12345", "abc12345"); !errors.Is(err, ErrNoChallengeSession) {
		t.Fatalf("expected no-challenge error, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	provider := &fakeProvider{
		outcome: &domain.AuthOutcome{Tokens: validTokens()},
		groups:  []string{"viewer"},
	}
	sessions := newMemorySessions()
	svc := NewAuthService(provider, sessions, 12*time.Hour)

	result, err := svc.Login(context.Background(), "viewer@alphaview.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), result.Session.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}

	session, err := svc.SessionFromToken(context.Background(), result.Session.Token)
	if err != nil {
		t.Fatalf("session lookup: %v", err)
	}
	if session != nil {
		t.Fatal("expected session to be gone after logout")
	}
}

func TestRoleForGroupLookupFailure(t *testing.T) {
	provider := &fakeProvider{groupsErr: errors.New("access denied")}
	svc := NewAuthService(provider, newMemorySessions(), 12*time.Hour)

	if got := svc.RoleFor(context.Background(), "u"); got != domain.RoleNone {
		t.Fatalf("expected none role on lookup failure, got %v", got)
	}
}
