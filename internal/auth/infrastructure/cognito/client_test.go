package cognito

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wyfcoding/alphaview/internal/auth/domain"
)

func newTestClient(url string) *Client {
	return NewClient(Config{
		Endpoint:     url,
		UserPoolID:   "us-west-2_testpool",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	})
}

func TestAuthenticateSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Amz-Target"); got != targetInitiateAuth {
			t.Fatalf("unexpected target: %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != contentType {
			t.Fatalf("unexpected content type: %q", got)
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		params := body["AuthParameters"].(map[string]interface{})
		if params["USERNAME"] != "viewer@alphaview.com" {
			t.Fatalf("unexpected username: %v", params["USERNAME"])
		}
		if params["SECRET_HASH"] == "" {
			t.Fatal("expected SECRET_HASH to be set")
		}

		_, _ = w.Write([]byte(`{"AuthenticationResult":{"AccessToken":"access","IdToken":"id","ExpiresIn":3600}}`))
	}))
	defer ts.Close()

	outcome, err := newTestClient(ts.URL).Authenticate(context.Background(), "viewer@alphaview.com", "pw")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if outcome.ChallengeRequired() {
		t.Fatal("expected no challenge")
	}
	if outcome.Tokens.AccessToken != "access" || outcome.Tokens.IDToken != "id" {
		t.Fatalf("unexpected tokens: %+v", outcome.Tokens)
	}
	if outcome.Tokens.ExpiresAt.IsZero() {
		t.Fatal("expected token expiry to be set")
	}
}

func TestAuthenticateNewPasswordChallenge(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ChallengeName":"NEW_PASSWORD_REQUIRED","Session":"challenge-session"}`))
	}))
	defer ts.Close()

	outcome, err := newTestClient(ts.URL).Authenticate(context.Background(), "new@alphaview.com", "temp-pw")
	if err != nil {
		t.Fatalf("challenge must not be an error, got %v", err)
	}
	if !outcome.ChallengeRequired() || outcome.Challenge != domain.ChallengeNewPasswordRequired {
		t.Fatalf("expected NEW_PASSWORD_REQUIRED challenge, got %+v", outcome)
	}
	if outcome.ProviderSession != "challenge-session" {
		t.Fatalf("unexpected provider session: %q", outcome.ProviderSession)
	}
}

func TestAuthenticateErrorSurfacedVerbatim(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"__type":"NotAuthorizedException","message":"Incorrect username or password."}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Authenticate(context.Background(), "viewer@alphaview.com", "wrong")
	if err == nil || err.Error() != "Incorrect username or password." {
		t.Fatalf("expected verbatim service error, got %v", err)
	}
}

func TestCompleteNewPassword(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Amz-Target"); got != targetRespondToAuthChallenge {
			t.Fatalf("unexpected target: %q", got)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["Session"] != "challenge-session" {
			t.Fatalf("unexpected session: %v", body["Session"])
		}
		_, _ = w.Write([]byte(`{"AuthenticationResult":{"AccessToken":"access","IdToken":"id","ExpiresIn":3600}}`))
	}))
	defer ts.Close()

	outcome, err := newTestClient(ts.URL).CompleteNewPassword(context.Background(), "new@alphaview.com", "new-password", "challenge-session")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if outcome.Tokens == nil || outcome.Tokens.AccessToken != "access" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestCompleteNewPasswordNoResult(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).CompleteNewPassword(context.Background(), "u", "pw", "s")
	if err == nil || !strings.Contains(err.Error(), "no result") {
		t.Fatalf("expected no-result error, got %v", err)
	}
}

func TestGroupsForUser(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Amz-Target"); got != targetAdminListGroups {
			t.Fatalf("unexpected target: %q", got)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["UserPoolId"] != "us-west-2_testpool" {
			t.Fatalf("unexpected user pool: %v", body["UserPoolId"])
		}
		_, _ = w.Write([]byte(`{"Groups":[{"GroupName":"viewer"},{"GroupName":"admin"}]}`))
	}))
	defer ts.Close()

	groups, err := newTestClient(ts.URL).GroupsForUser(context.Background(), "admin@alphaview.com")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(groups) != 2 || groups[0] != "viewer" || groups[1] != "admin" {
		t.Fatalf("unexpected groups: %v", groups)
	}
	if got := domain.RoleFromGroups(groups); got != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %v", got)
	}
}

func TestSecretHash(t *testing.T) {
	c := newTestClient("http://example.com")
	// HMAC-SHA256("client-secret", "user"+"client-id") 的 base64 值是确定的
	got := c.secretHash("user")
	if got != c.secretHash("user") {
		t.Fatal("secret hash must be deterministic")
	}
	if got == c.secretHash("other-user") {
		t.Fatal("secret hash must depend on the username")
	}
	if len(got) != 44 { // base64 编码的 32 字节摘要
		t.Fatalf("unexpected hash length: %d", len(got))
	}
}
