package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/alphaview/internal/auth/domain"
)

func setSession(session *domain.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if session != nil {
			c.Set(sessionKey, session)
		}
		c.Next()
	}
}

func authenticatedSession(role domain.Role) *domain.Session {
	return &domain.Session{
		Token:     "tok",
		Username:  "alice",
		Role:      role,
		State:     domain.StateAuthenticated,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func doRequest(t *testing.T, session *domain.Session, guard gin.HandlerFunc) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", setSession(session), guard, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRequireAuthenticated(t *testing.T) {
	tests := []struct {
		name    string
		session *domain.Session
		want    int
	}{
		{name: "no session", session: nil, want: http.StatusUnauthorized},
		{name: "viewer", session: authenticatedSession(domain.RoleViewer), want: http.StatusOK},
		{name: "admin", session: authenticatedSession(domain.RoleAdmin), want: http.StatusOK},
		{
			name: "challenge session is not authenticated",
			session: &domain.Session{
				State:     domain.StatePasswordChallengeRequired,
				ExpiresAt: time.Now().Add(time.Hour),
			},
			want: http.StatusUnauthorized,
		},
		{
			name: "expired session",
			session: &domain.Session{
				State:     domain.StateAuthenticated,
				ExpiresAt: time.Now().Add(-time.Minute),
			},
			want: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := doRequest(t, tt.session, RequireAuthenticated()); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name    string
		session *domain.Session
		want    int
	}{
		{name: "no session", session: nil, want: http.StatusUnauthorized},
		{name: "viewer forbidden", session: authenticatedSession(domain.RoleViewer), want: http.StatusForbidden},
		{name: "none forbidden", session: authenticatedSession(domain.RoleNone), want: http.StatusForbidden},
		{name: "admin allowed", session: authenticatedSession(domain.RoleAdmin), want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := doRequest(t, tt.session, RequireAdmin()); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}
