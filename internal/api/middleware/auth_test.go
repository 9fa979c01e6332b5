package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/eventdesk/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

const testSecret = "test-secret"

func newAuthEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Auth(testSecret, "eventdesk"), RequireRole(domain.RoleVendor), func(c *gin.Context) {
		c.String(http.StatusOK, CallerID(c))
	})
	return r
}

func TestAuth(t *testing.T) {
	valid, err := SignToken(testSecret, "eventdesk", "user-1", "vendor", time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	planner, _ := SignToken(testSecret, "eventdesk", "user-2", "planner", time.Hour)
	expired, _ := SignToken(testSecret, "eventdesk", "user-1", "vendor", -time.Hour)
	wrongKey, _ := SignToken("other", "eventdesk", "user-1", "vendor", time.Hour)
	wrongIssuer, _ := SignToken(testSecret, "someone-else", "user-1", "vendor", time.Hour)

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "valid", header: "Bearer " + valid, status: http.StatusOK, body: "user-1"},
		{name: "lowercase_scheme", header: "bearer " + valid, status: http.StatusOK, body: "user-1"},
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "wrong_scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, status: http.StatusUnauthorized},
		{name: "wrong_key", header: "Bearer " + wrongKey, status: http.StatusUnauthorized},
		{name: "wrong_issuer", header: "Bearer " + wrongIssuer, status: http.StatusUnauthorized},
		{name: "wrong_role", header: "Bearer " + planner, status: http.StatusForbidden},
	}

	r := newAuthEngine()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Fatalf("status=%d, want %d (body %s)", w.Code, tc.status, w.Body.String())
			}
			if tc.body != "" && w.Body.String() != tc.body {
				t.Fatalf("body=%q, want %q", w.Body.String(), tc.body)
			}
		})
	}
}

func TestParseTokenRequiresSecret(t *testing.T) {
	token, _ := SignToken(testSecret, "", "user-1", "vendor", time.Hour)
	if _, err := ParseToken("", "", token); err == nil {
		t.Fatal("expected error without a configured secret")
	}
	if _, err := ParseToken(testSecret, "", token); err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", w.Code)
	}
}
