package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mindhaven-backend-go/internal/services"
)

func testTokens() services.TokenService {
	return services.TokenService{
		Secret:     []byte("test-secret-key"),
		Issuer:     "mindhaven-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}
}

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"userId": CurrentUserID(r),
			"email":  CurrentEmail(r),
			"role":   CurrentRole(r),
		})
	})
}

func TestWithAuthMissingHeader(t *testing.T) {
	tokens := testTokens()
	handler := WithAuth(tokens)(echoIdentity())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestWithAuthMalformedHeader(t *testing.T) {
	tokens := testTokens()
	handler := WithAuth(tokens)(echoIdentity())

	for _, header := range []string{"Basic abc", "Bearer", "Bearer not.a.token"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestWithAuthRejectsRefreshToken(t *testing.T) {
	tokens := testTokens()
	handler := WithAuth(tokens)(echoIdentity())

	refresh, err := tokens.CreateRefreshToken("user-1")
	if err != nil {
		t.Fatalf("CreateRefreshToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("refresh token on protected route: status = %d, want 401", rec.Code)
	}
}

func TestWithAuthValidToken(t *testing.T) {
	tokens := testTokens()
	var gotUserID, gotRole string
	handler := WithAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = CurrentUserID(r)
		gotRole = CurrentRole(r)
		w.WriteHeader(http.StatusOK)
	}))

	access, _, err := tokens.CreateAccessToken("user-7", "g@h.com", services.RoleCounselor)
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUserID != "user-7" {
		t.Errorf("userID = %q, want user-7", gotUserID)
	}
	if gotRole != services.RoleCounselor {
		t.Errorf("role = %q, want %s", gotRole, services.RoleCounselor)
	}
}

func TestRequireRole(t *testing.T) {
	tokens := testTokens()
	protected := WithAuth(tokens)(RequireRole(services.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	adminToken, _, err := tokens.CreateAccessToken("admin-1", "admin@x.com", services.RoleAdmin)
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}
	userToken, _, err := tokens.CreateAccessToken("user-1", "user@x.com", services.RoleUser)
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("user: status = %d, want 403", rec.Code)
	}
}

func TestRequireAnyRole(t *testing.T) {
	tokens := testTokens()
	protected := WithAuth(tokens)(RequireAnyRole(services.RoleStaff, services.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	cases := []struct {
		role string
		code int
	}{
		{services.RoleStaff, http.StatusOK},
		{services.RoleAdmin, http.StatusOK},
		{services.RoleCounselor, http.StatusForbidden},
		{services.RoleUser, http.StatusForbidden},
	}
	for _, tc := range cases {
		token, _, err := tokens.CreateAccessToken("u", "u@x.com", tc.role)
		if err != nil {
			t.Fatalf("CreateAccessToken: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/staff", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != tc.code {
			t.Errorf("role %s: status = %d, want %d", tc.role, rec.Code, tc.code)
		}
	}
}
