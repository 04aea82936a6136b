package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/vetclinic/internal/application"
)

type sessionValidatorStub struct {
	principal application.Principal
	err       error
	seenToken string
}

func (s *sessionValidatorStub) ValidateSession(_ context.Context, token string) (application.Principal, error) {
	s.seenToken = token
	if s.err != nil {
		return application.Principal{}, s.err
	}
	return s.principal, nil
}

func withSessionCookie(r *http.Request, token string) *http.Request {
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	return r
}

func TestRequireSession(t *testing.T) {
	t.Parallel()

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			t.Error("expected a principal in the request context")
		}
		w.WriteHeader(http.StatusOK)
	})

	t.Run("missing cookie redirects to login", func(t *testing.T) {
		t.Parallel()

		validator := &sessionValidatorStub{}
		rec := httptest.NewRecorder()
		RequireSession(validator, nil)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", rec.Code)
		}
		if location := rec.Header().Get("Location"); location != "/login" {
			t.Fatalf("expected redirect to /login, got %q", location)
		}
	})

	t.Run("rejected token clears the cookie and redirects", func(t *testing.T) {
		t.Parallel()

		validator := &sessionValidatorStub{err: application.ErrSessionExpired}
		rec := httptest.NewRecorder()
		req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/dashboard", nil), "stale-token")
		RequireSession(validator, nil)(okHandler).ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", rec.Code)
		}
		if validator.seenToken != "stale-token" {
			t.Fatalf("expected the token to reach the validator, got %q", validator.seenToken)
		}

		var cleared bool
		for _, cookie := range rec.Result().Cookies() {
			if cookie.Name == sessionCookieName && cookie.MaxAge < 0 {
				cleared = true
			}
		}
		if !cleared {
			t.Fatal("expected the session cookie to be cleared")
		}
	})

	t.Run("valid session attaches the principal", func(t *testing.T) {
		t.Parallel()

		validator := &sessionValidatorStub{principal: application.Principal{UserID: "user-1", Role: application.RolePetOwner}}
		rec := httptest.NewRecorder()
		req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/dashboard", nil), "good-token")
		RequireSession(validator, nil)(okHandler).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("missing principal redirects to login", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		RequireRole(application.Principal.IsStaff)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/staff", nil))

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", rec.Code)
		}
	})

	t.Run("wrong role is forbidden with no body", func(t *testing.T) {
		t.Parallel()

		owner := application.Principal{UserID: "user-1", Role: application.RolePetOwner}
		req := httptest.NewRequest(http.MethodGet, "/dashboard/staff", nil)
		req = req.WithContext(ContextWithPrincipal(req.Context(), owner))
		rec := httptest.NewRecorder()
		RequireRole(application.Principal.IsStaff)(okHandler).ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		if rec.Body.Len() != 0 {
			t.Fatalf("expected an empty body, got %q", rec.Body.String())
		}
	})

	t.Run("admin passes the staff gate", func(t *testing.T) {
		t.Parallel()

		admin := application.Principal{UserID: "admin-1", Role: application.RoleAdmin}
		req := httptest.NewRequest(http.MethodGet, "/dashboard/staff", nil)
		req = req.WithContext(ContextWithPrincipal(req.Context(), admin))
		rec := httptest.NewRecorder()
		RequireRole(application.Principal.IsStaff)(okHandler).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("throttles one client past its burst", func(t *testing.T) {
		t.Parallel()

		handler := RateLimit(1, 2)(okHandler)
		var last int
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			req.RemoteAddr = "203.0.113.7:1234"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			last = rec.Code
		}
		if last != http.StatusTooManyRequests {
			t.Fatalf("expected 429 after the burst, got %d", last)
		}
	})

	t.Run("limits are tracked per client address", func(t *testing.T) {
		t.Parallel()

		handler := RateLimit(1, 1)(okHandler)

		first := httptest.NewRequest(http.MethodPost, "/login", nil)
		first.RemoteAddr = "203.0.113.8:1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, first)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for the first client, got %d", rec.Code)
		}

		exhausted := httptest.NewRequest(http.MethodPost, "/login", nil)
		exhausted.RemoteAddr = "203.0.113.8:1000"
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, exhausted)
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429 for the exhausted client, got %d", rec.Code)
		}

		other := httptest.NewRequest(http.MethodPost, "/login", nil)
		other.RemoteAddr = "203.0.113.9:1000"
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, other)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for a fresh client, got %d", rec.Code)
		}
	})
}
