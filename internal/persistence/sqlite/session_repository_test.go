package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/vetclinic/internal/persistence"
	"github.com/example/vetclinic/internal/testfixtures"
)

func createSession(t *testing.T, h *testfixtures.SQLiteHarness, token string, expiresAt time.Time) persistence.Session {
	t.Helper()

	ctx := context.Background()
	user := testfixtures.NewUser()
	if err := h.Users.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	session, err := h.Sessions.CreateSession(ctx, persistence.Session{
		ID:        "session-" + token,
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return session
}

func TestSessionRepository(t *testing.T) {
	t.Parallel()

	t.Run("creates and loads a session by token", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		expiresAt := testfixtures.ReferenceTime().Add(24 * time.Hour)
		created := createSession(t, h, "token-load", expiresAt)

		loaded, err := h.Sessions.GetSession(context.Background(), "token-load")
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if loaded.UserID != created.UserID {
			t.Fatalf("expected user %s, got %s", created.UserID, loaded.UserID)
		}
		if !loaded.ExpiresAt.Equal(expiresAt) {
			t.Fatalf("expected expiry %v, got %v", expiresAt, loaded.ExpiresAt)
		}
		if loaded.RevokedAt != nil {
			t.Fatal("expected a fresh session to be unrevoked")
		}
	})

	t.Run("a session without a token is rejected", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		_, err := h.Sessions.CreateSession(context.Background(), persistence.Session{ID: "session-1", UserID: "user-x"})
		if !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})

	t.Run("revoking stamps the session", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		createSession(t, h, "token-revoke", testfixtures.ReferenceTime().Add(24*time.Hour))

		revokedAt := testfixtures.ReferenceTime().Add(time.Hour)
		if err := h.Sessions.RevokeSession(context.Background(), "token-revoke", revokedAt); err != nil {
			t.Fatalf("RevokeSession failed: %v", err)
		}

		loaded, err := h.Sessions.GetSession(context.Background(), "token-revoke")
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if loaded.RevokedAt == nil || !loaded.RevokedAt.Equal(revokedAt) {
			t.Fatalf("expected revoked_at %v, got %v", revokedAt, loaded.RevokedAt)
		}
	})

	t.Run("revoking an unknown token is not found", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		if err := h.Sessions.RevokeSession(context.Background(), "missing", testfixtures.ReferenceTime()); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("pruning removes only expired sessions", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		reference := testfixtures.ReferenceTime()
		createSession(t, h, "token-expired", reference.Add(-time.Hour))
		createSession(t, h, "token-live", reference.Add(time.Hour))

		if err := h.Sessions.DeleteExpiredSessions(context.Background(), reference); err != nil {
			t.Fatalf("DeleteExpiredSessions failed: %v", err)
		}

		if _, err := h.Sessions.GetSession(context.Background(), "token-expired"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected the expired session to be gone, got %v", err)
		}
		if _, err := h.Sessions.GetSession(context.Background(), "token-live"); err != nil {
			t.Fatalf("expected the live session to survive, got %v", err)
		}
	})
}
