package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"messmate/internal/models"
	"messmate/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "messmate-auth-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestOfflineAuthenticator(t *testing.T) {
	store := newTestStore(t)
	a := NewOfflineAuthenticator(store)
	ctx := context.Background()
	const alice = "alice@mess.com"

	if err := store.UpsertUserLocal(ctx, models.User{
		UserID: "uid-1", FullName: "Alice", Username: alice, Status: models.StatusActive,
	}); err != nil {
		t.Fatalf("UpsertUserLocal failed: %v", err)
	}

	t.Run("login before any cached credential is rejected", func(t *testing.T) {
		_, err := a.Authenticate(ctx, alice, "correct horse")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("weak password cannot be cached", func(t *testing.T) {
		if err := a.CacheCredential(ctx, alice, "short"); !errors.Is(err, ErrWeakPassword) {
			t.Errorf("Expected ErrWeakPassword, got %v", err)
		}
	})

	t.Run("cached credential lets the member back in offline", func(t *testing.T) {
		if err := a.CacheCredential(ctx, alice, "correct horse battery"); err != nil {
			t.Fatalf("CacheCredential failed: %v", err)
		}

		user, err := a.Authenticate(ctx, alice, "correct horse battery")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if user.Username != alice {
			t.Errorf("Unexpected user: %+v", user)
		}

		if _, err := a.Authenticate(ctx, alice, "wrong password!"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", err)
		}
	})

	t.Run("unknown username is rejected without detail", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "nobody@mess.com", "whatever123")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("pending account is rejected even with the right password", func(t *testing.T) {
		const bob = "bob@mess.com"
		if err := store.UpsertUserLocal(ctx, models.User{
			UserID: "uid-2", Username: bob, Status: models.StatusPending,
		}); err != nil {
			t.Fatalf("UpsertUserLocal failed: %v", err)
		}
		if err := a.CacheCredential(ctx, bob, "bob password 123"); err != nil {
			t.Fatalf("CacheCredential failed: %v", err)
		}

		if _, err := a.Authenticate(ctx, bob, "bob password 123"); !errors.Is(err, ErrNotApproved) {
			t.Errorf("Expected ErrNotApproved, got %v", err)
		}
	})

	t.Run("deactivated account is rejected", func(t *testing.T) {
		if _, err := store.DeactivateUser(ctx, alice); err != nil {
			t.Fatalf("DeactivateUser failed: %v", err)
		}
		if _, err := a.Authenticate(ctx, alice, "correct horse battery"); !errors.Is(err, ErrDeactivated) {
			t.Errorf("Expected ErrDeactivated, got %v", err)
		}
	})
}
