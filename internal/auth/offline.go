// Package auth provides offline authentication against the locally cached
// credential and parsing of identity-provider tokens. The remote identity
// system owns accounts; this package only lets a member back into the app
// while the device has no network path.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"messmate/internal/models"
	"messmate/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrNotApproved        = errors.New("account pending admin approval")
	ErrDeactivated        = errors.New("account has been removed")
)

// OfflineAuthenticator verifies a member against the bcrypt hash cached in
// the local users table.
type OfflineAuthenticator struct {
	users storage.UserStore
}

// NewOfflineAuthenticator creates an authenticator over the given user store.
func NewOfflineAuthenticator(users storage.UserStore) *OfflineAuthenticator {
	return &OfflineAuthenticator{users: users}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *OfflineAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Authenticate verifies the username and password against the cached hash,
// returning the user if valid. Pending and deleted accounts are rejected
// even with a correct password.
func (a *OfflineAuthenticator) Authenticate(ctx context.Context, username, credential string) (*models.User, error) {
	user, err := a.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.PasswordHash == "" {
		// Never cached: this device has not completed an online login yet.
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	switch user.Status {
	case models.StatusPending:
		return nil, ErrNotApproved
	case models.StatusDeleted:
		return nil, ErrDeactivated
	}
	return user, nil
}

// CacheCredential hashes and stores the password after a successful online
// login so the next offline login can verify it.
func (a *OfflineAuthenticator) CacheCredential(ctx context.Context, username, credential string) error {
	if err := a.ValidateCredential(credential); err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := a.users.SetLocalCredential(ctx, username, string(hashed)); err != nil {
		return fmt.Errorf("failed to cache credential: %w", err)
	}
	return nil
}
