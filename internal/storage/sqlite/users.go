package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"messmate/internal/models"
	"messmate/internal/storage"
)

// cachedPassword returns the locally stored password hash for username, or
// "" when none exists. Remote upserts must never clobber it: the hash only
// lives on this device and is the user's offline login.
func (s *Store) cachedPassword(ctx context.Context, username string) (string, error) {
	var hash sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT password FROM users WHERE username = ?", username,
	).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cached credential: %w", err)
	}
	return hash.String, nil
}

// UpsertUserFromRemote overwrites-or-inserts the user keyed by username,
// preserving the cached password hash. An active status maintains the member
// roster row; any other status removes it.
func (s *Store) UpsertUserFromRemote(ctx context.Context, user models.User) error {
	if user.Username == "" {
		return nil
	}

	existingPass, err := s.cachedPassword(ctx, user.Username)
	if err != nil {
		return err
	}

	if err := s.writeUser(ctx, user, existingPass); err != nil {
		return err
	}

	if user.Status == models.StatusActive {
		return s.upsertMember(ctx, user)
	}

	_, err = s.db.ExecContext(ctx, "DELETE FROM members WHERE name = ?", user.Username)
	if err != nil {
		return fmt.Errorf("failed to remove member row: %w", err)
	}
	return nil
}

// UpsertUserLocal inserts or updates a locally created user, keeping the
// existing cached credential when the new one is empty.
func (s *Store) UpsertUserLocal(ctx context.Context, user models.User) error {
	if user.Username == "" {
		return nil
	}

	pass := user.PasswordHash
	if pass == "" {
		existing, err := s.cachedPassword(ctx, user.Username)
		if err != nil {
			return err
		}
		pass = existing
	}
	return s.writeUser(ctx, user, pass)
}

func (s *Store) writeUser(ctx context.Context, user models.User, passwordHash string) error {
	isAdmin := 0
	if user.IsAdmin {
		isAdmin = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, full_name, username, password, contact, address, parent_contact, is_admin, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET
		   user_id = excluded.user_id,
		   full_name = excluded.full_name,
		   password = excluded.password,
		   contact = excluded.contact,
		   address = excluded.address,
		   parent_contact = excluded.parent_contact,
		   is_admin = excluded.is_admin,
		   status = excluded.status`,
		user.UserID, user.FullName, user.Username, passwordHash,
		user.Contact, user.Address, user.ParentContact, isAdmin, string(user.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (s *Store) upsertMember(ctx context.Context, user models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (name, role, contact, address, parent_contact)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   role = excluded.role,
		   contact = excluded.contact,
		   address = excluded.address,
		   parent_contact = excluded.parent_contact`,
		user.Username, user.Role(), user.Contact, user.Address, user.ParentContact,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert member: %w", err)
	}
	return nil
}

// GetUserByUsername returns the cached user record.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u := &models.User{}
	var pass, status sql.NullString
	var isAdmin int
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, full_name, username, password, contact, address, parent_contact, is_admin, status
		 FROM users WHERE username = ?`, username,
	).Scan(&u.UserID, &u.FullName, &u.Username, &pass, &u.Contact, &u.Address, &u.ParentContact, &isAdmin, &status)
	if err == sql.ErrNoRows {
		return nil, storage.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.PasswordHash = pass.String
	u.IsAdmin = isAdmin == 1
	u.Status = models.UserStatus(status.String)
	return u, nil
}

// ListPendingUsers returns users awaiting admin approval.
func (s *Store) ListPendingUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, full_name, username, contact, address, parent_contact, is_admin, status
		 FROM users WHERE status = ?`, string(models.StatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending users: %w", err)
	}
	defer rows.Close()

	var pending []models.User
	for rows.Next() {
		var u models.User
		var isAdmin int
		var status string
		if err := rows.Scan(&u.UserID, &u.FullName, &u.Username, &u.Contact, &u.Address, &u.ParentContact, &isAdmin, &status); err != nil {
			return nil, fmt.Errorf("failed to scan pending user: %w", err)
		}
		u.IsAdmin = isAdmin == 1
		u.Status = models.UserStatus(status)
		pending = append(pending, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending users: %w", err)
	}
	return pending, nil
}

// ApprovePendingUser transitions the user to active and promotes the member
// roster row.
func (s *Store) ApprovePendingUser(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	var username, contact, address, parentContact sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT username, contact, address, parent_contact FROM users WHERE user_id = ?",
		userID,
	).Scan(&username, &contact, &address, &parentContact)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up pending user: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET status = ? WHERE user_id = ?",
		string(models.StatusActive), userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to approve user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read approve result: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	err = s.upsertMember(ctx, models.User{
		Username:      username.String,
		Contact:       contact.String,
		Address:       address.String,
		ParentContact: parentContact.String,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeactivateUser transitions the user to deleted and drops the roster row.
func (s *Store) DeactivateUser(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, nil
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET status = ? WHERE username = ?",
		string(models.StatusDeleted), username,
	)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read deactivate result: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM members WHERE name = ?", username); err != nil {
		return false, fmt.Errorf("failed to remove member row: %w", err)
	}
	return true, nil
}

// SetLocalCredential stores the bcrypt hash cached for offline login.
func (s *Store) SetLocalCredential(ctx context.Context, username, passwordHash string) error {
	if username == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET password = ? WHERE username = ?",
		passwordHash, username,
	)
	if err != nil {
		return fmt.Errorf("failed to cache credential: %w", err)
	}
	return nil
}

// DisplayName resolves a username to the full name, falling back to the
// username itself.
func (s *Store) DisplayName(ctx context.Context, username string) string {
	if username == "" {
		return "Unknown"
	}
	var name sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT full_name FROM users WHERE username = ?", username,
	).Scan(&name)
	if err != nil || !name.Valid || name.String == "" {
		return username
	}
	return name.String
}

// ListMembers returns the active roster ordered by name.
func (s *Store) ListMembers(ctx context.Context) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, role, contact, address, parent_contact
		 FROM members ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		var contact, address, parentContact sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, &contact, &address, &parentContact); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.Contact = contact.String
		m.Address = address.String
		m.ParentContact = parentContact.String
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// MemberCount returns the roster size.
func (s *Store) MemberCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM members").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}
