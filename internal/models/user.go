package models

// UserStatus is the lifecycle state of a user record.
type UserStatus string

const (
	// StatusPending means the user signed up but an admin has not approved
	// them yet. Pending users do not appear on the member roster.
	StatusPending UserStatus = "pending"

	// StatusActive means the user is an approved mess member.
	StatusActive UserStatus = "active"

	// StatusDeleted means the user was removed by an admin. The record is
	// kept so remote snapshots stay reconcilable, but the member row goes.
	StatusDeleted UserStatus = "deleted"
)

// User is a mess member's identity record. Each device holds its own cached
// copy keyed by Username; the remote users collection is authoritative.
type User struct {
	// UserID is the stable id assigned by the remote identity system.
	UserID string

	// FullName is the display name shown in notifications and rosters.
	FullName string

	// Username is the email-shaped identifier used as the natural key for
	// meals and expenses.
	Username string

	// PasswordHash is the bcrypt hash cached locally for offline login only.
	// It never leaves the device and is preserved across remote upserts.
	PasswordHash string

	// Contact, Address and ParentContact are plain profile fields.
	Contact       string
	Address       string
	ParentContact string

	// IsAdmin marks the mess admin (manages membership and pricing).
	IsAdmin bool

	// Status is the lifecycle state: pending -> active -> deleted.
	Status UserStatus
}

// Role returns the roster role string derived from the admin flag.
func (u *User) Role() string {
	if u.IsAdmin {
		return "admin"
	}
	return "member"
}

// Member is one row of the active roster, maintained from user status
// transitions: an active user has a member row, everyone else does not.
type Member struct {
	// ID is the local autoincrement id.
	ID int64

	// Name is the member's username (email).
	Name string

	// Role is "admin" or "member".
	Role string

	// Contact, Address and ParentContact mirror the user profile fields.
	Contact       string
	Address       string
	ParentContact string
}
