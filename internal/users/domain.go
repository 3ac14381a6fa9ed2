package users

import "time"

// Profile is the account view exposed to its owner and to administrators.
// The password hash never leaves the repository layer.
type Profile struct {
	ID         int64
	Email      string
	FirstName  string
	LastName   string
	MiddleName string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ProfileUpdate carries the mutable profile fields. An empty PasswordHash
// leaves the stored credential untouched.
type ProfileUpdate struct {
	Email        string
	FirstName    string
	LastName     string
	MiddleName   string
	PasswordHash string
}
