package types

import "time"

// User represents an account in the system.
// The mobile phone number is the authentication identity.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Mobile is the user's phone number. It uniquely identifies
	// exactly one account.
	Mobile string `json:"mobile" db:"mobile"`

	// Username is the user's display name. Defaults to the mobile
	// number at registration.
	Username string `json:"username" db:"username"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// AvatarKey is the object-storage key of the user's avatar image,
	// empty when no avatar has been uploaded.
	AvatarKey string `json:"avatar_key" db:"avatar_key"`

	// Bio is the user's free-text self description.
	Bio string `json:"bio" db:"bio"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
