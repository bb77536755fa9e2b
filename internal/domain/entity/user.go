// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the account record kept by the credential store.
// Username and Email are unique across all users.
type User struct {
	ID           uuid.UUID // Opaque identifier, also embedded in access tokens.
	Username     string    // Unique login handle chosen at registration.
	Email        string    // Unique email, the subject of every issued token.
	PasswordHash string    // bcrypt hash of the user's password.
	Role         Role      // Always RoleUser on registration; never changed by profile updates.
	Profile      Profile   // Optional personal details.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the optional, user-editable details of an account.
type Profile struct {
	FirstName      *string
	LastName       *string
	DateOfBirth    *time.Time
	ProfilePicture *string
}

// ProfileUpdate carries a partial profile change. Nil fields are left untouched and an
// empty ProfilePicture removes the picture.
type ProfileUpdate struct {
	FirstName      *string
	LastName       *string
	DateOfBirth    *time.Time
	ProfilePicture *string
	Password       *string
}

// Apply copies the non-nil profile fields of upd onto the user. Password is handled by the caller.
func (u *User) Apply(upd *ProfileUpdate) {
	if upd == nil {
		return
	}
	if upd.FirstName != nil {
		u.Profile.FirstName = upd.FirstName
	}
	if upd.LastName != nil {
		u.Profile.LastName = upd.LastName
	}
	if upd.DateOfBirth != nil {
		u.Profile.DateOfBirth = upd.DateOfBirth
	}
	if upd.ProfilePicture != nil {
		if *upd.ProfilePicture == "" {
			u.Profile.ProfilePicture = nil
		} else {
			u.Profile.ProfilePicture = upd.ProfilePicture
		}
	}
}
