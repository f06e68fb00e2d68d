package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system. Google OAuth tokens are stored so the
// sync endpoints can call the Calendar and Gmail APIs on the user's behalf;
// they are never serialized into API responses.
type User struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	ProviderID         *string    `json:"provider_id,omitempty"`
	Name               *string    `json:"name,omitempty"`
	EmailVerified      bool       `json:"email_verified"`
	GoogleAccessToken  *string    `json:"-"`
	GoogleRefreshToken *string    `json:"-"`
	GoogleTokenExpiry  *time.Time `json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// HasGoogleTokens reports whether the user has connected a Google account.
func (u *User) HasGoogleTokens() bool {
	return u.GoogleAccessToken != nil && *u.GoogleAccessToken != ""
}
