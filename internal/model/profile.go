package model

import "time"

// Profile is the public face of a user: the display name shown next to
// their comments. Email is the key and never changes.
type Profile struct {
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
