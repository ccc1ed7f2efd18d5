package model

import "time"

// Comment is free text a user attached to a place.
//
// DisplayName and IsOwn are not stored in the comments table: DisplayName is
// resolved from the author's profile at read time and IsOwn depends on who
// is asking. They are filled by the repository and the service respectively.
type Comment struct {
	ID           string    `json:"id"`
	PlaceID      string    `json:"place_id"`
	PlaceName    string    `json:"place_name,omitempty"`
	PlaceAddress string    `json:"place_address,omitempty"`
	Text         string    `json:"comment_text"`
	OwnerEmail   string    `json:"user_email"`
	DisplayName  string    `json:"display_name"`
	IsOwn        bool      `json:"isOwnComment"`
	CreatedAt    time.Time `json:"created_at"`
}
