package model

// PlaceSuggestion is one autocomplete hit from the places API.
type PlaceSuggestion struct {
	PlaceID       string `json:"placeId"`
	Text          string `json:"text"`
	MainText      string `json:"mainText,omitempty"`
	SecondaryText string `json:"secondaryText,omitempty"`
}

// Place is the subset of place details the front end needs to cast a vote
// or post a comment: the stable id plus the name/address snapshots.
type Place struct {
	ID               string `json:"id"`
	DisplayName      string `json:"displayName"`
	FormattedAddress string `json:"formattedAddress"`
}
