// Package model defines the data structures used throughout the application.
// Structs here carry the JSON shape of the API and map one-to-one onto table rows.
package model

import "time"

// VoteValue is a yes/no answer. It is a named string type so that the
// compiler keeps it apart from other strings, while still serialising to
// plain JSON strings ("yes", "no") and plain TEXT columns.
type VoteValue string

const (
	VoteYes VoteValue = "yes"
	VoteNo  VoteValue = "no"
)

// Valid reports whether v is one of the allowed answers.
func (v VoteValue) Valid() bool {
	return v == VoteYes || v == VoteNo
}

// QuestionType names one of the two independent voting axes of a place.
type QuestionType string

const (
	QuestionDog QuestionType = "dog" // "is this place dog-friendly?"
	QuestionPet QuestionType = "pet" // "is this place friendly to other pets?"
)

func (q QuestionType) Valid() bool {
	return q == QuestionDog || q == QuestionPet
}

// Vote is one user's answer to one question about one place.
//
// PlaceName and PlaceAddress are snapshots taken when the vote was cast, so
// "my votes" pages stay readable even if the places API renames a place.
//
// The JSON names match the wire format the web front end already speaks
// (vote_type, user_email ...), which is why they are snake_case here while
// other structs in this package use camelCase.
type Vote struct {
	ID           string       `json:"id"`
	PlaceID      string       `json:"place_id"`
	PlaceName    string       `json:"place_name"`
	PlaceAddress string       `json:"place_address"`
	Value        VoteValue    `json:"vote_type"`
	QuestionType QuestionType `json:"question_type"`
	OwnerEmail   string       `json:"user_email"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Tally is the yes/no count for one question.
type Tally struct {
	Yes int `json:"yes"`
	No  int `json:"no"`
}

// VoteCounts is the aggregate for a place. Both questions are always
// present; a question nobody answered reports {yes:0, no:0}.
type VoteCounts struct {
	Dog Tally `json:"dog"`
	Pet Tally `json:"pet"`
}

// Add records count votes of value v for question q. Unknown combinations
// are ignored, which keeps a stray row from breaking the whole aggregate.
func (c *VoteCounts) Add(q QuestionType, v VoteValue, count int) {
	var t *Tally
	switch q {
	case QuestionDog:
		t = &c.Dog
	case QuestionPet:
		t = &c.Pet
	default:
		return
	}

	switch v {
	case VoteYes:
		t.Yes += count
	case VoteNo:
		t.No += count
	}
}
