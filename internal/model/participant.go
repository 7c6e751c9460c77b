package model

import "time"

// ParticipantID uniquely identifies a participant
type ParticipantID string

// Category is the binary grouping used for matchmaking and answer/vote eligibility
type Category string

const (
	CategoryMale   Category = "male"
	CategoryFemale Category = "female"
)

// Valid reports whether c is one of the two recognized categories
func (c Category) Valid() bool {
	return c == CategoryMale || c == CategoryFemale
}

// Opposite returns the other category
func (c Category) Opposite() Category {
	if c == CategoryMale {
		return CategoryFemale
	}
	return CategoryMale
}

// Profile holds the display fields supplied by the front door
type Profile struct {
	DisplayName string
	Username    string
	PhotoURL    string
}

// Participant represents a durable person record.
// Category is empty until declared and may only change while the
// participant holds no active participation.
type Participant struct {
	ID         ParticipantID
	ExternalID string // opaque front-door identity
	Profile    Profile
	Category   Category // empty until declared
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasCategory reports whether the participant has declared a category
func (p *Participant) HasCategory() bool {
	return p.Category.Valid()
}

// Participation is the join record linking a participant to a session
type Participation struct {
	SessionID     SessionID
	ParticipantID ParticipantID
	JoinedAt      time.Time
}
