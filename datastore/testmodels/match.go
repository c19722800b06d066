package testmodels

import "github.com/go-openapi/strfmt"

type Match struct {

	// Identifier of the event the match belongs to.
	// Required: true
	EventID *string `json:"EventId"`

	// Unique identifier of the match within its event.
	// Required: true
	MatchID *string `json:"MatchId"`

	// Round label within the draw (e.g. QF, SF, F).
	Round string `json:"Round,omitempty"`

	// Identifier of the first side.
	PlayerAID string `json:"PlayerAId,omitempty"`

	// Identifier of the second side.
	PlayerBID string `json:"PlayerBId,omitempty"`

	// Final score line, e.g. "11-7,11-9,9-11,11-6".
	Score string `json:"Score,omitempty"`

	// Timestamp when the match was created.
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"CreatedAt,omitempty"`

	// Timestamp when the match was last updated.
	// Format: date-time
	UpdatedAt *strfmt.DateTime `json:"UpdatedAt,omitempty"`
}

// PartitionKey groups matches by their event.
func (m Match) PartitionKey() string {
	if m.EventID == nil {
		return ""
	}
	return *m.EventID
}

// RowKey identifies the match within its event.
func (m Match) RowKey() string {
	if m.MatchID == nil {
		return ""
	}
	return *m.MatchID
}
