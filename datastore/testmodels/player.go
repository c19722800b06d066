package testmodels

import "github.com/go-openapi/strfmt"

type Player struct {

	// Club the player is registered under.
	// Required: true
	ClubID *string `json:"ClubId"`

	// Unique player identifier within the club.
	// Required: true
	PlayerID *string `json:"PlayerId"`

	// Full display name.
	Name string `json:"Name,omitempty"`

	// Current rating points.
	Rating int64 `json:"Rating,omitempty"`

	// Timestamp when the player was registered.
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"CreatedAt,omitempty"`
}

// PartitionKey groups players by their club.
func (p Player) PartitionKey() string {
	if p.ClubID == nil {
		return ""
	}
	return *p.ClubID
}

// RowKey identifies the player within the club.
func (p Player) RowKey() string {
	if p.PlayerID == nil {
		return ""
	}
	return *p.PlayerID
}
