/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package testmodels

import (
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
)

// NewMatch returns a match under the given event with a random match ID.
func NewMatch(eventID string) *Match {
	matchID := uuid.New().String()
	now := strfmt.DateTime(time.Now().UTC())
	return &Match{
		EventID:   &eventID,
		MatchID:   &matchID,
		CreatedAt: &now,
		UpdatedAt: &now,
	}
}

// NewPlayer returns a player under the given club with a random player ID.
func NewPlayer(clubID string) *Player {
	playerID := uuid.New().String()
	now := strfmt.DateTime(time.Now().UTC())
	return &Player{
		ClubID:    &clubID,
		PlayerID:  &playerID,
		CreatedAt: &now,
	}
}
