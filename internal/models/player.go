package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Player is one seat at the table. StartRole is fixed when the deck is
// dealt and decides what the player may do at night; CurrentRole is what
// the seat actually holds after swaps.
type Player struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username,omitempty"`
	StartRole   Role       `json:"startRole,omitempty"`
	CurrentRole Role       `json:"currentRole,omitempty"`
	Alive       bool       `json:"alive"`
	VotedFor    *uuid.UUID `json:"votedFor,omitempty"`

	// Done is set once the player has dismissed their night prompt.
	Done bool `json:"done"`

	// Acted is set once the player has spent their night action.
	Acted bool `json:"-"`

	Connected bool            `json:"connected"`
	Conn      *websocket.Conn `json:"-"`

	User *User `json:"-"`
}
