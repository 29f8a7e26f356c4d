package models

import "github.com/google/uuid"

type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Password string    `json:"password,omitempty"`
	Username string    `json:"username"`

	IsEphemeral bool `json:"is_ephemeral"`
	IsAdmin     bool `json:"is_admin"`

	// Glicko2 state, updated after each finished game.
	Rating float64 `json:"rating"`
	Phi    float64 `json:"phi"`
	Sigma  float64 `json:"sigma"`
}
