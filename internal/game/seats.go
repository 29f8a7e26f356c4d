// internal/game/seats.go
package game

import "github.com/google/uuid"

// SeatID addresses one card slot: a seated player's uuid string, or one of
// the three center slots.
type SeatID string

const (
	SeatLeft   SeatID = "left"
	SeatCenter SeatID = "center"
	SeatRight  SeatID = "right"
)

// IsCenter reports whether the seat is one of the three center slots.
func (s SeatID) IsCenter() bool {
	return s == SeatLeft || s == SeatCenter || s == SeatRight
}

// PlayerSeat converts a player id to its seat id.
func PlayerSeat(id uuid.UUID) SeatID {
	return SeatID(id.String())
}

// PlayerID parses a player seat back into the player's uuid. Center seats
// and malformed ids report ok=false.
func (s SeatID) PlayerID() (uuid.UUID, bool) {
	if s.IsCenter() {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(string(s))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func seatStrings(seats []SeatID) []string {
	out := make([]string, len(seats))
	for i, s := range seats {
		out[i] = string(s)
	}
	return out
}
