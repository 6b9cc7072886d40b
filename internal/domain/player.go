package domain

import "time"

// Player represents a player in a room. Players are created on join and stay
// in the roster for the life of the room, even while disconnected, so that
// reconnection and scoreboards keep working.
type Player struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ConnID     string    `json:"-"` // empty while disconnected
	Connected  bool      `json:"connected"`
	Score      int       `json:"score"`
	Lives      int       `json:"lives"`
	Eliminated bool      `json:"eliminated"`
	JoinedAt   time.Time `json:"joinedAt"`
}

// NewPlayer creates a connected player with the given starting lives
func NewPlayer(id, name, connID string, lives int, now time.Time) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		ConnID:    connID,
		Connected: true,
		Lives:     lives,
		JoinedAt:  now,
	}
}

// Eligible reports whether the player can take part in turn order:
// connected and not eliminated.
func (p *Player) Eligible() bool {
	return p.Connected && !p.Eliminated
}

// Disconnect clears the connection binding but keeps the player in the roster
func (p *Player) Disconnect() {
	p.ConnID = ""
	p.Connected = false
}

// Reconnect rebinds the player to a new connection
func (p *Player) Reconnect(connID string) {
	p.ConnID = connID
	p.Connected = true
}
