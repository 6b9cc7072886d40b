package domain

// Phase represents the current phase of a room
type Phase string

const (
	PhaseLobby   Phase = "lobby"   // Waiting for players to join
	PhaseInGame  Phase = "in_game" // Active match, bomb is ticking
	PhaseResults Phase = "results" // Post-match summary
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}
