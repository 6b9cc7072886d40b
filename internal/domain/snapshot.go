package domain

import "time"

// PlayerSnapshot is the externally visible view of a player
type PlayerSnapshot struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Connected  bool   `json:"connected"`
	Score      int    `json:"score"`
	Lives      int    `json:"lives"`
	Eliminated bool   `json:"eliminated"`
	JoinedAt   int64  `json:"joinedAt"` // unix millis
}

// RoomSnapshot is the externally visible projection of room state, sent to
// every connection in the room on state changes and scheduler ticks. It
// strips internal bookkeeping (used-word set, previous chunk, timestamps).
type RoomSnapshot struct {
	RoomCode         string           `json:"roomCode"`
	Phase            Phase            `json:"phase"`
	HostID           string           `json:"hostId"`
	Players          []PlayerSnapshot `json:"players"`
	Settings         Settings         `json:"settings"`
	ActivePlayerID   string           `json:"activePlayerId,omitempty"`
	CurrentChunk     string           `json:"currentChunk,omitempty"`
	TimerRemainingMs int64            `json:"timerRemainingMs"`
	UsedWords        []string         `json:"usedWords"`
	WinnerID         string           `json:"winnerId,omitempty"`
	LastEvent        string           `json:"lastEvent,omitempty"`
	CanStart         bool             `json:"canStart"`
	ServerTime       int64            `json:"serverTime"` // unix millis, for client clock reconciliation
}

// Snapshot projects the room into its broadcastable form. The remaining
// timer is computed against the supplied clock time and floors at zero.
func (r *Room) Snapshot(minPlayers int, now time.Time) RoomSnapshot {
	players := make([]PlayerSnapshot, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, PlayerSnapshot{
			ID:         p.ID,
			Name:       p.Name,
			Connected:  p.Connected,
			Score:      p.Score,
			Lives:      p.Lives,
			Eliminated: p.Eliminated,
			JoinedAt:   p.JoinedAt.UnixMilli(),
		})
	}

	remaining := int64(0)
	if r.Phase == PhaseInGame && !r.Deadline.IsZero() {
		if ms := r.Deadline.Sub(now).Milliseconds(); ms > 0 {
			remaining = ms
		}
	}

	usedWords := make([]string, len(r.UsedWords))
	copy(usedWords, r.UsedWords)

	return RoomSnapshot{
		RoomCode:         r.Code,
		Phase:            r.Phase,
		HostID:           r.HostID,
		Players:          players,
		Settings:         r.Settings,
		ActivePlayerID:   r.ActivePlayerID,
		CurrentChunk:     r.CurrentChunk,
		TimerRemainingMs: remaining,
		UsedWords:        usedWords,
		WinnerID:         r.WinnerID,
		LastEvent:        r.LastEvent,
		CanStart:         r.CanStart(minPlayers),
		ServerTime:       now.UnixMilli(),
	}
}
