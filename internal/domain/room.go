package domain

import (
	"fmt"
	"strings"
	"time"
)

// Room represents one isolated game session. All rule logic lives here as
// plain error-returning methods; locking and broadcast are the caller's job.
type Room struct {
	Code     string
	Phase    Phase
	HostID   string
	Settings Settings

	// Players in join order. The order is immutable once set; eligibility
	// is a computed overlay, never a reorder.
	Players []*Player

	// Per-match state
	UsedWords      []string
	usedSet        map[string]struct{}
	ActivePlayerID string
	CurrentChunk   string
	PreviousChunk  string
	Deadline       time.Time // zero while no turn timer is running
	WinnerID       string

	LastEvent  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	EmptySince time.Time // zero while at least one player is connected
}

// NewRoom creates a room in the lobby phase with the given settings
func NewRoom(code string, settings Settings, now time.Time) *Room {
	return &Room{
		Code:      code,
		Phase:     PhaseLobby,
		Settings:  settings,
		Players:   make([]*Player, 0, 8),
		UsedWords: make([]string, 0),
		usedSet:   make(map[string]struct{}),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddPlayer appends a new player to the roster. The first player becomes
// the host. Lives are taken from the current settings.
func (r *Room) AddPlayer(id, name, connID string, maxPlayers int, now time.Time) (*Player, error) {
	if r.Phase != PhaseLobby {
		return nil, ErrRoomNotJoinable
	}
	if len(r.Players) >= maxPlayers {
		return nil, ErrRoomFull
	}
	if _, ok := r.FindPlayerByName(name); ok {
		return nil, ErrNameTaken
	}

	player := NewPlayer(id, name, connID, r.Settings.StartingLives, now)
	r.Players = append(r.Players, player)
	if r.HostID == "" {
		r.HostID = id
	}
	r.EmptySince = time.Time{}
	r.UpdatedAt = now

	return player, nil
}

// FindPlayer returns a player by ID
func (r *Room) FindPlayer(id string) (*Player, bool) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// FindPlayerByName returns a player by display name, case-insensitively
func (r *Room) FindPlayerByName(name string) (*Player, bool) {
	for _, p := range r.Players {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return nil, false
}

// ConnectedCount returns the number of currently connected players
func (r *Room) ConnectedCount() int {
	count := 0
	for _, p := range r.Players {
		if p.Connected {
			count++
		}
	}
	return count
}

// EligiblePlayers returns the players still in turn order: connected and
// not eliminated, in join order.
func (r *Room) EligiblePlayers() []*Player {
	eligible := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Eligible() {
			eligible = append(eligible, p)
		}
	}
	return eligible
}

// NextEligibleAfter scans clockwise from the given player's position in join
// order, wrapping around, and returns the first eligible player strictly
// after it. With an empty fromID it returns the first eligible player in
// join order. Returns nil if nobody is eligible.
func (r *Room) NextEligibleAfter(fromID string) *Player {
	start := -1
	if fromID != "" {
		for i, p := range r.Players {
			if p.ID == fromID {
				start = i
				break
			}
		}
	}

	n := len(r.Players)
	for offset := 1; offset <= n; offset++ {
		candidate := r.Players[(start+offset)%n]
		if candidate.Eligible() {
			if candidate.ID == fromID && offset < n {
				continue
			}
			return candidate
		}
	}
	return nil
}

// EnsureHost transfers the host role to the earliest-joined connected player
// when the current host is missing or disconnected. Reports whether the
// host changed.
func (r *Room) EnsureHost() bool {
	if host, ok := r.FindPlayer(r.HostID); ok && host.Connected {
		return false
	}
	for _, p := range r.Players {
		if p.Connected {
			if r.HostID == p.ID {
				return false
			}
			r.HostID = p.ID
			return true
		}
	}
	return false
}

// CanStart reports whether the match can be started: lobby phase with at
// least minPlayers connected.
func (r *Room) CanStart(minPlayers int) bool {
	return r.Phase == PhaseLobby && r.ConnectedCount() >= minPlayers
}

// StartMatch resets all per-match state, picks the first active player and
// chunk, opens the first timer window and transitions to in_game.
func (r *Room) StartMatch(rnd Rand, minPlayers int, now time.Time) error {
	if r.Phase != PhaseLobby {
		return ErrWrongPhase
	}
	if r.ConnectedCount() < minPlayers {
		return ErrNotEnoughPlayers
	}

	for _, p := range r.Players {
		p.Score = 0
		p.Lives = r.Settings.StartingLives
		p.Eliminated = false
	}
	r.UsedWords = r.UsedWords[:0]
	r.usedSet = make(map[string]struct{})
	r.WinnerID = ""

	first := r.NextEligibleAfter("")
	if first == nil {
		// All candidates dropped between validation and selection
		return ErrNotEnoughPlayers
	}

	r.ActivePlayerID = first.ID
	r.PreviousChunk = ""
	r.CurrentChunk = PickChunk(rnd, ChunkCatalog, "")
	r.Deadline = now.Add(r.Settings.TurnDuration())
	r.Phase = PhaseInGame
	r.LastEvent = fmt.Sprintf("Game on! %s has the bomb", first.Name)
	r.UpdatedAt = now

	return nil
}

// HasUsedWord reports whether a normalized word was already played this match
func (r *Room) HasUsedWord(word string) bool {
	_, ok := r.usedSet[word]
	return ok
}

// UseWord records a normalized word in the used set and ordered log
func (r *Room) UseWord(word string) {
	r.usedSet[word] = struct{}{}
	r.UsedWords = append(r.UsedWords, word)
}

// AdvanceTurn passes the bomb to the next eligible player after fromID,
// picking a fresh chunk and opening a new timer window. If one or zero
// eligible players remain the match ends instead.
func (r *Room) AdvanceTurn(fromID string, rnd Rand, now time.Time) {
	if r.Phase != PhaseInGame {
		return
	}
	if r.maybeEndMatch(now) {
		return
	}

	next := r.NextEligibleAfter(fromID)
	if next == nil {
		// Unreachable given maybeEndMatch, but never leave in_game without
		// an active player past this point
		r.endMatch("", now)
		return
	}

	r.ActivePlayerID = next.ID
	r.PreviousChunk = r.CurrentChunk
	r.CurrentChunk = PickChunk(rnd, ChunkCatalog, r.PreviousChunk)
	r.Deadline = now.Add(r.Settings.TurnDuration())
	r.UpdatedAt = now
}

// ExpireTurn handles a turn-timer expiry. If the active player is no longer
// eligible the bomb simply passes with no life lost; otherwise the active
// player loses one life and may be eliminated. Either way the turn advances,
// which may end the match. Reports whether anything happened.
func (r *Room) ExpireTurn(rnd Rand, now time.Time) bool {
	if r.Phase != PhaseInGame || r.Deadline.IsZero() || now.Before(r.Deadline) {
		return false
	}

	fromID := r.ActivePlayerID
	if active, ok := r.FindPlayer(fromID); ok && active.Eligible() {
		active.Lives--
		if active.Lives <= 0 {
			active.Lives = 0
			active.Eliminated = true
			r.LastEvent = fmt.Sprintf("%s ran out of time and is eliminated", active.Name)
		} else {
			r.LastEvent = fmt.Sprintf("%s ran out of time and lost a life", active.Name)
		}
	}

	r.AdvanceTurn(fromID, rnd, now)
	return true
}

// HandleDisconnect applies the mid-game consequences of a player dropping:
// the bomb passes if they held it, and the match ends if too few eligible
// players remain. Marks the room empty when nobody is left connected.
func (r *Room) HandleDisconnect(playerID string, rnd Rand, now time.Time) {
	player, ok := r.FindPlayer(playerID)
	if !ok {
		return
	}

	player.Disconnect()
	r.LastEvent = fmt.Sprintf("%s disconnected", player.Name)
	r.EnsureHost()

	if r.Phase == PhaseInGame {
		if r.ActivePlayerID == playerID {
			r.AdvanceTurn(playerID, rnd, now)
		} else {
			r.maybeEndMatch(now)
		}
	}

	if r.ConnectedCount() == 0 {
		r.EmptySince = now
	}
	r.UpdatedAt = now
}

// HandleReconnect rebinds a player to a new connection. The optional new
// name is applied only when it does not collide with another player. If the
// match is running with no active player, the bomb is handed to the next
// eligible player immediately.
func (r *Room) HandleReconnect(playerID, connID, newName string, rnd Rand, now time.Time) (*Player, error) {
	player, ok := r.FindPlayer(playerID)
	if !ok {
		return nil, ErrPlayerNotFound
	}

	player.Reconnect(connID)
	if newName != "" && !strings.EqualFold(newName, player.Name) {
		if _, taken := r.FindPlayerByName(newName); !taken {
			player.Name = newName
		}
	}

	r.EmptySince = time.Time{}
	r.EnsureHost()
	r.LastEvent = fmt.Sprintf("%s reconnected", player.Name)

	if r.Phase == PhaseInGame && r.ActivePlayerID == "" {
		r.AdvanceTurn("", rnd, now)
	}
	r.UpdatedAt = now

	return player, nil
}

// ApplySettings applies a partial, clamped settings update. Lobby-only;
// the host check is the caller's responsibility.
func (r *Room) ApplySettings(patch SettingsPatch, bounds SettingsBounds, now time.Time) error {
	if r.Phase != PhaseLobby {
		return ErrWrongPhase
	}
	r.Settings = r.Settings.Apply(patch, bounds)
	r.UpdatedAt = now
	return nil
}

// ResetForLobby returns a finished room to the lobby, clearing all per-match
// state but leaving the roster and connection state untouched.
func (r *Room) ResetForLobby(now time.Time) error {
	if r.Phase != PhaseResults {
		return ErrWrongPhase
	}

	for _, p := range r.Players {
		p.Score = 0
		p.Lives = r.Settings.StartingLives
		p.Eliminated = false
	}
	r.UsedWords = r.UsedWords[:0]
	r.usedSet = make(map[string]struct{})
	r.ActivePlayerID = ""
	r.CurrentChunk = ""
	r.PreviousChunk = ""
	r.Deadline = time.Time{}
	r.WinnerID = ""
	r.Phase = PhaseLobby
	r.LastEvent = "Back to the lobby"
	r.UpdatedAt = now

	return nil
}

// maybeEndMatch ends the match when one or zero eligible players remain.
// Reports whether the match ended.
func (r *Room) maybeEndMatch(now time.Time) bool {
	if r.Phase != PhaseInGame {
		return false
	}
	eligible := r.EligiblePlayers()
	if len(eligible) > 1 {
		return false
	}

	winnerID := ""
	if len(eligible) == 1 {
		winnerID = eligible[0].ID
		r.LastEvent = fmt.Sprintf("%s wins!", eligible[0].Name)
	} else {
		r.LastEvent = "Nobody survived the bomb"
	}
	r.endMatch(winnerID, now)
	return true
}

func (r *Room) endMatch(winnerID string, now time.Time) {
	r.Phase = PhaseResults
	r.WinnerID = winnerID
	r.ActivePlayerID = ""
	r.CurrentChunk = ""
	r.PreviousChunk = ""
	r.Deadline = time.Time{}
	r.UpdatedAt = now
}
