package app

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iyannm/word-fuse/internal/domain"
)

// ClientConnection represents a connected client
type ClientConnection interface {
	ID() string
	Send(message interface{}) error
	Close() error
}

// stateMessage is the broadcast envelope carrying a room snapshot
type stateMessage struct {
	Type  string              `json:"type"`
	State domain.RoomSnapshot `json:"state"`
}

// RoomSession wraps a room with exclusive access and client management.
// Every mutation of room state in the process goes through this lock, so
// the domain layer itself needs none.
type RoomSession struct {
	mu      sync.Mutex
	room    *domain.Room
	clients map[string]ClientConnection // connection id -> client

	opts   Options
	dict   Dictionary
	clock  Clock
	rand   domain.Rand
	logger zerolog.Logger
}

// NewRoomSession creates a session around an existing room
func NewRoomSession(room *domain.Room, opts Options, dict Dictionary, clock Clock, rnd domain.Rand, logger zerolog.Logger) *RoomSession {
	return &RoomSession{
		room:    room,
		clients: make(map[string]ClientConnection),
		opts:    opts,
		dict:    dict,
		clock:   clock,
		rand:    rnd,
		logger:  logger,
	}
}

// Code returns the room code
func (s *RoomSession) Code() string {
	return s.room.Code
}

// PlayerCount returns the roster size, including disconnected players
func (s *RoomSession) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.room.Players)
}

// EmptySince returns when the room last lost its final connected player,
// or the zero time if it is occupied.
func (s *RoomSession) EmptySince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.EmptySince
}

// Attach registers a client connection with the session
func (s *RoomSession) Attach(conn ClientConnection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[conn.ID()] = conn
}

// Join appends a new player and broadcasts the updated room
func (s *RoomSession) Join(conn ClientConnection, playerID, name string) (domain.RoomSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	player, err := s.room.AddPlayer(playerID, name, conn.ID(), s.opts.MaxPlayers, now)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	s.room.LastEvent = fmt.Sprintf("%s joined the room", player.Name)
	s.clients[conn.ID()] = conn

	return s.broadcastLocked(now), nil
}

// Reconnect rebinds an existing player to a new connection, optionally
// renaming them, and broadcasts the updated room.
func (s *RoomSession) Reconnect(conn ClientConnection, playerID, newName string) (domain.RoomSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	_, err := s.room.HandleReconnect(playerID, conn.ID(), newName, s.rand, now)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	s.clients[conn.ID()] = conn

	return s.broadcastLocked(now), nil
}

// UpdateSettings applies a host-only, lobby-only partial settings update
func (s *RoomSession) UpdateSettings(playerID string, patch domain.SettingsPatch) (domain.RoomSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room.HostID != playerID {
		return domain.RoomSnapshot{}, domain.ErrNotHost
	}
	now := s.clock.Now()
	if err := s.room.ApplySettings(patch, s.opts.SettingsBounds, now); err != nil {
		return domain.RoomSnapshot{}, err
	}
	s.room.LastEvent = "Settings updated"

	return s.broadcastLocked(now), nil
}

// StartGame starts the match (host only)
func (s *RoomSession) StartGame(playerID string) (domain.RoomSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room.HostID != playerID {
		return domain.RoomSnapshot{}, domain.ErrNotHost
	}
	now := s.clock.Now()
	if err := s.room.StartMatch(s.rand, s.opts.MinPlayersToStart, now); err != nil {
		return domain.RoomSnapshot{}, err
	}

	return s.broadcastLocked(now), nil
}

// SubmitWord validates and applies a word submission for the active player.
// The per-connection rate limit and session binding are checked by the hub
// before this is called.
func (s *RoomSession) SubmitWord(playerID, rawWord string) (domain.RoomSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.room
	if room.Phase != domain.PhaseInGame {
		return domain.RoomSnapshot{}, domain.ErrWrongPhase
	}

	player, ok := room.FindPlayer(playerID)
	if !ok {
		return domain.RoomSnapshot{}, domain.ErrPlayerNotFound
	}
	if !player.Eligible() {
		return domain.RoomSnapshot{}, domain.ErrPlayerNotEligible
	}
	if room.ActivePlayerID != playerID {
		return domain.RoomSnapshot{}, domain.ErrNotYourTurn
	}

	word := domain.NormalizeWord(rawWord)
	if !domain.ValidWord(word) {
		return domain.RoomSnapshot{}, domain.ErrInvalidWord
	}
	if !strings.Contains(word, strings.ToLower(room.CurrentChunk)) {
		return domain.RoomSnapshot{}, domain.ErrMissingChunk
	}
	if room.HasUsedWord(word) {
		return domain.RoomSnapshot{}, domain.ErrWordAlreadyUsed
	}
	if room.Settings.DictionaryEnabled && !s.dict.Has(word) {
		return domain.RoomSnapshot{}, domain.ErrNotInDictionary
	}

	now := s.clock.Now()
	room.UseWord(word)
	player.Score++
	room.LastEvent = fmt.Sprintf("%s played %q", player.Name, word)
	room.AdvanceTurn(playerID, s.rand, now)

	return s.broadcastLocked(now), nil
}

// PlayAgain returns a finished room to the lobby (host only)
func (s *RoomSession) PlayAgain(playerID string) (domain.RoomSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room.HostID != playerID {
		return domain.RoomSnapshot{}, domain.ErrNotHost
	}
	now := s.clock.Now()
	if err := s.room.ResetForLobby(now); err != nil {
		return domain.RoomSnapshot{}, err
	}

	return s.broadcastLocked(now), nil
}

// DropConnection handles a connection loss for the bound player: the player
// is marked disconnected, host and turn state are repaired, and the room is
// broadcast to whoever is left. A drop from a socket the player no longer
// holds only detaches that socket; the player stays connected.
func (s *RoomSession) DropConnection(connID, playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.clients, connID)
	player, ok := s.room.FindPlayer(playerID)
	if !ok || player.ConnID != connID {
		return
	}
	now := s.clock.Now()
	s.room.HandleDisconnect(playerID, s.rand, now)
	s.broadcastLocked(now)
}

// Tick runs one scheduler tick against the room: fires timer expiry when due
// and rebroadcasts the snapshot of a running match so client countdowns stay
// in sync.
func (s *RoomSession) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room.Phase != domain.PhaseInGame {
		return
	}
	s.room.ExpireTurn(s.rand, now)
	s.broadcastLocked(now)
}

// Snapshot projects the current room state
func (s *RoomSession) Snapshot() domain.RoomSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Snapshot(s.opts.MinPlayersToStart, s.clock.Now())
}

// Close disconnects every remaining client
func (s *RoomSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]ClientConnection)
}

// broadcastLocked projects and sends the room snapshot to every attached
// client. Caller must hold the session lock.
func (s *RoomSession) broadcastLocked(now time.Time) domain.RoomSnapshot {
	snap := s.room.Snapshot(s.opts.MinPlayersToStart, now)
	msg := stateMessage{Type: "room_state", State: snap}

	for connID, client := range s.clients {
		if err := client.Send(msg); err != nil {
			s.logger.Debug().Err(err).Str("connId", connID).Str("roomCode", s.room.Code).Msg("failed to send to client")
		}
	}
	return snap
}
