package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/iyannm/word-fuse/internal/domain"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6

	// RoomCodeChars are characters used for room codes (no ambiguous chars)
	RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// codeAllocAttempts bounds the retry loop for unique code allocation
	codeAllocAttempts = 25
)

// binding maps an active connection to the (room, player) it controls.
// Destroyed immediately on disconnect.
type binding struct {
	roomCode string
	playerID string
}

// Hub owns every room session, the connection-to-player bindings and the
// per-connection submission limiters. It is the single entry point for all
// inbound actions and for the scheduler loops.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]*RoomSession
	binds    map[string]*binding      // connection id -> binding
	limiters map[string]*rate.Limiter // connection id -> submit limiter

	opts   Options
	dict   Dictionary
	clock  Clock
	rand   domain.Rand
	logger zerolog.Logger
	done   chan struct{}
}

// NewHub creates a hub. Call Start to run the expiry tick and eviction
// sweep loops.
func NewHub(opts Options, dict Dictionary, clock Clock, rnd domain.Rand, logger zerolog.Logger) *Hub {
	return &Hub{
		rooms:    make(map[string]*RoomSession),
		binds:    make(map[string]*binding),
		limiters: make(map[string]*rate.Limiter),
		opts:     opts,
		dict:     dict,
		clock:    clock,
		rand:     rnd,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the tick and sweep loops
func (h *Hub) Start() {
	go h.tickLoop()
	go h.sweepLoop()
}

// Close stops the scheduler loops and shuts down every session
func (h *Hub) Close() {
	select {
	case <-h.done:
		return
	default:
		close(h.done)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, session := range h.rooms {
		session.Close()
	}
	h.rooms = make(map[string]*RoomSession)
	h.binds = make(map[string]*binding)
	h.limiters = make(map[string]*rate.Limiter)
}

// CreateRoom creates a room with the caller as sole player and host, and
// binds the connection to the new player. Returns the snapshot and the new
// player's id.
func (h *Hub) CreateRoom(conn ClientConnection, rawName string) (domain.RoomSnapshot, string, error) {
	name := domain.SanitizeName(rawName)
	if name == "" {
		return domain.RoomSnapshot{}, "", domain.ErrInvalidName
	}

	h.mu.Lock()
	code, err := h.allocateCodeLocked()
	if err != nil {
		h.mu.Unlock()
		return domain.RoomSnapshot{}, "", err
	}

	now := h.clock.Now()
	room := domain.NewRoom(code, h.opts.DefaultSettings, now)
	playerID := uuid.NewString()
	player, err := room.AddPlayer(playerID, name, conn.ID(), h.opts.MaxPlayers, now)
	if err != nil {
		h.mu.Unlock()
		return domain.RoomSnapshot{}, "", err
	}
	room.LastEvent = player.Name + " created the room"

	session := NewRoomSession(room, h.opts, h.dict, h.clock, h.rand, h.logger)
	h.rooms[code] = session
	h.binds[conn.ID()] = &binding{roomCode: code, playerID: playerID}
	h.mu.Unlock()

	session.Attach(conn)
	h.logger.Info().Str("roomCode", code).Str("playerId", playerID).Msg("room created")

	return session.Snapshot(), playerID, nil
}

// JoinRoom adds the caller to an existing lobby and binds the connection.
// Returns the snapshot and the new player's id.
func (h *Hub) JoinRoom(conn ClientConnection, rawCode, rawName string) (domain.RoomSnapshot, string, error) {
	name := domain.SanitizeName(rawName)
	if name == "" {
		return domain.RoomSnapshot{}, "", domain.ErrInvalidName
	}

	session, err := h.session(rawCode)
	if err != nil {
		return domain.RoomSnapshot{}, "", err
	}

	playerID := uuid.NewString()
	snap, err := session.Join(conn, playerID, name)
	if err != nil {
		return domain.RoomSnapshot{}, "", err
	}

	h.mu.Lock()
	h.binds[conn.ID()] = &binding{roomCode: snap.RoomCode, playerID: playerID}
	h.mu.Unlock()

	h.logger.Info().Str("roomCode", snap.RoomCode).Str("playerId", playerID).Msg("player joined")
	return snap, playerID, nil
}

// Reconnect rebinds the connection to an existing player in the room
func (h *Hub) Reconnect(conn ClientConnection, rawCode, playerID, rawName string) (domain.RoomSnapshot, error) {
	session, err := h.session(rawCode)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}

	snap, err := session.Reconnect(conn, playerID, domain.SanitizeName(rawName))
	if err != nil {
		return domain.RoomSnapshot{}, err
	}

	h.mu.Lock()
	// Evict any binding a superseded socket still holds for this player, so
	// its eventual drop cannot mark the player disconnected again
	for id, old := range h.binds {
		if id != conn.ID() && old.playerID == playerID && old.roomCode == snap.RoomCode {
			delete(h.binds, id)
			delete(h.limiters, id)
		}
	}
	h.binds[conn.ID()] = &binding{roomCode: snap.RoomCode, playerID: playerID}
	h.mu.Unlock()

	h.logger.Info().Str("roomCode", snap.RoomCode).Str("playerId", playerID).Msg("player reconnected")
	return snap, nil
}

// UpdateSettings applies a host-only lobby settings patch
func (h *Hub) UpdateSettings(connID, rawCode, playerID string, patch domain.SettingsPatch) (domain.RoomSnapshot, error) {
	session, err := h.authorized(connID, rawCode, playerID)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	return session.UpdateSettings(playerID, patch)
}

// StartGame starts the match in the caller's room
func (h *Hub) StartGame(connID, rawCode, playerID string) (domain.RoomSnapshot, error) {
	session, err := h.authorized(connID, rawCode, playerID)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	return session.StartGame(playerID)
}

// SubmitWord runs the full submission pipeline: rate limit, room lookup,
// binding check, then the in-room validation chain.
func (h *Hub) SubmitWord(connID, rawCode, playerID, word string) (domain.RoomSnapshot, error) {
	if !h.allowSubmit(connID) {
		return domain.RoomSnapshot{}, domain.ErrRateLimited
	}

	session, err := h.authorized(connID, rawCode, playerID)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	return session.SubmitWord(playerID, word)
}

// PlayAgain resets a finished match back to the lobby
func (h *Hub) PlayAgain(connID, rawCode, playerID string) (domain.RoomSnapshot, error) {
	session, err := h.authorized(connID, rawCode, playerID)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	return session.PlayAgain(playerID)
}

// Disconnect tears down a connection: the binding and limiter are destroyed
// immediately and the bound player, if any, is marked disconnected in their
// room.
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	b := h.binds[connID]
	delete(h.binds, connID)
	delete(h.limiters, connID)
	var session *RoomSession
	if b != nil {
		session = h.rooms[b.roomCode]
	}
	h.mu.Unlock()

	if session != nil {
		session.DropConnection(connID, b.playerID)
		h.logger.Info().Str("roomCode", b.roomCode).Str("playerId", b.playerID).Msg("player disconnected")
	}
}

// RoomCount returns the number of live rooms
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// PlayerCount returns the total roster size across all rooms
func (h *Hub) PlayerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, session := range h.rooms {
		total += session.PlayerCount()
	}
	return total
}

// RoomExists reports whether a room code resolves to a live room
func (h *Hub) RoomExists(rawCode string) bool {
	_, err := h.session(rawCode)
	return err == nil
}

// DictionarySize returns the loaded dictionary size
func (h *Hub) DictionarySize() int {
	return h.dict.Size()
}

// session resolves a raw room code to its session
func (h *Hub) session(rawCode string) (*RoomSession, error) {
	code := domain.NormalizeCode(rawCode)

	h.mu.RLock()
	session, ok := h.rooms[code]
	h.mu.RUnlock()

	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return session, nil
}

// authorized resolves the room and verifies the connection actually controls
// the claimed player.
func (h *Hub) authorized(connID, rawCode, playerID string) (*RoomSession, error) {
	session, err := h.session(rawCode)
	if err != nil {
		return nil, err
	}

	h.mu.RLock()
	b, ok := h.binds[connID]
	h.mu.RUnlock()

	if !ok || b.roomCode != session.Code() || b.playerID != playerID {
		return nil, domain.ErrNotBound
	}
	return session, nil
}

// allowSubmit enforces the per-connection submission spacing. A rejected
// attempt does not reset the window.
func (h *Hub) allowSubmit(connID string) bool {
	h.mu.Lock()
	limiter, ok := h.limiters[connID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(h.opts.SubmitInterval), 1)
		h.limiters[connID] = limiter
	}
	h.mu.Unlock()

	return limiter.AllowN(h.clock.Now(), 1)
}

// allocateCodeLocked generates a unique room code with bounded retries.
// Caller must hold the hub lock.
func (h *Hub) allocateCodeLocked() (string, error) {
	for attempt := 0; attempt < codeAllocAttempts; attempt++ {
		code := h.generateCode()
		if _, exists := h.rooms[code]; !exists {
			return code, nil
		}
	}
	return "", domain.ErrCodeAllocationExhausted
}

// generateCode draws RoomCodeLength characters from the unambiguous alphabet
func (h *Hub) generateCode() string {
	code := make([]byte, RoomCodeLength)
	for i := range code {
		code[i] = RoomCodeChars[h.rand.Intn(len(RoomCodeChars))]
	}
	return string(code)
}

// tickLoop drives timer expiry and countdown broadcasts
func (h *Hub) tickLoop() {
	ticker := time.NewTicker(h.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.tick(h.clock.Now())
		}
	}
}

// sweepLoop evicts rooms that have sat empty past the retention window
func (h *Hub) sweepLoop() {
	ticker := time.NewTicker(h.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.sweep(h.clock.Now())
		}
	}
}

// tick runs one scheduler tick across all rooms
func (h *Hub) tick(now time.Time) {
	h.mu.RLock()
	sessions := make([]*RoomSession, 0, len(h.rooms))
	for _, s := range h.rooms {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		s.Tick(now)
	}
}

// sweep evicts rooms empty for longer than the retention window
func (h *Hub) sweep(now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for code, session := range h.rooms {
		emptySince := session.EmptySince()
		if emptySince.IsZero() || now.Sub(emptySince) < h.opts.EmptyRoomRetention {
			continue
		}
		session.Close()
		delete(h.rooms, code)
		h.logger.Info().Str("roomCode", code).Msg("empty room evicted")
	}
}
