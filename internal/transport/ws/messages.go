package ws

import (
	"encoding/json"

	"github.com/iyannm/word-fuse/internal/domain"
)

// ActionType represents the type of client action
type ActionType string

// Client → Server action types
const (
	ActionCreateRoom     ActionType = "create_room"
	ActionJoinRoom       ActionType = "join_room"
	ActionReconnect      ActionType = "reconnect"
	ActionUpdateSettings ActionType = "update_settings"
	ActionStartGame      ActionType = "start_game"
	ActionSubmitWord     ActionType = "submit_word"
	ActionPlayAgain      ActionType = "play_again"
	ActionLeaveRoom      ActionType = "leave_room"
	ActionPing           ActionType = "ping"
)

// Server → Client message types
const (
	MsgAck       = "ack"
	MsgRoomState = "room_state"
	MsgPong      = "pong"
)

// ClientEnvelope represents a message from client to server
type ClientEnvelope struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Ack is the per-action acknowledgement sent back to the requesting client
type Ack struct {
	Type     string               `json:"type"`
	Action   ActionType           `json:"action"`
	OK       bool                 `json:"ok"`
	Error    string               `json:"error,omitempty"`
	RoomCode string               `json:"roomCode,omitempty"`
	PlayerID string               `json:"playerId,omitempty"`
	State    *domain.RoomSnapshot `json:"state,omitempty"`
}

// Pong answers an application-level ping
type Pong struct {
	Type string `json:"type"`
}

// Client action payloads

// CreateRoomPayload is the payload for create_room
type CreateRoomPayload struct {
	Name string `json:"name"`
}

// JoinRoomPayload is the payload for join_room
type JoinRoomPayload struct {
	RoomCode string `json:"roomCode"`
	Name     string `json:"name"`
}

// ReconnectPayload is the payload for reconnect
type ReconnectPayload struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name,omitempty"`
}

// UpdateSettingsPayload is the payload for update_settings. Absent fields
// leave the corresponding setting untouched.
type UpdateSettingsPayload struct {
	RoomCode          string `json:"roomCode"`
	PlayerID          string `json:"playerId"`
	TurnSeconds       *int   `json:"turnSeconds,omitempty"`
	StartingLives     *int   `json:"startingLives,omitempty"`
	DictionaryEnabled *bool  `json:"dictionaryEnabled,omitempty"`
}

// RoomActionPayload is the common payload for start_game, play_again and
// leave_room.
type RoomActionPayload struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

// SubmitWordPayload is the payload for submit_word
type SubmitWordPayload struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	Word     string `json:"word"`
}

// okAck builds a successful acknowledgement carrying the resulting snapshot
func okAck(action ActionType, snap domain.RoomSnapshot, playerID string) *Ack {
	return &Ack{
		Type:     MsgAck,
		Action:   action,
		OK:       true,
		RoomCode: snap.RoomCode,
		PlayerID: playerID,
		State:    &snap,
	}
}

// errAck builds a failed acknowledgement with a human-readable message
func errAck(action ActionType, err error) *Ack {
	return &Ack{
		Type:   MsgAck,
		Action: action,
		OK:     false,
		Error:  err.Error(),
	}
}
