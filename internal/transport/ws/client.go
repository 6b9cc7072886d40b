package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/iyannm/word-fuse/internal/app"
	"github.com/iyannm/word-fuse/internal/domain"
)

// errInvalidPayload is acked when an action payload fails to decode
var errInvalidPayload = errors.New("invalid payload")

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents a WebSocket client connection. It implements
// app.ClientConnection so sessions can broadcast to it.
type Client struct {
	conn   *websocket.Conn
	hub    *app.Hub
	connID string
	send   chan []byte
	done   chan struct{}
	logger zerolog.Logger
	mu     sync.Mutex
	closed bool
}

// NewClient creates a new WebSocket client with the given connection id
func NewClient(conn *websocket.Conn, hub *app.Hub, connID string, logger zerolog.Logger) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		connID: connID,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// ID implements app.ClientConnection
func (c *Client) ID() string {
	return c.connID
}

// Send implements app.ClientConnection
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer full, message dropped
		c.logger.Warn().Str("connId", c.connID).Msg("send buffer full, message dropped")
		return nil
	}
}

// Close implements app.ClientConnection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.hub.Disconnect(c.connID)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug().Err(err).Str("connId", c.connID).Msg("websocket read error")
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage decodes an inbound action and dispatches it. Every action
// is answered with an acknowledgement on this connection.
func (c *Client) handleMessage(data []byte) {
	var env ClientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.Send(&Ack{Type: MsgAck, OK: false, Error: "invalid message format"})
		return
	}

	switch env.Type {
	case ActionCreateRoom:
		c.handleCreateRoom(env.Payload)
	case ActionJoinRoom:
		c.handleJoinRoom(env.Payload)
	case ActionReconnect:
		c.handleReconnect(env.Payload)
	case ActionUpdateSettings:
		c.handleUpdateSettings(env.Payload)
	case ActionStartGame:
		c.handleStartGame(env.Payload)
	case ActionSubmitWord:
		c.handleSubmitWord(env.Payload)
	case ActionPlayAgain:
		c.handlePlayAgain(env.Payload)
	case ActionLeaveRoom:
		c.handleLeaveRoom(env.Payload)
	case ActionPing:
		c.Send(&Pong{Type: MsgPong})
	default:
		c.Send(&Ack{Type: MsgAck, Action: env.Type, OK: false, Error: "unknown action"})
	}
}

func (c *Client) handleCreateRoom(payload json.RawMessage) {
	var p CreateRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.Send(errAck(ActionCreateRoom, errInvalidPayload))
		return
	}

	snap, playerID, err := c.hub.CreateRoom(c, p.Name)
	if err != nil {
		c.Send(errAck(ActionCreateRoom, err))
		return
	}
	c.Send(okAck(ActionCreateRoom, snap, playerID))
}

func (c *Client) handleJoinRoom(payload json.RawMessage) {
	var p JoinRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.Send(errAck(ActionJoinRoom, errInvalidPayload))
		return
	}

	snap, playerID, err := c.hub.JoinRoom(c, p.RoomCode, p.Name)
	if err != nil {
		c.Send(errAck(ActionJoinRoom, err))
		return
	}
	c.Send(okAck(ActionJoinRoom, snap, playerID))
}

func (c *Client) handleReconnect(payload json.RawMessage) {
	var p ReconnectPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.Send(errAck(ActionReconnect, errInvalidPayload))
		return
	}

	snap, err := c.hub.Reconnect(c, p.RoomCode, p.PlayerID, p.Name)
	if err != nil {
		c.Send(errAck(ActionReconnect, err))
		return
	}
	c.Send(okAck(ActionReconnect, snap, p.PlayerID))
}

func (c *Client) handleUpdateSettings(payload json.RawMessage) {
	var p UpdateSettingsPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.Send(errAck(ActionUpdateSettings, errInvalidPayload))
		return
	}

	patch := domain.SettingsPatch{
		TurnSeconds:       p.TurnSeconds,
		StartingLives:     p.StartingLives,
		DictionaryEnabled: p.DictionaryEnabled,
	}
	snap, err := c.hub.UpdateSettings(c.connID, p.RoomCode, p.PlayerID, patch)
	if err != nil {
		c.Send(errAck(ActionUpdateSettings, err))
		return
	}
	c.Send(okAck(ActionUpdateSettings, snap, p.PlayerID))
}

func (c *Client) handleStartGame(payload json.RawMessage) {
	var p RoomActionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.Send(errAck(ActionStartGame, errInvalidPayload))
		return
	}

	snap, err := c.hub.StartGame(c.connID, p.RoomCode, p.PlayerID)
	if err != nil {
		c.Send(errAck(ActionStartGame, err))
		return
	}
	c.Send(okAck(ActionStartGame, snap, p.PlayerID))
}

func (c *Client) handleSubmitWord(payload json.RawMessage) {
	var p SubmitWordPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.Send(errAck(ActionSubmitWord, errInvalidPayload))
		return
	}

	snap, err := c.hub.SubmitWord(c.connID, p.RoomCode, p.PlayerID, p.Word)
	if err != nil {
		c.Send(errAck(ActionSubmitWord, err))
		return
	}
	c.Send(okAck(ActionSubmitWord, snap, p.PlayerID))
}

func (c *Client) handlePlayAgain(payload json.RawMessage) {
	var p RoomActionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.Send(errAck(ActionPlayAgain, errInvalidPayload))
		return
	}

	snap, err := c.hub.PlayAgain(c.connID, p.RoomCode, p.PlayerID)
	if err != nil {
		c.Send(errAck(ActionPlayAgain, err))
		return
	}
	c.Send(okAck(ActionPlayAgain, snap, p.PlayerID))
}

func (c *Client) handleLeaveRoom(payload json.RawMessage) {
	var p RoomActionPayload
	_ = json.Unmarshal(payload, &p)

	// Leaving is just a deliberate disconnect: the player stays in the
	// roster for reconnection, the binding is destroyed.
	c.hub.Disconnect(c.connID)
	c.Send(&Ack{Type: MsgAck, Action: ActionLeaveRoom, OK: true})
}
