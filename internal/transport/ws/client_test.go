package ws

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyannm/word-fuse/internal/app"
)

func newTestClient() *Client {
	hub := app.NewHub(app.DefaultOptions(), app.DisabledDictionary(), app.SystemClock(), app.SystemRand(), zerolog.Nop())
	return NewClient(nil, hub, "conn-test", zerolog.Nop())
}

func nextAck(t *testing.T, c *Client) Ack {
	t.Helper()
	select {
	case data := <-c.send:
		var ack Ack
		require.NoError(t, json.Unmarshal(data, &ack))
		return ack
	default:
		t.Fatal("no ack queued")
		return Ack{}
	}
}

func TestMalformedPayloadsGetGenericError(t *testing.T) {
	actions := []ActionType{
		ActionCreateRoom,
		ActionJoinRoom,
		ActionReconnect,
		ActionUpdateSettings,
		ActionStartGame,
		ActionSubmitWord,
		ActionPlayAgain,
	}

	for _, action := range actions {
		t.Run(string(action), func(t *testing.T) {
			c := newTestClient()
			c.handleMessage([]byte(fmt.Sprintf(`{"type":%q,"payload":"nope"}`, action)))

			ack := nextAck(t, c)
			assert.Equal(t, action, ack.Action)
			assert.False(t, ack.OK)
			assert.Equal(t, errInvalidPayload.Error(), ack.Error)
		})
	}
}

func TestUnknownActionIsAcked(t *testing.T) {
	c := newTestClient()
	c.handleMessage([]byte(`{"type":"dance"}`))

	ack := nextAck(t, c)
	assert.False(t, ack.OK)
	assert.Equal(t, "unknown action", ack.Error)
}

func TestPingAnsweredWithPong(t *testing.T) {
	c := newTestClient()
	c.handleMessage([]byte(`{"type":"ping"}`))

	select {
	case data := <-c.send:
		var pong Pong
		require.NoError(t, json.Unmarshal(data, &pong))
		assert.Equal(t, MsgPong, pong.Type)
	default:
		t.Fatal("no pong queued")
	}
}
