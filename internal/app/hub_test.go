package app

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyannm/word-fuse/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fixedRand always picks index 0: room codes become "AAAAAA" and the first
// chunk is always ChunkCatalog[0], with the repeat-avoidance stepping to
// ChunkCatalog[1] on the next turn.
type fixedRand struct{}

func (fixedRand) Intn(n int) int { return 0 }

type fakeDict struct {
	words map[string]struct{}
}

func (d *fakeDict) Enabled() bool { return true }
func (d *fakeDict) Size() int     { return len(d.words) }

func (d *fakeDict) Has(word string) bool {
	_, ok := d.words[word]
	return ok
}

type fakeConn struct {
	id     string
	mu     sync.Mutex
	states []domain.RoomSnapshot
	closed bool
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(message interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sm, ok := message.(stateMessage); ok {
		c.states = append(c.states, sm.State)
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) lastState(t *testing.T) domain.RoomSnapshot {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.states, "no state broadcast received")
	return c.states[len(c.states)-1]
}

func newTestHub(dict Dictionary) (*Hub, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	hub := NewHub(DefaultOptions(), dict, clock, fixedRand{}, zerolog.Nop())
	return hub, clock
}

// roomFixture creates a room with Ava hosting and Bo joined, returning the
// hub, clock, both connections, the room code and both player ids.
func roomFixture(t *testing.T) (*Hub, *fakeClock, *fakeConn, *fakeConn, string, string, string) {
	t.Helper()
	hub, clock := newTestHub(DisabledDictionary())

	connA := &fakeConn{id: "conn-a"}
	snap, avaID, err := hub.CreateRoom(connA, "Ava")
	require.NoError(t, err)

	connB := &fakeConn{id: "conn-b"}
	snap, boID, err := hub.JoinRoom(connB, snap.RoomCode, "Bo")
	require.NoError(t, err)

	return hub, clock, connA, connB, snap.RoomCode, avaID, boID
}

func TestCreateRoom(t *testing.T) {
	hub, _ := newTestHub(DisabledDictionary())

	conn := &fakeConn{id: "conn-1"}
	snap, playerID, err := hub.CreateRoom(conn, "  Ava  ")
	require.NoError(t, err)

	assert.Len(t, snap.RoomCode, RoomCodeLength)
	assert.Equal(t, domain.PhaseLobby, snap.Phase)
	assert.Equal(t, playerID, snap.HostID)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "Ava", snap.Players[0].Name)
	assert.False(t, snap.CanStart, "one player cannot start")
	assert.Equal(t, 1, hub.RoomCount())
	assert.True(t, hub.RoomExists(snap.RoomCode))
}

func TestCreateRoomRejectsEmptyName(t *testing.T) {
	hub, _ := newTestHub(DisabledDictionary())

	_, _, err := hub.CreateRoom(&fakeConn{id: "conn-1"}, "  @#$  ")
	assert.ErrorIs(t, err, domain.ErrInvalidName)
	assert.Zero(t, hub.RoomCount())
}

func TestCreateRoomCodeAllocationExhausted(t *testing.T) {
	// fixedRand generates the same code every time, so a second room can
	// never find a free one
	hub, _ := newTestHub(DisabledDictionary())

	_, _, err := hub.CreateRoom(&fakeConn{id: "conn-1"}, "Ava")
	require.NoError(t, err)

	_, _, err = hub.CreateRoom(&fakeConn{id: "conn-2"}, "Bo")
	assert.ErrorIs(t, err, domain.ErrCodeAllocationExhausted)
}

func TestJoinRoomErrors(t *testing.T) {
	hub, _, _, _, code, avaID, _ := roomFixture(t)

	_, _, err := hub.JoinRoom(&fakeConn{id: "conn-x"}, "ZZZZZZ", "Cy")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	_, _, err = hub.JoinRoom(&fakeConn{id: "conn-x"}, code, "ava")
	assert.ErrorIs(t, err, domain.ErrNameTaken)

	_, err = hub.StartGame("conn-a", code, avaID)
	require.NoError(t, err)

	_, _, err = hub.JoinRoom(&fakeConn{id: "conn-x"}, code, "Cy")
	assert.ErrorIs(t, err, domain.ErrRoomNotJoinable)
}

func TestJoinBroadcastsToExistingPlayers(t *testing.T) {
	hub, _, connA, _, code, _, _ := roomFixture(t)

	snap := connA.lastState(t)
	assert.Equal(t, code, snap.RoomCode)
	assert.Len(t, snap.Players, 2)
	assert.True(t, snap.CanStart)

	_, _, err := hub.JoinRoom(&fakeConn{id: "conn-c"}, code, "Cy")
	require.NoError(t, err)
	assert.Len(t, connA.lastState(t).Players, 3)
}

func TestActionsRequireMatchingBinding(t *testing.T) {
	hub, _, _, _, code, avaID, boID := roomFixture(t)

	// Bo's connection cannot act as Ava
	_, err := hub.StartGame("conn-b", code, avaID)
	assert.ErrorIs(t, err, domain.ErrNotBound)

	// Unknown connection cannot act at all
	_, err = hub.SubmitWord("conn-x", code, boID, "banana")
	assert.ErrorIs(t, err, domain.ErrNotBound)
}

func TestStartGameHostOnly(t *testing.T) {
	hub, _, _, _, code, _, boID := roomFixture(t)

	_, err := hub.StartGame("conn-b", code, boID)
	assert.ErrorIs(t, err, domain.ErrNotHost)
}

func TestUpdateSettingsClampsAndBroadcasts(t *testing.T) {
	hub, _, _, connB, code, avaID, boID := roomFixture(t)

	turn := 2
	lives := 99
	snap, err := hub.UpdateSettings("conn-a", code, avaID, domain.SettingsPatch{
		TurnSeconds:   &turn,
		StartingLives: &lives,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Settings.TurnSeconds)
	assert.Equal(t, 5, snap.Settings.StartingLives)
	assert.Equal(t, 5, connB.lastState(t).Settings.TurnSeconds)

	_, err = hub.UpdateSettings("conn-b", code, boID, domain.SettingsPatch{TurnSeconds: &turn})
	assert.ErrorIs(t, err, domain.ErrNotHost)
}

func TestSubmitWordRateLimit(t *testing.T) {
	hub, clock, _, _, code, avaID, _ := roomFixture(t)
	startFixture(t, hub, code, avaID)

	// First attempt consumes the window even though the word is invalid
	_, err := hub.SubmitWord("conn-a", code, avaID, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidWord)

	_, err = hub.SubmitWord("conn-a", code, avaID, "banana")
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	clock.Advance(100 * time.Millisecond)
	_, err = hub.SubmitWord("conn-a", code, avaID, "banana")
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	clock.Advance(200 * time.Millisecond)
	snap, err := hub.SubmitWord("conn-a", code, avaID, "banana")
	require.NoError(t, err)
	assert.Equal(t, []string{"banana"}, snap.UsedWords)
}

func TestSubmitWordValidationLeavesStateUntouched(t *testing.T) {
	hub, clock, _, _, code, avaID, boID := roomFixture(t)
	startFixture(t, hub, code, avaID)

	session, err := hub.session(code)
	require.NoError(t, err)
	before := session.Snapshot()

	for _, word := range []string{"ab", "ban4na", "has space", "toe"} {
		clock.Advance(time.Second)
		_, err := hub.SubmitWord("conn-a", code, avaID, word)
		assert.Error(t, err, "word %q", word)

		snap := session.Snapshot()
		assert.Equal(t, before.ActivePlayerID, snap.ActivePlayerID)
		assert.Equal(t, before.CurrentChunk, snap.CurrentChunk)
		assert.Empty(t, snap.UsedWords)
		assert.Zero(t, snap.Players[0].Score)
	}

	// "toe" is a valid word that misses the required chunk
	clock.Advance(time.Second)
	_, err = hub.SubmitWord("conn-a", code, avaID, "toe")
	assert.ErrorIs(t, err, domain.ErrMissingChunk)

	// Bo cannot submit out of turn
	clock.Advance(time.Second)
	_, err = hub.SubmitWord("conn-b", code, boID, "banana")
	assert.ErrorIs(t, err, domain.ErrNotYourTurn)
}

func TestSubmitWordRejectsReuseCaseInsensitive(t *testing.T) {
	hub, clock := newTestHub(DisabledDictionary())

	connA := &fakeConn{id: "conn-a"}
	snap, avaID, err := hub.CreateRoom(connA, "Ava")
	require.NoError(t, err)
	code := snap.RoomCode

	_, boID, err := hub.JoinRoom(&fakeConn{id: "conn-b"}, code, "Bo")
	require.NoError(t, err)
	_, cyID, err := hub.JoinRoom(&fakeConn{id: "conn-c"}, code, "Cy")
	require.NoError(t, err)

	startFixture(t, hub, code, avaID)

	// Ava's chunk is "an", Bo's is "ar", Cy's is "an" again
	_, err = hub.SubmitWord("conn-a", code, avaID, "banana")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = hub.SubmitWord("conn-b", code, boID, "barn")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = hub.SubmitWord("conn-c", code, cyID, "BANANA")
	assert.ErrorIs(t, err, domain.ErrWordAlreadyUsed)
}

func TestSubmitWordDictionaryCheck(t *testing.T) {
	hub, clock := newTestHub(&fakeDict{words: map[string]struct{}{"banana": {}}})

	connA := &fakeConn{id: "conn-a"}
	snap, avaID, err := hub.CreateRoom(connA, "Ava")
	require.NoError(t, err)
	code := snap.RoomCode

	_, _, err = hub.JoinRoom(&fakeConn{id: "conn-b"}, code, "Bo")
	require.NoError(t, err)
	startFixture(t, hub, code, avaID)

	_, err = hub.SubmitWord("conn-a", code, avaID, "anana")
	assert.ErrorIs(t, err, domain.ErrNotInDictionary)

	clock.Advance(time.Second)
	_, err = hub.SubmitWord("conn-a", code, avaID, "banana")
	assert.NoError(t, err)
}

func TestFullMatchScenario(t *testing.T) {
	hub, clock, connA, connB, code, avaID, boID := roomFixture(t)

	turn := 5
	lives := 1
	_, err := hub.UpdateSettings("conn-a", code, avaID, domain.SettingsPatch{
		TurnSeconds:   &turn,
		StartingLives: &lives,
	})
	require.NoError(t, err)

	snap, err := hub.StartGame("conn-a", code, avaID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseInGame, snap.Phase)
	assert.Equal(t, avaID, snap.ActivePlayerID, "first joiner goes first")
	firstChunk := snap.CurrentChunk
	assert.NotEmpty(t, firstChunk)
	assert.Equal(t, int64(5000), snap.TimerRemainingMs)

	// Ava plays a word containing the required chunk
	snap, err = hub.SubmitWord("conn-a", code, avaID, "banana")
	require.NoError(t, err)
	assert.Equal(t, boID, snap.ActivePlayerID)
	assert.NotEqual(t, firstChunk, snap.CurrentChunk)
	assert.Equal(t, []string{"banana"}, snap.UsedWords)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, 1, snap.Players[0].Score)

	// Bo lets the timer expire with a single life
	clock.Advance(5 * time.Second)
	hub.tick(clock.Now())

	final := connA.lastState(t)
	assert.Equal(t, domain.PhaseResults, final.Phase)
	assert.Equal(t, avaID, final.WinnerID)
	assert.True(t, final.Players[1].Eliminated)
	assert.Zero(t, final.Players[1].Lives)
	assert.Equal(t, final, connB.lastState(t), "both clients see the same snapshot")

	// Host resets the room for another match
	snap, err = hub.PlayAgain("conn-a", code, avaID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseLobby, snap.Phase)
	assert.Empty(t, snap.WinnerID)
	assert.Empty(t, snap.UsedWords)
	assert.True(t, snap.CanStart)
}

func TestTickBroadcastsCountdown(t *testing.T) {
	hub, clock, connA, _, code, avaID, _ := roomFixture(t)
	startFixture(t, hub, code, avaID)

	clock.Advance(time.Second)
	hub.tick(clock.Now())
	first := connA.lastState(t)
	assert.Equal(t, domain.PhaseInGame, first.Phase)

	clock.Advance(time.Second)
	hub.tick(clock.Now())
	second := connA.lastState(t)
	assert.Less(t, second.TimerRemainingMs, first.TimerRemainingMs)
}

func TestDisconnectTransfersHost(t *testing.T) {
	hub, _, _, connB, _, _, boID := roomFixture(t)

	hub.Disconnect("conn-a")

	snap := connB.lastState(t)
	assert.Equal(t, boID, snap.HostID)
	assert.False(t, snap.Players[0].Connected)
	assert.False(t, snap.CanStart, "only one connected player left")
}

func TestActiveDisconnectEndsTwoPlayerMatch(t *testing.T) {
	hub, _, _, connB, code, avaID, boID := roomFixture(t)
	startFixture(t, hub, code, avaID)

	hub.Disconnect("conn-a")

	snap := connB.lastState(t)
	assert.Equal(t, domain.PhaseResults, snap.Phase)
	assert.Equal(t, boID, snap.WinnerID)
	assert.Equal(t, domain.DefaultSettings().StartingLives, snap.Players[1].Lives, "no life lost")
}

func TestActiveDisconnectPassesBombInLargerMatch(t *testing.T) {
	hub, _, _, connB, code, avaID, boID := roomFixture(t)
	_, _, err := hub.JoinRoom(&fakeConn{id: "conn-c"}, code, "Cy")
	require.NoError(t, err)
	startFixture(t, hub, code, avaID)

	hub.Disconnect("conn-a")

	snap := connB.lastState(t)
	assert.Equal(t, domain.PhaseInGame, snap.Phase)
	assert.Equal(t, boID, snap.ActivePlayerID)
}

func TestReconnectRebindsConnection(t *testing.T) {
	hub, clock, _, _, code, avaID, _ := roomFixture(t)

	hub.Disconnect("conn-a")

	connA2 := &fakeConn{id: "conn-a2"}
	snap, err := hub.Reconnect(connA2, code, avaID, "")
	require.NoError(t, err)
	assert.True(t, snap.Players[0].Connected)

	// The new binding is fully functional: the (new) host starts and Ava
	// submits over the fresh connection
	hostID := snap.HostID
	_, err = hub.StartGame("conn-b", code, hostID)
	require.NoError(t, err)

	clock.Advance(time.Second)
	active := connA2.lastState(t).ActivePlayerID
	if active == avaID {
		_, err = hub.SubmitWord("conn-a2", code, avaID, "banana")
		assert.NoError(t, err)
	}
}

func TestStaleSocketDropDoesNotDisconnectReconnectedPlayer(t *testing.T) {
	hub, _, _, connB, code, avaID, _ := roomFixture(t)

	// Ava reconnects on a fresh socket while the old one is still bound,
	// as with a second tab or a half-open connection awaiting pong timeout
	connA2 := &fakeConn{id: "conn-a2"}
	_, err := hub.Reconnect(connA2, code, avaID, "")
	require.NoError(t, err)

	hub.Disconnect("conn-a")

	snap := connB.lastState(t)
	assert.True(t, snap.Players[0].Connected, "player is live on the new socket")
	assert.Equal(t, avaID, snap.HostID)

	// A direct drop of the stale socket at the session level is inert too
	session, err := hub.session(code)
	require.NoError(t, err)
	session.DropConnection("conn-a", avaID)
	assert.True(t, session.Snapshot().Players[0].Connected)

	// Dropping the live socket still disconnects normally
	hub.Disconnect("conn-a2")
	assert.False(t, connB.lastState(t).Players[0].Connected)
}

func TestReconnectUnknownRoomOrPlayer(t *testing.T) {
	hub, _, _, _, code, _, _ := roomFixture(t)

	_, err := hub.Reconnect(&fakeConn{id: "conn-x"}, "ZZZZZZ", "whoever", "")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	_, err = hub.Reconnect(&fakeConn{id: "conn-x"}, code, "ghost", "")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestSweepEvictsRoomsPastRetention(t *testing.T) {
	hub, clock, _, _, code, _, _ := roomFixture(t)

	hub.Disconnect("conn-a")
	hub.Disconnect("conn-b")
	require.Equal(t, 1, hub.RoomCount())

	clock.Advance(4 * time.Minute)
	hub.sweep(clock.Now())
	assert.Equal(t, 1, hub.RoomCount(), "retention window not reached yet")

	clock.Advance(2 * time.Minute)
	hub.sweep(clock.Now())
	assert.Zero(t, hub.RoomCount())
	assert.False(t, hub.RoomExists(code))
}

func TestSweepSparesOccupiedRooms(t *testing.T) {
	hub, clock, _, _, _, _, _ := roomFixture(t)

	clock.Advance(time.Hour)
	hub.sweep(clock.Now())
	assert.Equal(t, 1, hub.RoomCount())
}

func TestRoomCodeLookupIsCaseInsensitive(t *testing.T) {
	hub, _, _, _, code, _, _ := roomFixture(t)
	require.Equal(t, "AAAAAA", code)

	snap, _, err := hub.JoinRoom(&fakeConn{id: "conn-c"}, "  aaaaaa  ", "Cy")
	require.NoError(t, err)
	assert.Equal(t, code, snap.RoomCode)
}

// startFixture starts the match as the room host
func startFixture(t *testing.T, hub *Hub, code, hostID string) {
	t.Helper()
	_, err := hub.StartGame("conn-a", code, hostID)
	require.NoError(t, err)
}
