package signal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Parlor/internal/app"
	"github.com/dkeye/Parlor/internal/core"
	"github.com/dkeye/Parlor/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *app.Relay) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())

	relay := app.NewRelay()
	go relay.Run(ctx)

	ctl := NewSignalWSController(relay, opts)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ctl.HandleSignal(ctx, c) })
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		cancel()
		<-relay.Done()
		srv.Close()
	})
	return srv, relay
}

type testClient struct {
	t  *testing.T
	ws *websocket.Conn
}

func dial(t *testing.T, srv *httptest.Server) *testClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = ws.Close() })
	c := &testClient{t: t, ws: ws}
	c.expect(core.EventRoomList)
	return c
}

func (c *testClient) emit(event string, args ...any) {
	c.t.Helper()
	f, err := core.Encode(event, args...)
	require.NoError(c.t, err)
	require.NoError(c.t, c.ws.WriteMessage(websocket.TextMessage, f))
}

func (c *testClient) next() core.Envelope {
	c.t.Helper()
	require.NoError(c.t, c.ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := c.ws.ReadMessage()
	require.NoError(c.t, err)
	env, err := core.Decode(data)
	require.NoError(c.t, err)
	return env
}

// expect skips frames until one named event arrives.
func (c *testClient) expect(event string) core.Envelope {
	c.t.Helper()
	for {
		env := c.next()
		if env.Event == event {
			return env
		}
	}
}

// silent asserts nothing arrives within a short window.
func (c *testClient) silent() {
	c.t.Helper()
	require.NoError(c.t, c.ws.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, data, err := c.ws.ReadMessage()
	assert.Error(c.t, err, "unexpected frame %s", data)
}

func chat(t *testing.T, env core.Envelope) domain.ChatMessage {
	t.Helper()
	var msg domain.ChatMessage
	ok, err := env.Object(0, &msg)
	require.NoError(t, err)
	require.True(t, ok)
	return msg
}

func TestEndToEndLobby(t *testing.T) {
	srv, relay := newTestServer(t, Options{})
	a := dial(t, srv)
	b := dial(t, srv)

	a.emit(core.EventCreateRoom, "lobby", "x", "alice")
	assert.Equal(t, "lobby", a.expect(core.EventRoomJoined).String(0))
	b.expect(core.EventRoomList)

	b.emit(core.EventJoinRoom, "lobby", "x", "bob")
	assert.Equal(t, "lobby", b.expect(core.EventRoomJoined).String(0))
	assert.Equal(t, domain.ChatMessage{User: "System", Text: "bob has joined the chat"}, chat(t, a.expect(core.EventChatMessage)))

	a.emit(core.EventChatMessage, "hi")
	want := domain.ChatMessage{User: "alice", Text: "hi"}
	assert.Equal(t, want, chat(t, a.expect(core.EventChatMessage)))
	assert.Equal(t, want, chat(t, b.expect(core.EventChatMessage)))

	b.emit(core.EventJoinRoom, "lobby", "wrong", "bob2")
	b.expect(core.EventWrongPassword)

	c := dial(t, srv)
	rooms, err := relay.Rooms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.RoomInfo{{Name: "lobby", MemberCount: 2}}, rooms)

	require.NoError(t, b.ws.Close())
	assert.Equal(t, domain.ChatMessage{User: "System", Text: "A user has left the chat"}, chat(t, a.expect(core.EventChatMessage)))

	require.NoError(t, a.ws.Close())
	list := c.expect(core.EventRoomList)
	var names []string
	require.NoError(t, json.Unmarshal(list.Args[0], &names))
	assert.Empty(t, names)
}

func TestEndToEndTypingNotEchoed(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	a := dial(t, srv)
	b := dial(t, srv)

	a.emit(core.EventCreateRoom, "lobby", "x", "alice")
	a.expect(core.EventRoomList)
	b.emit(core.EventJoinRoom, "lobby", "x", "bob")
	b.expect(core.EventRoomList)
	a.expect(core.EventRoomList)

	a.emit(core.EventTyping, "alice")
	assert.Equal(t, "alice", b.expect(core.EventTyping).String(0))
	a.silent()
}

func TestEndToEndNoSuchRoom(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	a := dial(t, srv)

	require.NoError(t, a.ws.WriteMessage(websocket.TextMessage, []byte("not json")))
	a.emit(core.EventJoinRoom, "ghost", "x", "alice")
	a.expect(core.EventNoSuchRoom)
}

func TestOriginCheck(t *testing.T) {
	srv, _ := newTestServer(t, Options{AllowedOrigins: []string{"http://good.example"}})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	h := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, h)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	h = http.Header{"Origin": []string{"http://good.example"}}
	ws, resp, err := websocket.DefaultDialer.Dial(url, h)
	require.NoError(t, err)
	_ = resp.Body.Close()
	_ = ws.Close()
}
