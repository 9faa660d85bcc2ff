package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Parlor/internal/app"
	"github.com/dkeye/Parlor/internal/config"
	"github.com/dkeye/Parlor/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>parlor</h1>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "script.js"), []byte("console.log(1)"), 0o600))
	return &config.Config{
		Mode:       "test",
		StaticPath: dir,
		PingPeriod: time.Second,
		PongWait:   2 * time.Second,
		WriteWait:  time.Second,
		SendBuffer: 16,
		Secret:     "test-secret",
	}
}

func setup(t *testing.T) (*gin.Engine, *app.Relay) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	relay := app.NewRelay()
	go relay.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-relay.Done()
	})
	return SetupRouter(ctx, testConfig(t), relay), relay
}

func TestHealthz(t *testing.T) {
	r, _ := setup(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStaticClient(t *testing.T) {
	r, _ := setup(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "parlor")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/script.js", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClientTokenCookie(t *testing.T) {
	r, _ := setup(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "ParlorSessions", cookies[0].Name)

	// the token survives a second request carrying the cookie
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Result().Cookies(), "no new session issued")
}

func TestRoomsEndpoint(t *testing.T) {
	r, relay := setup(t)
	ctx := context.Background()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rooms":[]}`, w.Body.String())

	conn := &nopConn{}
	require.NoError(t, relay.Dispatch(ctx, app.Connect("a", conn, "")))
	require.NoError(t, relay.Dispatch(ctx, app.CreateRoom("a", "lobby", "x", "alice")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	assert.JSONEq(t, `{"rooms":[{"name":"lobby","member_count":1}]}`, w.Body.String())
}

func TestRoomsEndpointRelayStopped(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	relay := app.NewRelay()
	go relay.Run(ctx)
	cancel()
	<-relay.Done()

	r := SetupRouter(context.Background(), testConfig(t), relay)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWebSocketEndpoint(t *testing.T) {
	r, _ := setup(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	for _, path := range []string{"/ws", "/api/ws"} {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
		ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err, path)
		_ = resp.Body.Close()

		require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := ws.ReadMessage()
		require.NoError(t, err)
		env, err := core.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, core.EventRoomList, env.Event)
		_ = ws.Close()
	}
}

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}
