package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/ecktables/internal/events"
	"github.com/xelth-com/ecktables/internal/floorplan"
	"github.com/xelth-com/ecktables/internal/middleware"
	"github.com/xelth-com/ecktables/internal/websocket"
	"go.uber.org/zap"
)

const liveSecret = "s3cret"

func signToken(t *testing.T, sub, tenant string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub, "tenant_id": tenant}).SignedString([]byte(liveSecret))
	require.NoError(t, err)
	return s
}

func (f *fakeRepo) position(id string) (int, int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.tables[id]
	if !t.Placed() {
		return 0, 0, false
	}
	return *t.PosX, *t.PosY, true
}

func (f *fakeRepo) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// newLiveServer serves the full router, websocket hub included.
func newLiveServer(t *testing.T) (*fakeRepo, *httptest.Server) {
	t.Helper()
	repo := newFakeRepo()
	bus := events.NewLocalBus()
	committer := floorplan.NewCommitter(repo, time.Second, zap.NewNop())
	hub := websocket.NewHub(websocket.Options{
		Editor: websocket.EditorConfig{
			Canvas:    floorplan.DefaultCanvas(),
			Threshold: floorplan.DefaultDragThreshold,
			Leave:     floorplan.LeaveCommit,
		},
		Source:    repo,
		Committer: committer,
		Bus:       bus,
		Logger:    zap.NewNop(),
	})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	bus.Subscribe(hub.HandleTableMoved)

	router := NewRouter(Deps{
		Tables:    repo,
		Canvas:    floorplan.DefaultCanvas(),
		Bus:       bus,
		Hub:       hub,
		Limiter:   middleware.NewRateLimiter(100, 100, zap.NewNop()),
		JWTSecret: liveSecret,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		cancel()
		committer.Wait()
		srv.Close()
	})
	return repo, srv
}

func dialWs(t *testing.T, srv *httptest.Server, token string) (*gorillaws.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	return gorillaws.DefaultDialer.Dial(url, nil)
}

func readUntil(t *testing.T, conn *gorillaws.Conn, match func(map[string]interface{}) bool) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg map[string]interface{}
		require.NoError(t, conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func ofType(typ string) func(map[string]interface{}) bool {
	return func(msg map[string]interface{}) bool { return msg["type"] == typ }
}

func pointerMsg(typ, entityID string, x, y float64) map[string]interface{} {
	msg := map[string]interface{}{
		"type":       typ,
		"pointer":    map[string]float64{"x": x, "y": y},
		"canvasRect": map[string]float64{"left": 0, "top": 0},
		"scroll":     map[string]float64{"left": 0, "top": 0},
	}
	if entityID != "" {
		msg["entityId"] = entityID
	}
	return msg
}

func TestWebsocket_DragCommitsThroughRouter(t *testing.T) {
	repo, srv := newLiveServer(t)

	conn, _, err := dialWs(t, srv, signToken(t, "u1", "tenant-1"))
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "JOIN_HALL", "hallId": "h1", "msgId": "1"}))
	ack := readUntil(t, conn, ofType("ACK"))
	require.Equal(t, "joined", ack["status"])
	frame := readUntil(t, conn, ofType("FRAME"))
	require.Equal(t, "h1", frame["hallId"])

	require.NoError(t, conn.WriteJSON(pointerMsg("POINTER_DOWN", "t1", 110, 110)))
	require.NoError(t, conn.WriteJSON(pointerMsg("POINTER_MOVE", "", 310, 310)))
	frame = readUntil(t, conn, func(msg map[string]interface{}) bool {
		if msg["type"] != "FRAME" || msg["draggingId"] != "t1" {
			return false
		}
		items := msg["scene"].(map[string]interface{})["items"].([]interface{})
		displayed := items[0].(map[string]interface{})["displayed"].(map[string]interface{})
		return displayed["source"] == "live" && displayed["x"] == 300.0
	})
	require.NotNil(t, frame)

	require.NoError(t, conn.WriteJSON(pointerMsg("POINTER_UP", "", 310, 310)))
	moved := readUntil(t, conn, ofType("TABLE_MOVED"))
	require.Equal(t, "t1", moved["tableId"])
	require.Equal(t, 300.0, moved["x"])
	require.Equal(t, 300.0, moved["y"])

	x, y, ok := repo.position("t1")
	require.True(t, ok)
	require.Equal(t, 300, x)
	require.Equal(t, 300, y)
}

func TestWebsocket_ForeignHallRejected(t *testing.T) {
	repo, srv := newLiveServer(t)

	conn, _, err := dialWs(t, srv, signToken(t, "u2", "tenant-2"))
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "JOIN_HALL", "hallId": "h1", "msgId": "1"}))
	note := readUntil(t, conn, func(msg map[string]interface{}) bool {
		require.NotEqual(t, "ACK", msg["type"], "foreign hall acknowledged")
		return msg["type"] == "NOTIFICATION"
	})
	require.Equal(t, "Hall not found", note["message"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "JOIN_HALL", "hallId": "does-not-exist"}))
	note = readUntil(t, conn, ofType("NOTIFICATION"))
	require.Equal(t, "Hall not found", note["message"])

	require.NoError(t, conn.WriteJSON(pointerMsg("POINTER_DOWN", "t1", 110, 110)))
	require.NoError(t, conn.WriteJSON(pointerMsg("POINTER_MOVE", "", 310, 310)))
	require.NoError(t, conn.WriteJSON(pointerMsg("POINTER_UP", "", 310, 310)))
	for i := 0; i < 3; i++ {
		note = readUntil(t, conn, ofType("NOTIFICATION"))
		require.Equal(t, "Join a hall first", note["message"])
	}

	require.Zero(t, repo.writeCount())
	x, y, _ := repo.position("t1")
	require.Equal(t, 100, x)
	require.Equal(t, 100, y)
}

func TestWebsocket_RequiresToken(t *testing.T) {
	_, srv := newLiveServer(t)

	_, resp, err := dialWs(t, srv, "")
	require.ErrorIs(t, err, gorillaws.ErrBadHandshake)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRateLimit_KeyedByTokenSubject(t *testing.T) {
	router := NewRouter(Deps{
		Tables:    newFakeRepo(),
		Canvas:    floorplan.DefaultCanvas(),
		Limiter:   middleware.NewRateLimiter(1, 1, zap.NewNop()),
		JWTSecret: liveSecret,
	})
	call := func(token string) int {
		req := httptest.NewRequest("GET", "/api/halls/h1/tables", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	alice := signToken(t, "alice", "tenant-1")
	bob := signToken(t, "bob", "tenant-1")
	require.Equal(t, http.StatusOK, call(alice))
	require.Equal(t, http.StatusOK, call(bob))
	require.Equal(t, http.StatusTooManyRequests, call(alice))
}
