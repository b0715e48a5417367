package server_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hanoi/internal/config"
	"hanoi/internal/engine"
	"hanoi/internal/protocol"
	"hanoi/internal/server"
)

func newTestServer(t *testing.T, delay time.Duration) (*server.Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.MoveDelay = delay

	static := fstest.MapFS{
		"web/static/index.html": {Data: []byte("<h1>Tower of Hanoi</h1>")},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := server.New(cfg, static, logger)
	handler, err := srv.Handler()
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		srv.Handlers().Close()
		ts.Close()
	})
	return srv, ts
}

func newRoom(t *testing.T, srv *server.Server) string {
	t.Helper()
	hub, err := srv.Handlers().CreateRoom()
	require.NoError(t, err)
	return hub.RoomID()
}

func dial(t *testing.T, ts *httptest.Server, roomID, member string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?room=" + roomID + "&member=" + member + "&type=player"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Every connection starts with the current state.
	readUntil(t, conn, protocol.MsgState)
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(protocol.MustEnvelope(typ, payload)))
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) protocol.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var env protocol.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Type == typ {
			return env
		}
	}
}

func readEvent(t *testing.T, conn *websocket.Conn, typ engine.EventType) engine.Event {
	t.Helper()
	for {
		env := readUntil(t, conn, protocol.MsgEvent)
		var ev engine.Event
		require.NoError(t, env.Decode(&ev))
		if ev.Type == typ {
			return ev
		}
	}
}

func readError(t *testing.T, conn *websocket.Conn) protocol.ErrorMsg {
	t.Helper()
	var msg protocol.ErrorMsg
	require.NoError(t, readUntil(t, conn, protocol.MsgError).Decode(&msg))
	return msg
}

func TestHTTPRoutes(t *testing.T) {
	srv, ts := newTestServer(t, 0)
	roomID := newRoom(t, srv)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	resp, err := client.Get(ts.URL + "/api/create")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/board.html?room="))

	resp, err = http.Get(ts.URL + "/api/state?room=" + roomID)
	require.NoError(t, err)
	var snap engine.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	assert.Equal(t, 3, snap.Disks)
	assert.Equal(t, engine.PhasePlaying, snap.Phase)
	assert.Equal(t, []int{2, 1, 0}, snap.Pegs[0])

	resp, err = http.Get(ts.URL + "/api/state?room=nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/qr")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/qr?room=" + roomID)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp, err = http.Get(ts.URL + "/api/member-id")
	require.NoError(t, err)
	id, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Len(t, string(id), 16)

	resp, err = http.Get(ts.URL + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "Tower of Hanoi")
}

func TestWebsocketUnknownRoom(t *testing.T) {
	_, ts := newTestServer(t, 0)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?room=nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestJoinBroadcastsMembers(t *testing.T) {
	srv, ts := newTestServer(t, 0)
	roomID := newRoom(t, srv)
	board := dial(t, ts, roomID, "")
	phone := dial(t, ts, roomID, "m1")

	send(t, phone, protocol.MsgJoin, protocol.JoinMsg{MemberID: "m1", Name: "Ann"})

	for {
		var update protocol.RoomUpdate
		require.NoError(t, readUntil(t, board, protocol.MsgRoomUpdate).Decode(&update))
		if len(update.Members) == 0 {
			continue
		}
		assert.Equal(t, roomID, update.RoomID)
		assert.Equal(t, []protocol.RoomMember{{ID: "m1", Name: "Ann"}}, update.Members)
		break
	}

	send(t, phone, protocol.MsgJoin, protocol.JoinMsg{MemberID: "m1"})
	assert.Equal(t, protocol.CodeBadRequest, readError(t, phone).Code)
}

func TestManualGame(t *testing.T) {
	srv, ts := newTestServer(t, 0)
	conn := dial(t, ts, newRoom(t, srv), "m1")

	send(t, conn, protocol.MsgNewGame, protocol.GameMsg{Disks: 1})
	ev := readEvent(t, conn, engine.EventGameStarted)
	assert.Equal(t, [engine.PegCount][]int{{0}, {}, {}}, ev.Snapshot.Pegs)

	send(t, conn, protocol.MsgMove, protocol.MoveMsg{From: 0, To: 2})
	var solved protocol.SolvedMsg
	require.NoError(t, readUntil(t, conn, protocol.MsgSolved).Decode(&solved))
	assert.Equal(t, protocol.SolvedMsg{Moves: 1, Minimum: 1, BySolver: false}, solved)

	send(t, conn, protocol.MsgMove, protocol.MoveMsg{From: 2, To: 1})
	assert.Equal(t, protocol.CodeIllegalMove, readError(t, conn).Code)
}

func TestInvalidRequests(t *testing.T) {
	srv, ts := newTestServer(t, 0)
	conn := dial(t, ts, newRoom(t, srv), "m1")

	send(t, conn, protocol.MsgNewGame, protocol.GameMsg{Disks: 11})
	assert.Equal(t, protocol.CodeInvalidDiskCount, readError(t, conn).Code)

	send(t, conn, protocol.MsgAutoSolve, protocol.GameMsg{Disks: 0})
	assert.Equal(t, protocol.CodeInvalidDiskCount, readError(t, conn).Code)

	send(t, conn, "teleport", nil)
	assert.Equal(t, protocol.CodeBadRequest, readError(t, conn).Code)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	assert.Equal(t, protocol.CodeBadRequest, readError(t, conn).Code)

	send(t, conn, protocol.MsgStopSolve, nil)
	assert.Equal(t, protocol.CodeIllegalMove, readError(t, conn).Code)
}

func TestDragRevertOverWebsocket(t *testing.T) {
	srv, ts := newTestServer(t, 0)
	conn := dial(t, ts, newRoom(t, srv), "m1")

	send(t, conn, protocol.MsgNewGame, protocol.GameMsg{Disks: 2})
	readEvent(t, conn, engine.EventGameStarted)

	send(t, conn, protocol.MsgLift, protocol.PegMsg{Peg: 0})
	lifted := readEvent(t, conn, engine.EventDiskLifted)
	require.NotNil(t, lifted.Snapshot.Held)
	assert.Equal(t, engine.Held{Disk: 0, From: 0}, *lifted.Snapshot.Held)

	send(t, conn, protocol.MsgDrop, protocol.PegMsg{Peg: -1})
	reverted := readEvent(t, conn, engine.EventMoveReverted)
	assert.Nil(t, reverted.Snapshot.Held)
	assert.Equal(t, 0, reverted.Snapshot.MoveCount)
	assert.Equal(t, []int{1, 0}, reverted.Snapshot.Pegs[0])

	send(t, conn, protocol.MsgLift, protocol.PegMsg{Peg: 0})
	readEvent(t, conn, engine.EventDiskLifted)
	send(t, conn, protocol.MsgDrop, protocol.PegMsg{Peg: 1})
	moved := readEvent(t, conn, engine.EventDiskMoved)
	assert.Equal(t, 1, moved.Snapshot.MoveCount)
	assert.Equal(t, []int{0}, moved.Snapshot.Pegs[1])
}

func TestAutoSolveBroadcastsEveryMove(t *testing.T) {
	srv, ts := newTestServer(t, 0)
	roomID := newRoom(t, srv)
	player := dial(t, ts, roomID, "m1")
	board := dial(t, ts, roomID, "")

	send(t, player, protocol.MsgAutoSolve, protocol.GameMsg{Disks: 3})

	readEvent(t, board, engine.EventSolveStarted)
	var moves [][2]int
	for {
		ev := readEvent(t, board, engine.EventDiskMoved)
		require.True(t, ev.Solver)
		moves = append(moves, [2]int{ev.Move.From, ev.Move.To})
		if ev.Snapshot.Phase == engine.PhaseSolved {
			break
		}
	}
	assert.Equal(t, [][2]int{{0, 2}, {0, 1}, {2, 1}, {0, 2}, {1, 0}, {1, 2}, {0, 2}}, moves)

	var solved protocol.SolvedMsg
	require.NoError(t, readUntil(t, board, protocol.MsgSolved).Decode(&solved))
	assert.Equal(t, protocol.SolvedMsg{Moves: 7, Minimum: 7, BySolver: true}, solved)
}

func TestManualMoveRejectedWhileSolving(t *testing.T) {
	srv, ts := newTestServer(t, time.Second)
	conn := dial(t, ts, newRoom(t, srv), "m1")

	send(t, conn, protocol.MsgAutoSolve, protocol.GameMsg{Disks: 4})
	readEvent(t, conn, engine.EventDiskMoved)
	send(t, conn, protocol.MsgMove, protocol.MoveMsg{From: 0, To: 1})
	errMsg := readError(t, conn)
	assert.Equal(t, protocol.CodeIllegalMove, errMsg.Code)
	assert.Contains(t, errMsg.Message, "auto-solver is running")

	send(t, conn, protocol.MsgStopSolve, nil)
	stopped := readEvent(t, conn, engine.EventSolveStopped)
	assert.Equal(t, engine.PhasePlaying, stopped.Snapshot.Phase)
	assert.Equal(t, 1, stopped.Snapshot.MoveCount)
}

func TestNewGameCancelsSolver(t *testing.T) {
	srv, ts := newTestServer(t, time.Second)
	conn := dial(t, ts, newRoom(t, srv), "m1")

	send(t, conn, protocol.MsgAutoSolve, protocol.GameMsg{Disks: 5})
	readEvent(t, conn, engine.EventDiskMoved)

	send(t, conn, protocol.MsgNewGame, protocol.GameMsg{Disks: 2})
	started := readEvent(t, conn, engine.EventGameStarted)
	assert.Equal(t, 0, started.Snapshot.MoveCount)
	assert.Equal(t, engine.PhasePlaying, started.Snapshot.Phase)
	assert.Equal(t, []int{1, 0}, started.Snapshot.Pegs[0])

	// The cancelled run must not move any more disks.
	send(t, conn, protocol.MsgLift, protocol.PegMsg{Peg: 0})
	lifted := readEvent(t, conn, engine.EventDiskLifted)
	assert.Equal(t, 0, lifted.Snapshot.MoveCount)
}
