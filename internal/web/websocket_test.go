package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Douglas-Hynes/DuckChess/internal/chess"
)

type wireUpdate struct {
	GameID string          `json:"gameId"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.done
	})
	return hub
}

func dial(t *testing.T, server *httptest.Server, gameID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?gameId=" + gameID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUpdate(t *testing.T, conn *websocket.Conn) wireUpdate {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var u wireUpdate
	require.NoError(t, conn.ReadJSON(&u))
	return u
}

func TestWebSocketStreamsGameUpdates(t *testing.T) {
	hub := startHub(t)
	s, _ := newTestService(t, hub)
	server := httptest.NewServer(s.Router())
	defer server.Close()

	created := createGame(t, s.Router(), nil)
	id := created.Game.ID
	conn := dial(t, server, id)

	// The initial state arrives only after the hub registered the socket.
	initial := readUpdate(t, conn)
	assert.Equal(t, "state", initial.Type)
	assert.Equal(t, id, initial.GameID)
	var view GameView
	require.NoError(t, json.Unmarshal(initial.Data, &view))
	assert.Equal(t, chess.StartFEN, view.FEN)

	assert.Eventually(t, func() bool { return hub.SpectatorCount(id) == 1 }, time.Second, 10*time.Millisecond)

	rr := request(t, s.Router(), "POST", movePath(id), created.WhiteToken, MakeMoveRequest{From: "e2", To: "e4", Duck: "e6"})
	require.Equal(t, http.StatusOK, rr.Code)

	update := readUpdate(t, conn)
	assert.Equal(t, "move", update.Type)
	var res chess.MoveResult
	require.NoError(t, json.Unmarshal(update.Data, &res))
	assert.Equal(t, "e2e4", res.Move)
	assert.Equal(t, "e6", res.Duck)

	rr = request(t, s.Router(), "POST", "/api/games/"+id+"/undo", created.WhiteToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "undo", readUpdate(t, conn).Type)

	rr = request(t, s.Router(), "POST", "/api/games/"+id+"/resign", created.WhiteToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	end := readUpdate(t, conn)
	assert.Equal(t, "game_end", end.Type)
	require.NoError(t, json.Unmarshal(end.Data, &view))
	assert.Equal(t, chess.StatusBlackWon, view.Status)
}

func TestWebSocketIgnoresOtherGames(t *testing.T) {
	hub := startHub(t)
	s, _ := newTestService(t, hub)
	server := httptest.NewServer(s.Router())
	defer server.Close()

	watched := createGame(t, s.Router(), nil)
	other := createGame(t, s.Router(), nil)
	conn := dial(t, server, watched.Game.ID)
	readUpdate(t, conn)

	rr := request(t, s.Router(), "POST", movePath(other.Game.ID), other.WhiteToken, MakeMoveRequest{From: "d2", To: "d4", Duck: "d6"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = request(t, s.Router(), "POST", movePath(watched.Game.ID), watched.WhiteToken, MakeMoveRequest{From: "g1", To: "f3", Duck: "f6"})
	require.Equal(t, http.StatusOK, rr.Code)

	update := readUpdate(t, conn)
	assert.Equal(t, watched.Game.ID, update.GameID)
	var res chess.MoveResult
	require.NoError(t, json.Unmarshal(update.Data, &res))
	assert.Equal(t, "g1f3", res.Move)
}

func TestWebSocketPing(t *testing.T) {
	hub := startHub(t)
	s, _ := newTestService(t, hub)
	server := httptest.NewServer(s.Router())
	defer server.Close()

	created := createGame(t, s.Router(), nil)
	conn := dial(t, server, created.Game.ID)
	readUpdate(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg map[string]string
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "pong", msg["type"])
}

func TestWebSocketRejectsUnknownGame(t *testing.T) {
	hub := startHub(t)
	s, _ := newTestService(t, hub)
	server := httptest.NewServer(s.Router())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?gameId=missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	url = "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	_, resp, err = websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSpectatorLeaves(t *testing.T) {
	hub := startHub(t)
	s, _ := newTestService(t, hub)
	server := httptest.NewServer(s.Router())
	defer server.Close()

	created := createGame(t, s.Router(), nil)
	id := created.Game.ID
	conn := dial(t, server, id)
	readUpdate(t, conn)
	assert.Eventually(t, func() bool { return hub.SpectatorCount(id) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.SpectatorCount(id) == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestBroadcastWithoutSpectators(t *testing.T) {
	hub := NewHub()
	for i := 0; i < cap(hub.broadcast)+10; i++ {
		hub.BroadcastGameUpdate(GameUpdate{GameID: "nobody", Type: "move"})
	}
	assert.Len(t, hub.broadcast, cap(hub.broadcast))
}

func TestTrySendAfterHubClosedChannel(t *testing.T) {
	hub := NewHub()
	client := &Client{hub: hub, send: make(chan []byte, 1), gameID: "g"}
	hub.gameClients["g"] = map[*Client]bool{client: true}

	client.trySend([]byte("first"))
	client.trySend([]byte("dropped, buffer full"))
	assert.Equal(t, []byte("first"), <-client.send)

	hub.removeClient(client)
	assert.True(t, client.closed)
	assert.NotPanics(t, func() { client.trySend([]byte("late")) })
	_, open := <-client.send
	assert.False(t, open)
}

func TestTrySendRacingRemoval(t *testing.T) {
	hub := NewHub()
	client := &Client{hub: hub, send: make(chan []byte, 256), gameID: "g"}
	hub.gameClients["g"] = map[*Client]bool{client: true}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			client.trySend([]byte("pong"))
		}
	}()
	hub.removeClient(client)
	<-done
	assert.Equal(t, 0, hub.SpectatorCount("g"))
}
