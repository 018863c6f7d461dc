package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/doorway/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil {
		t.Error("Hub broadcast channel is nil")
	}
	if hub.register == nil || hub.unregister == nil {
		t.Error("Hub register channels are nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"
	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)

	hub.registerClient(client1)
	hub.registerClient(client2)
	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)
	if len(hub.sessions[sessionID]) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", len(hub.sessions[sessionID]))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func receive(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case data := <-client.send:
		var message Message
		require.NoError(t, json.Unmarshal(data, &message))
		return message
	case <-time.After(time.Second):
		t.Fatal("No message received within timeout")
	}
	return Message{}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub()
	sessionID := "broadcast-test"
	client := newTestClient(hub, sessionID)
	other := newTestClient(hub, "other")
	hub.registerClient(client)
	hub.registerClient(other)

	go hub.Run()
	defer hub.Close()

	hub.BroadcastToSession(sessionID, &engine.GameState{
		LevelName: "Corridor",
		Moving:    []engine.Spot{{X: 5, Y: 3}},
		Won:       true,
	})

	message := receive(t, client)
	assert.Equal(t, sessionID, message.SessionID)
	assert.Equal(t, EventStateUpdate, message.Event)
	require.NotNil(t, message.GameState)
	assert.Equal(t, []engine.Spot{{X: 5, Y: 3}}, message.GameState.Moving)
	assert.True(t, message.GameState.Won)

	select {
	case <-other.send:
		t.Error("Clients of other sessions should not receive the update")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHubBroadcastTurnAndEvent(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "event-test")
	hub.registerClient(client)

	go hub.Run()
	defer hub.Close()

	hub.BroadcastTurn("event-test", &engine.GameState{LastTurn: "move"}, []string{"door"})
	message := receive(t, client)
	assert.Equal(t, EventTurn, message.Event)
	assert.Equal(t, "move", message.GameState.LastTurn)
	assert.Equal(t, []interface{}{"door"}, message.Data)

	hub.BroadcastEvent("event-test", "custom-event", "test-data")
	message = receive(t, client)
	assert.Equal(t, "custom-event", message.Event)
	assert.Equal(t, "test-data", message.Data)
	assert.Nil(t, message.GameState)
}

func TestHubBroadcastDoesNotBlockWithoutRun(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		for i := 0; i < engine.WebSocketBufferSize+10; i++ {
			hub.BroadcastEvent("idle", "tick", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a stopped hub")
	}
}

func newWSServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionId")
		if sessionID == "" {
			sessionID = "default"
		}
		hub.ServeWS(w, r, sessionID)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	server := newWSServer(t, hub)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?sessionId=ws-test"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return hub.ClientCount("ws-test") == 1 },
		time.Second, 10*time.Millisecond, "client should be registered")

	conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientCount("ws-test") == 0 },
		time.Second, 10*time.Millisecond, "client should be unregistered after close")
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	server := newWSServer(t, hub)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?sessionId=msg-test"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount("msg-test") == 1 },
		time.Second, 10*time.Millisecond)

	hub.BroadcastToSession("msg-test", &engine.GameState{
		Moving:     []engine.Spot{{X: 10, Y: 15}},
		HistoryLen: 4,
	})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var message Message
	require.NoError(t, json.Unmarshal(data, &message))
	assert.Equal(t, "msg-test", message.SessionID)
	assert.Equal(t, []engine.Spot{{X: 10, Y: 15}}, message.GameState.Moving)
	assert.Equal(t, 4, message.GameState.HistoryLen)
}
