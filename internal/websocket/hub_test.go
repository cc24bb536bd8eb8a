package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gamebuddy-app/internal/notification"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(logger)
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, r.URL.Query().Get("gamer"), logger, w, r)
	}))
	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, gamerID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?gamer=" + gamerID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestDeliverToConnectedGamer(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dial(t, server, "g1")

	require.Eventually(t, func() bool { return hub.IsConnected("g1") }, time.Second, 10*time.Millisecond)

	err := hub.Deliver(context.Background(), notification.Notification{
		GamerID: "g1",
		Title:   "New friend request",
		Body:    "bob wants to be your friend",
		Kind:    notification.KindFriendRequest,
	})
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string                    `json:"type"`
		Data notification.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, MessageTypeNotification, msg.Type)
	assert.Equal(t, "bob wants to be your friend", msg.Data.Body)
	assert.Equal(t, notification.KindFriendRequest, msg.Data.Kind)
}

func TestDeliverWithoutConnection(t *testing.T) {
	hub, _ := newTestHub(t)

	err := hub.Deliver(context.Background(), notification.Notification{GamerID: "nobody"})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestPingAnsweredWithPong(t *testing.T) {
	_, server := newTestHub(t)
	conn := dial(t, server, "g2")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, MessageTypePong, msg.Type)
}

func TestDisconnectUnregisters(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dial(t, server, "g3")
	require.Eventually(t, func() bool { return hub.IsConnected("g3") }, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool { return !hub.IsConnected("g3") }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.GetTotalConnections())
}
