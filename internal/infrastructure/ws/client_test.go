package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/churchconnect/realtime/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dialPair returns the server-side client plus the caller's raw conn.
func dialPair(t *testing.T, sendBuffer int) (*Client, *websocket.Conn) {
	t.Helper()

	clients := make(chan *Client, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		client := NewClient(conn, domain.ChatRoom("G42"), &domain.Identity{ID: "17", Username: "grace"}, sendBuffer)
		clients <- client

		go client.WritePump()
		client.ReadPump(func(ctx context.Context, raw []byte) {})
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	client := <-clients
	t.Cleanup(client.Close)
	return client, conn
}

func TestClient_Send_Delivers_Over_Socket(t *testing.T) {
	req := require.New(t)
	client, conn := dialPair(t, 4)

	req.True(client.Send([]byte(`{"type":"message"}`)))

	req.NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, raw, err := conn.ReadMessage()
	req.NoError(err)
	req.JSONEq(`{"type":"message"}`, string(raw))
}

func TestClient_Send_Reports_False_After_Close(t *testing.T) {
	req := require.New(t)
	client := NewClient(nil, domain.ChatRoom("G42"), nil, 4)

	client.cancel()
	req.False(client.Send([]byte(`{}`)))
}

func TestClient_Send_Never_Blocks_On_Full_Buffer(t *testing.T) {
	req := require.New(t)
	// No write pump draining this client, so the buffer fills up.
	client := NewClient(nil, domain.ChatRoom("G42"), nil, 2)

	req.True(client.Send([]byte(`{}`)))
	req.True(client.Send([]byte(`{}`)))

	done := make(chan bool, 1)
	go func() { done <- client.Send([]byte(`{}`)) }()

	select {
	case ok := <-done:
		req.False(ok)
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full buffer")
	}
}

func TestClient_Context_Canceled_On_Disconnect(t *testing.T) {
	req := require.New(t)
	client, conn := dialPair(t, 4)

	req.NoError(conn.Close())

	select {
	case <-client.Context().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client context not canceled after disconnect")
	}
}
