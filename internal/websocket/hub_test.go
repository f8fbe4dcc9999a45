package websocket

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_BroadcastToClients(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	srv := httptest.NewServer(NewHandler(hub, nil))
	defer srv.Close()

	first, second := dial(t, srv), dial(t, srv)

	hello := readJSON(t, first)
	assert.Equal(t, TypeConnection, hello["type"])
	assert.NotEmpty(t, hello["trace_id"])
	readJSON(t, second)

	assert.Equal(t, 2, hub.ClientCount())

	hub.BroadcastUpdate("run:progress", "write", "running", map[string]interface{}{"sheet": "Labor", "progress": 50})

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readJSON(t, conn)
		assert.Equal(t, "run:progress", msg["type"])
		assert.Equal(t, "write", msg["step"])
		assert.Equal(t, "running", msg["status"])
		data := msg["data"].(map[string]interface{})
		assert.Equal(t, "Labor", data["sheet"])
	}

	metrics := hub.GetHubMetrics()
	assert.Equal(t, int64(2), metrics["total_connections"])
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	srv := httptest.NewServer(NewHandler(hub, nil))
	defer srv.Close()

	conn := dial(t, srv)
	readJSON(t, conn)
	require.Equal(t, 1, hub.ClientCount())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"heartbeat"}`)))
	conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	hub := NewHub(testLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < broadcastBuffer+10; i++ {
			hub.BroadcastUpdate("run:progress", "", "running", i)
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("BroadcastUpdate blocked without a running hub")
	}
	assert.Equal(t, int64(10), hub.GetHubMetrics()["messages_dropped"])
}

func TestHub_UnmarshalablePayload(t *testing.T) {
	hub := NewHub(testLogger())
	hub.BroadcastUpdate("run:progress", "", "", make(chan int))
	assert.Len(t, hub.broadcast, 0)
	assert.Equal(t, int64(0), hub.GetHubMetrics()["messages_dropped"])
}
