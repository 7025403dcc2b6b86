package inspect

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(nil)
	ts := httptest.NewServer(s.Handler())
	ctx, cancel := context.WithCancel(context.Background())
	go s.Broadcast(ctx)
	t.Cleanup(func() {
		cancel()
		s.closeClients()
		ts.Close()
	})
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readStats(t *testing.T, conn *websocket.Conn) FrameStats {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var st FrameStats
	require.NoError(t, conn.ReadJSON(&st))
	return st
}

func TestStatsEndpoint(t *testing.T) {
	s, ts := startServer(t)
	s.Publish(FrameStats{Frame: 42, DrawCalls: 13, Indices: 1536})

	resp, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got FrameStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, uint64(42), got.Frame)
	assert.Equal(t, 13, got.DrawCalls)
	assert.Equal(t, int64(1536), got.Indices)
}

func TestStatsRejectsPost(t *testing.T) {
	_, ts := startServer(t)
	resp, err := http.Post(ts.URL+"/stats", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestWebSocketReceivesSnapshots(t *testing.T) {
	s, ts := startServer(t)
	s.Publish(FrameStats{Frame: 1})

	conn := dial(t, ts)
	assert.Equal(t, uint64(1), readStats(t, conn).Frame, "current snapshot on connect")

	require.Eventually(t, func() bool { return s.NumClients() == 1 }, time.Second, 10*time.Millisecond)
	s.Publish(FrameStats{Frame: 2, FPS: 60})
	// A broadcast of the first snapshot may still be in flight
	got := readStats(t, conn)
	if got.Frame == 1 {
		got = readStats(t, conn)
	}
	assert.Equal(t, uint64(2), got.Frame)
	assert.Equal(t, 60.0, got.FPS)
}

func TestWebSocketCommands(t *testing.T) {
	s, ts := startServer(t)
	conn := dial(t, ts)
	readStats(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.WriteJSON(map[string]any{"spin_speed": 0.5}))

	select {
	case cmd := <-s.Commands():
		require.NotNil(t, cmd.SpinSpeed)
		assert.Equal(t, float32(0.5), *cmd.SpinSpeed)
		assert.Nil(t, cmd.Paused)
	case <-time.After(2 * time.Second):
		t.Fatal("command not delivered")
	}
}

func TestWebSocketSkipsMistypedCommand(t *testing.T) {
	s, ts := startServer(t)
	conn := dial(t, ts)
	readStats(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"spin_speed":"fast"}`)))
	require.NoError(t, conn.WriteJSON(map[string]any{"paused": true}))

	select {
	case cmd := <-s.Commands():
		assert.Nil(t, cmd.SpinSpeed)
		require.NotNil(t, cmd.Paused)
		assert.True(t, *cmd.Paused)
	case <-time.After(2 * time.Second):
		t.Fatal("client dropped after a mistyped command")
	}
	assert.Equal(t, 1, s.NumClients())
}

func TestClientRemovedOnDisconnect(t *testing.T) {
	s, ts := startServer(t)
	conn := dial(t, ts)
	readStats(t, conn)
	require.Eventually(t, func() bool { return s.NumClients() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return s.NumClients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishNeverBlocks(t *testing.T) {
	s := New(nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			s.Publish(FrameStats{Frame: uint64(i)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked without a broadcaster")
	}
	assert.Equal(t, uint64(999), s.Latest().Frame)
}

func TestPublishIgnoresStalledClient(t *testing.T) {
	s, ts := startServer(t)
	dial(t, ts) // never reads
	require.Eventually(t, func() bool { return s.NumClients() == 1 }, time.Second, 10*time.Millisecond)

	var worst time.Duration
	deadline := time.Now().Add(1500 * time.Millisecond)
	for i := 0; time.Now().Before(deadline); i++ {
		start := time.Now()
		s.Publish(FrameStats{Frame: uint64(i), Nodes: i})
		if d := time.Since(start); d > worst {
			worst = d
		}
	}
	assert.Less(t, worst, 100*time.Millisecond, "Publish waited on a client write")
}

func TestServeStopsOnCancel(t *testing.T) {
	s := New(nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/stats")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return")
	}
}
