// Package inspect serves live frame statistics over HTTP and WebSocket.
//
// GET /stats returns the latest FrameStats as JSON. /ws upgrades to a
// WebSocket that receives every published FrameStats and accepts Command
// messages back.
package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// FrameStats is a snapshot of renderer state.
type FrameStats struct {
	Frame           uint64     `json:"frame"`
	FPS             float64    `json:"fps"`
	FrameTimeMS     float64    `json:"frame_time_ms"`
	Nodes           int        `json:"nodes"`
	DrawCalls       int        `json:"draw_calls"`
	Indices         int64      `json:"indices"`
	OverflowedInput uint64     `json:"overflowed_input"` // input events merged on a full queue
	Camera          [3]float32 `json:"camera"`
	Time            time.Time  `json:"time"`
}

// Command is a control message sent by a WebSocket client. Nil fields are
// left unchanged.
type Command struct {
	SpinSpeed *float32 `json:"spin_speed,omitempty"`
	Paused    *bool    `json:"paused,omitempty"`
}

const writeTimeout = time.Second

// client owns one WebSocket connection. Only its writer goroutine writes to
// conn; send holds at most the newest unsent snapshot.
type client struct {
	conn *websocket.Conn
	send chan FrameStats
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan FrameStats, 1),
		done: make(chan struct{}),
	}
}

// offer queues stats for the writer, replacing any snapshot it has not sent yet.
func (c *client) offer(stats FrameStats) {
	for {
		select {
		case c.send <- stats:
			return
		default:
		}
		select {
		case <-c.send:
		default:
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Server publishes FrameStats to HTTP and WebSocket clients.
type Server struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	// statsMu guards latest only and is never held across network I/O.
	statsMu sync.Mutex
	latest  FrameStats

	mu      sync.Mutex
	clients map[*websocket.Conn]*client

	notify   chan struct{}
	commands chan Command
}

// New creates a server. Nothing is served until ListenAndServe or Handler is used.
func New(log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		log: log,
		upgrader: websocket.Upgrader{
			// Local debugging tool; any page may connect
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:  make(map[*websocket.Conn]*client),
		notify:   make(chan struct{}, 1),
		commands: make(chan Command, 16),
	}
}

// Publish records stats as the latest snapshot and wakes the broadcaster.
// It never blocks, so it is safe to call from the render loop.
func (s *Server) Publish(stats FrameStats) {
	s.statsMu.Lock()
	s.latest = stats
	s.statsMu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Latest returns the most recently published stats.
func (s *Server) Latest() FrameStats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.latest
}

// Commands delivers control messages from clients. Messages that arrive
// while the buffer is full are dropped.
func (s *Server) Commands() <-chan Command {
	return s.commands
}

// NumClients returns the number of connected WebSocket clients.
func (s *Server) NumClients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	go s.Broadcast(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.closeClients()
	}()

	s.log.Info("inspector listening", zap.String("addr", ln.Addr().String()))
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Broadcast hands each published snapshot to every WebSocket client until
// ctx is cancelled. Each client is written by its own goroutine, so a slow
// client only falls behind itself. Snapshots published faster than a client
// can take them are coalesced to the latest.
func (s *Server) Broadcast(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notify:
			s.broadcast(s.Latest())
		}
	}
}

func (s *Server) broadcast(stats FrameStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		c.offer(stats)
	}
}

// writeLoop sends queued snapshots to c until it is closed or a write fails.
func (s *Server) writeLoop(c *client) {
	defer s.removeClient(c.conn)
	for {
		select {
		case <-c.done:
			return
		case stats := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(stats); err != nil {
				s.log.Debug("dropping inspector client", zap.String("remote", c.conn.RemoteAddr().String()), zap.Error(err))
				return
			}
		}
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Latest()); err != nil {
		s.log.Warn("encoding stats", zap.Error(err))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(conn)
	// New clients get the current snapshot without waiting a full interval
	c.offer(s.Latest())
	s.mu.Lock()
	s.clients[conn] = c
	s.mu.Unlock()
	defer s.removeClient(conn)

	s.log.Debug("inspector client connected", zap.String("remote", conn.RemoteAddr().String()))
	go s.writeLoop(c)

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				s.log.Debug("ignoring malformed command", zap.Error(err))
				continue
			}
			return
		}
		select {
		case s.commands <- cmd:
		default:
			s.log.Warn("inspector command dropped")
		}
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.mu.Lock()
	c, ok := s.clients[conn]
	delete(s.clients, conn)
	s.mu.Unlock()
	if ok {
		c.close()
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for conn, c := range s.clients {
		clients = append(clients, c)
		delete(s.clients, conn)
	}
	s.mu.Unlock()
	for _, c := range clients {
		c.close()
	}
}
