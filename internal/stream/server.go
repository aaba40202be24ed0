// Package stream serves a running simulation over WebSocket. Every tick
// the server steps the simulator and broadcasts the frame as JSON; clients
// send population commands back as {"command": "...", "count": n}.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/spheresim/internal/logging"
	"github.com/san-kum/spheresim/internal/sim"
)

const writeWait = 10 * time.Second

// Request is a command sent by a client.
type Request struct {
	Command string `json:"command"`
	Count   int    `json:"count,omitempty"`
}

type Server struct {
	simMu sync.Mutex
	sim   *sim.Simulator
	dt    float32
	rate  time.Duration

	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	log        *logging.Logger
}

// NewServer streams s stepped by dt every rate.
func NewServer(s *sim.Simulator, dt float64, rate time.Duration, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	return &Server{
		sim:        s,
		dt:         float32(dt),
		rate:       rate,
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Submit queues a client request for the next frame.
func (s *Server) Submit(req Request) error {
	cmd, err := sim.ParseCommand(req.Command, req.Count)
	if err != nil {
		return err
	}
	s.simMu.Lock()
	s.sim.Enqueue(cmd)
	s.simMu.Unlock()
	return nil
}

// ServeHTTP upgrades the connection and reads commands until the client
// goes away.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("stream: upgrade: %v", err)
		return
	}
	select {
	case s.register <- conn:
	case <-s.done:
		conn.Close()
		return
	}

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			break
		}
		if err := s.Submit(req); err != nil {
			s.log.Warnf("stream: %v", err)
			continue
		}
		s.log.Debugf("stream: queued %s(%d)", req.Command, req.Count)
	}

	select {
	case s.unregister <- conn:
	case <-s.done:
	}
}

// Run steps and broadcasts until ctx is done, then closes every client.
// Registration is handled here so that this goroutine is the only writer
// on each connection. Run must be called once.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.rate)
	defer ticker.Stop()
	defer close(s.done)
	defer s.closeAll()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case conn := <-s.register:
			s.mu.Lock()
			s.clients[conn] = true
			s.mu.Unlock()
			s.log.Infof("stream: client %s connected", conn.RemoteAddr())
			data, err := s.frame(false)
			if err == nil {
				s.write(conn, data)
			}

		case conn := <-s.unregister:
			s.drop(conn)

		case <-ticker.C:
			data, err := s.frame(true)
			if err != nil {
				s.log.Errorf("stream: %v", err)
				continue
			}
			s.broadcast(data)
		}
	}
}

func (s *Server) frame(step bool) ([]byte, error) {
	s.simMu.Lock()
	defer s.simMu.Unlock()

	if step {
		stats, err := s.sim.Step(s.dt)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", stats.Frame, err)
		}
	}
	f := s.sim.Snapshot()
	return json.Marshal(&f)
}

func (s *Server) broadcast(data []byte) {
	s.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.mu.RUnlock()

	for _, conn := range conns {
		s.write(conn, data)
	}
}

func (s *Server) write(conn *websocket.Conn, data []byte) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.drop(conn)
	}
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		conn.Close()
		s.log.Infof("stream: client %s disconnected", conn.RemoteAddr())
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
}
