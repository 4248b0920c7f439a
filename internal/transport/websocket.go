// Package transport bridges the node's abstract channels onto a
// JSON-over-websocket wire. Clients push position, velocity, external
// force, and parameter messages; every connected client receives the
// published force output stream.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/san-kum/attractor/internal/field"
	"github.com/san-kum/attractor/internal/node"
	"github.com/san-kum/attractor/internal/params"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// client pairs a connection with its write mutex: the broadcast loop
// and a read loop's error replies may target the same connection, and
// gorilla permits at most one concurrent writer per conn.
type client struct {
	conn *websocket.Conn

	writeMu sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

type Server struct {
	node   *node.Node
	store  *params.Store
	logger *zap.Logger

	mu      sync.Mutex
	clients map[*client]bool
}

func NewServer(n *node.Node, store *params.Store, logger *zap.Logger) *Server {
	return &Server{
		node:    n,
		store:   store,
		logger:  logger,
		clients: make(map[*client]bool),
	}
}

// Run serves websocket clients on addr and forwards the node's output
// stream until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	srv := &http.Server{Addr: addr, Handler: mux}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("transport listen: %w", err)
	}
	s.logger.Info("transport listening", zap.String("addr", ln.Addr().String()))

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	go s.broadcastLoop(ctx)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.closeClients()
		return ctx.Err()
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn}
	s.mu.Lock()
	s.clients[c] = true
	s.mu.Unlock()
	s.logger.Info("client connected", zap.String("remote", conn.RemoteAddr().String()))

	go s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	defer s.dropClient(c)

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("client read failed", zap.Error(err))
			}
			return
		}
		if err := s.route(msg); err != nil {
			s.logger.Warn("message rejected",
				zap.String("type", msg.Type), zap.Error(err))
			_ = c.writeJSON(Message{Type: TypeError, Error: err.Error()})
		}
	}
}

// route dispatches one decoded message. Kinematic sends never block
// the read loop: the node's input buffers carry last-value semantics,
// so dropping under backpressure only discards stale measurements.
func (s *Server) route(msg Message) error {
	switch msg.Type {
	case TypePosition:
		offer(s.node.Positions(), msg.vec())
	case TypeVelocity:
		offer(s.node.Velocities(), msg.vec())
	case TypeForceInput:
		// Contributions are summed, not last-value; a blocked
		// buffer means lost force, so report it.
		select {
		case s.node.ForceInputs() <- msg.vec():
		default:
			return fmt.Errorf("force input buffer full")
		}
	case TypeParams:
		if msg.Params == nil {
			return fmt.Errorf("params message without payload")
		}
		return s.applyParams(msg.Params)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func (s *Server) applyParams(u *ParamUpdate) error {
	var shapeErr error
	err := s.store.Update(func(snap *params.Snapshot) {
		// Apply to a scratch copy so a shape error cannot leave
		// a half-applied update behind.
		next := *snap
		if shapeErr = u.apply(&next); shapeErr != nil {
			return
		}
		*snap = next
	})
	if shapeErr != nil {
		return shapeErr
	}
	return err
}

func offer(ch chan<- field.Vec3, v field.Vec3) {
	select {
	case ch <- v:
	default:
	}
}

func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-s.node.Output():
			s.broadcast(forceMessage(f))
		}
	}
}

func (s *Server) broadcast(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if err := c.writeJSON(msg); err != nil {
			delete(s.clients, c)
			c.conn.Close()
		}
	}
}

func (s *Server) dropClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.conn.Close()
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.conn.Close()
	}
	s.clients = make(map[*client]bool)
}
