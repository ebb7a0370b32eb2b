package sync

import (
	"bufio"
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"

	"artshop/pkg/logging"
)

// Server accepts TCP operator feeds and registers them with the hub.
type Server struct {
	Addr   string
	Hub    *Hub
	Logger *zap.Logger

	mu     sync.Mutex
	ln     net.Listener
	closed bool
}

func NewServer(addr string, hub *Hub, logger *zap.Logger) *Server {
	return &Server{Addr: addr, Hub: hub, Logger: logging.OrNop(logger).Named("tcp-sync")}
}

func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts on ln until Close is called, then returns nil.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = ln.Close()
		return nil
	}
	s.ln = ln
	s.mu.Unlock()

	log := logging.OrNop(s.Logger)
	log.Info("listening", zap.String("addr", ln.Addr().String()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Warn("accept failed", zap.Error(err))
			continue
		}

		s.Hub.Add(conn)
		log.Info("client connected", zap.Stringer("remote", conn.RemoteAddr()))

		go func(c net.Conn) {
			defer func() {
				s.Hub.Remove(c)
				log.Info("client disconnected", zap.Stringer("remote", c.RemoteAddr()))
			}()

			// feed is one-way; drain until the client hangs up
			sc := bufio.NewScanner(c)
			for sc.Scan() {
			}
		}(conn)
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
