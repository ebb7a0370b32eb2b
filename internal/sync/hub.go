package sync

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 2 * time.Second

	// sendBuffer is how many events a subscriber may fall behind before
	// it is disconnected.
	sendBuffer = 64
)

// Hub fans state events out to subscribers. Websocket clients follow one
// session; TCP clients are operator feeds and receive every event.
//
// Each subscriber has its own queue drained by a writer goroutine, so a
// slow connection never delays delivery to the others.
type Hub struct {
	mu        sync.Mutex
	clients   map[net.Conn]*subscriber
	wsClients map[*websocket.Conn]*subscriber
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

type subscriber struct {
	session string // empty for TCP feeds
	send    chan []byte
	write   func([]byte) error
	close   func() error
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[net.Conn]*subscriber),
		wsClients: make(map[*websocket.Conn]*subscriber),
	}
}

// Add registers a TCP feed and queues its welcome line.
func (h *Hub) Add(conn net.Conn) {
	sub := &subscriber{
		send: make(chan []byte, sendBuffer),
		write: func(b []byte) error {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_, err := conn.Write(b)
			return err
		},
		close: conn.Close,
	}

	h.mu.Lock()
	h.clients[conn] = sub
	if b, err := encodeLine(newWelcome("tcp", "", len(h.clients))); err == nil {
		sub.send <- b
	}
	h.mu.Unlock()

	go h.writeLoop(sub, func() { h.detachTCP(conn) })
}

// Remove unregisters a TCP feed and closes it.
func (h *Hub) Remove(conn net.Conn) {
	h.detachTCP(conn)
	_ = conn.Close()
}

// AddWS registers a websocket following sessionID. Anything written to ws
// directly must happen before this call.
func (h *Hub) AddWS(sessionID string, ws *websocket.Conn) {
	sub := &subscriber{
		session: sessionID,
		send:    make(chan []byte, sendBuffer),
		write: func(b []byte) error {
			_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			return ws.WriteMessage(websocket.TextMessage, b)
		},
		close: ws.Close,
	}

	h.mu.Lock()
	h.wsClients[ws] = sub
	h.mu.Unlock()

	go h.writeLoop(sub, func() { h.detachWS(ws) })
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.detachWS(ws)
	_ = ws.Close()
}

// Publish queues v for the websocket subscribers of sessionID and for every
// TCP client. It never blocks on a connection.
func (h *Hub) Publish(sessionID string, v any) {
	b, err := encodeLine(v)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, sub := range h.clients {
		if !h.enqueueLocked(sub, b) {
			delete(h.clients, conn)
		}
	}
	for ws, sub := range h.wsClients {
		if sub.session != sessionID {
			continue
		}
		if !h.enqueueLocked(sub, b) {
			delete(h.wsClients, ws)
		}
	}
}

// DropSession disconnects the websocket subscribers of a session once
// their queued events are written.
func (h *Hub) DropSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ws, sub := range h.wsClients {
		if sub.session == sessionID {
			delete(h.wsClients, ws)
			close(sub.send)
		}
	}
}

// BroadcastJSON queues v for every subscriber regardless of session.
func (h *Hub) BroadcastJSON(v any) {
	b, err := encodeLine(v)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, sub := range h.clients {
		if !h.enqueueLocked(sub, b) {
			delete(h.clients, conn)
		}
	}
	for ws, sub := range h.wsClients {
		if !h.enqueueLocked(sub, b) {
			delete(h.wsClients, ws)
		}
	}
}

// enqueueLocked reports false when sub's queue is full; sub is then closed
// and the caller must unregister it.
func (h *Hub) enqueueLocked(sub *subscriber, b []byte) bool {
	select {
	case sub.send <- b:
		return true
	default:
		close(sub.send)
		_ = sub.close()
		return false
	}
}

// writeLoop drains sub's queue until it is closed or a write fails, then
// closes the connection.
func (h *Hub) writeLoop(sub *subscriber, detach func()) {
	for b := range sub.send {
		if err := sub.write(b); err != nil {
			detach()
			break
		}
	}
	_ = sub.close()
}

func (h *Hub) detachTCP(conn net.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(sub.send)
	}
}

func (h *Hub) detachWS(ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.wsClients[ws]; ok {
		delete(h.wsClients, ws)
		close(sub.send)
	}
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		TCPClients: len(h.clients),
		WSClients:  len(h.wsClients),
	}
}

func encodeLine(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
