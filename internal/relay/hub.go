package relay

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/anmol-28/livedatatest/internal/metrics"
)

const (
	writeDeadline     = 5 * time.Second
	messageBufferSize = 16
)

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	conn *websocket.Conn
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	conn *websocket.Conn
}

func (cmdUnregister) hubCmd() {}

type cmdBroadcast struct {
	data []byte
}

func (cmdBroadcast) hubCmd() {}

type cmdClientCount struct {
	replyCh chan int
}

func (cmdClientCount) hubCmd() {}

type cmdStop struct {
	doneCh chan struct{}
}

func (cmdStop) hubCmd() {}

// --- Per-connection writer ---

type clientWriter struct {
	id     uuid.UUID
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
}

func newClientWriter(conn *websocket.Conn) *clientWriter {
	cw := &clientWriter{
		id:     uuid.New(),
		conn:   conn,
		sendCh: make(chan []byte, messageBufferSize),
		done:   make(chan struct{}),
	}
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	for {
		select {
		case msg, ok := <-cw.sendCh:
			if !ok {
				return
			}
			cw.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cw.done:
			return
		}
	}
}

func (cw *clientWriter) stop() {
	close(cw.done)
	cw.conn.Close()
}

// --- Hub ---

// Hub owns the set of open viewer connections and fans each event out to all
// of them. It runs as a single goroutine processing commands in order, so the
// connection set is never touched concurrently. Delivery is best-effort and
// at-most-once per connection: a failed or slow connection is dropped and
// never blocks the others.
type Hub struct {
	cmdCh    chan hubCmd
	clients  map[*websocket.Conn]*clientWriter
	log      *logrus.Logger
	stopOnce sync.Once
	stopped  bool // owned by the run goroutine
}

func NewHub(logger *logrus.Logger) *Hub {
	h := &Hub{
		cmdCh:   make(chan hubCmd, 256),
		clients: make(map[*websocket.Conn]*clientWriter),
		log:     logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdRegister:
			h.handleRegister(c.conn)
		case cmdUnregister:
			h.handleUnregister(c.conn)
		case cmdBroadcast:
			h.handleBroadcast(c.data)
		case cmdClientCount:
			c.replyCh <- len(h.clients)
		case cmdStop:
			h.handleStop()
			close(c.doneCh)
			h.stopped = true
		}
	}
}

func (h *Hub) handleRegister(conn *websocket.Conn) {
	if h.stopped {
		conn.Close()
		return
	}
	cw := newClientWriter(conn)
	h.clients[conn] = cw
	metrics.ConnectedViewers.Set(float64(len(h.clients)))
	h.log.WithField("client_id", cw.id).Infof("viewer connected (total: %d)", len(h.clients))
}

func (h *Hub) handleUnregister(conn *websocket.Conn) {
	cw, exists := h.clients[conn]
	if !exists {
		return
	}
	cw.stop()
	delete(h.clients, conn)
	metrics.ConnectedViewers.Set(float64(len(h.clients)))
	h.log.WithField("client_id", cw.id).Infof("viewer disconnected (remaining: %d)", len(h.clients))
}

func (h *Hub) handleBroadcast(data []byte) {
	if h.stopped {
		return
	}
	var failed []*websocket.Conn
	for conn, cw := range h.clients {
		select {
		case cw.sendCh <- data:
		default:
			// send buffer full, the connection is stalled
			failed = append(failed, conn)
		}
	}

	for _, conn := range failed {
		metrics.BroadcastSendFailures.Inc()
		h.log.WithField("client_id", h.clients[conn].id).Warn("dropping stalled viewer connection")
		h.handleUnregister(conn)
	}

	metrics.EventsBroadcast.Inc()
}

func (h *Hub) handleStop() {
	for conn, cw := range h.clients {
		cw.stop()
		delete(h.clients, conn)
	}
	metrics.ConnectedViewers.Set(0)
}

// --- Public API ---

// Register adds an open connection to the fan-out set.
func (h *Hub) Register(conn *websocket.Conn) {
	h.cmdCh <- cmdRegister{conn: conn}
}

// Unregister removes a connection and closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.cmdCh <- cmdUnregister{conn: conn}
}

// Broadcast queues one wire payload for delivery to every open connection.
func (h *Hub) Broadcast(data []byte) {
	h.cmdCh <- cmdBroadcast{data: data}
}

// ClientCount returns the number of open viewer connections.
func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- cmdClientCount{replyCh: replyCh}
	return <-replyCh
}

// Stop closes every connection and empties the fan-out set. It blocks until
// the teardown has completed and is safe to call more than once. The hub
// keeps consuming commands afterwards so lingering connection handlers can
// still call Register and Unregister; late registrations are closed
// immediately.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		doneCh := make(chan struct{})
		h.cmdCh <- cmdStop{doneCh: doneCh}
		<-doneCh
	})
}
