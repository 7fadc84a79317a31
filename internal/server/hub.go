package server

import (
	"sync"

	"github.com/lawnchairsociety/hexcrawl/internal/dungeon"
	"github.com/lawnchairsociety/hexcrawl/internal/logger"
)

// hub fans generator events out to stream clients. history holds every
// room and hallway frame published so far, so a late subscriber can be
// brought up to date under the same lock that orders live frames.
type hub struct {
	mu      sync.Mutex
	history [][]byte
	rooms   int
	clients map[string]*WebSocketClient
	closed  bool
}

func newHub() *hub {
	return &hub{clients: make(map[string]*WebSocketClient)}
}

// seed records the rooms and hallways already in w.
func (h *hub) seed(w *dungeon.World) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, r := range w.Rooms() {
		h.history = append(h.history, encode(Message{Type: dungeon.EventRoomSpawned.String(), Ring: r.Ring, Room: newRoomView(r)}))
		h.rooms++
	}
	for _, hw := range w.Hallways() {
		ring := max(hw.From.Ring, hw.To.Ring)
		h.history = append(h.history, encode(Message{Type: dungeon.EventHallwaySpawned.String(), Ring: ring, Hallway: newHallwayView(hw)}))
	}
}

// publish is the generator listener.
func (h *hub) publish(ev dungeon.Event) {
	frame := encode(messageFor(ev))

	h.mu.Lock()
	defer h.mu.Unlock()

	switch ev.Kind {
	case dungeon.EventRoomSpawned:
		h.history = append(h.history, frame)
		h.rooms++
	case dungeon.EventHallwaySpawned:
		h.history = append(h.history, frame)
	}
	for id, c := range h.clients {
		if !c.enqueue(frame) {
			logger.Warning("Dropping slow stream client", "session", id, "remote_addr", c.RemoteAddr())
			delete(h.clients, id)
			c.closeSend()
		}
	}
}

// register replays history to c and adds it to the live set. It reports
// false once the hub is closed.
func (h *hub) register(c *WebSocketClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	c.reserve(len(h.history) + 1)
	for _, frame := range h.history {
		c.enqueue(frame)
	}
	c.enqueue(encode(Message{Type: typeSynced, Rooms: h.rooms, Hallways: len(h.history) - h.rooms}))
	h.clients[c.id] = c
	return true
}

func (h *hub) unregister(c *WebSocketClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		c.closeSend()
	}
}

// isClosed reports whether close has run.
func (h *hub) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// count returns the number of live clients.
func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// close disconnects every client and refuses new ones.
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		c.closeSend()
	}
}
