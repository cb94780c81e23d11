// Package gateway is the browser-facing surface: a WebSocket hub that fans
// out price and derived-series updates, and the REST endpoints for indicator
// CRUD, agent tool calls, and history loading. The hub keeps the latest
// payload per channel so a fresh client gets current state immediately.
package gateway

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"tradeboard/internal/metrics"
	"tradeboard/internal/session"

	"github.com/gorilla/websocket"
)

// Broadcast channels pushed to browser clients.
const (
	ChannelPrice  = "price"
	ChannelSeries = "series"
)

// Hub manages WebSocket clients and update fan-out.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	latest  map[string]latestEntry
	seq     int64

	met *metrics.Metrics
}

type latestEntry struct {
	Data json.RawMessage
	TS   time.Time
}

// NewHub creates a Hub. met may be nil.
func NewHub(met *metrics.Metrics) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		latest:  make(map[string]latestEntry),
		met:     met,
	}
}

// HandleUpdate publishes one session recompute result to all clients:
// the accepted price point on the price channel, the full derived-series
// output on the series channel. Wired as session.OnUpdate.
func (h *Hub) HandleUpdate(u session.Update) {
	if price, err := json.Marshal(pricePayload{Symbol: u.Symbol, Point: u.Price}); err == nil {
		h.Broadcast(ChannelPrice, price)
	}
	if series, err := json.Marshal(seriesPayload{Symbol: u.Symbol, Series: u.Series}); err == nil {
		h.Broadcast(ChannelSeries, series)
	}
}

// Broadcast sends data on a channel to every connected client. The envelope
// is hand-crafted JSON: {"channel":"...","data":...,"ts":"...","seq":N}.
func (h *Hub) Broadcast(channel string, data []byte) {
	now := time.Now().UTC()

	h.mu.Lock()
	h.latest[channel] = latestEntry{Data: data, TS: now}
	h.seq++
	seq := h.seq
	h.mu.Unlock()

	buf := buildEnvelope(channel, data, now, seq)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- buf:
		default:
		}
	}
}

// buildEnvelope constructs the wire envelope without json.Marshal; data must
// already be valid JSON.
func buildEnvelope(channel string, data []byte, now time.Time, seq int64) []byte {
	buf := make([]byte, 0, len(channel)+len(data)+128)
	buf = append(buf, `{"channel":"`...)
	buf = append(buf, channel...)
	buf = append(buf, `","data":`...)
	buf = append(buf, data...)
	buf = append(buf, `,"ts":"`...)
	buf = now.AppendFormat(buf, time.RFC3339Nano)
	buf = append(buf, `","seq":`...)
	buf = strconv.AppendInt(buf, seq, 10)
	buf = append(buf, '}')
	return buf
}

// HandleWSRequest registers an upgraded connection and starts its pumps.
func (h *Hub) HandleWSRequest(conn *websocket.Conn) {
	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}

	conn.EnableWriteCompression(true)

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	if h.met != nil {
		h.met.WSClients.Set(float64(count))
	}
	log.Printf("[gateway] ws client connected (%d total)", count)

	go client.sendInitialState()
	go client.writePump()
	go client.readPump()
}

// RemoveClient removes a client from the hub.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()
	close(c.send)

	if h.met != nil {
		h.met.WSClients.Set(float64(count))
	}
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
