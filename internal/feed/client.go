// Package feed provides the WebSocket client that consumes the push-based
// price feed and hands ticks to the session via the SPSC ring. The wire
// format is one JSON model.Tick per message:
//
//	{"symbol":"AAPL","time":1717000000,"value":187.32}
//
// The client reconnects with exponential backoff; the feed is push-only and
// unauthenticated.
package feed

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"time"

	"tradeboard/internal/model"
	"tradeboard/internal/ringbuf"

	"github.com/gorilla/websocket"
)

// Config holds configuration for the feed client.
type Config struct {
	// URL of the price feed server, e.g. "ws://localhost:9001/ws"
	URL string

	// ReconnectDelay is the initial delay before reconnection attempts.
	// Defaults to 2 seconds if zero.
	ReconnectDelay time.Duration

	// MaxReconnectDelay caps the exponential backoff. Defaults to 30s.
	MaxReconnectDelay time.Duration
}

func (c *Config) defaults() {
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = 2 * time.Second
	}
	if c.MaxReconnectDelay == 0 {
		c.MaxReconnectDelay = 30 * time.Second
	}
}

// Client connects to the feed and pushes ticks into the ring.
type Client struct {
	cfg Config

	// Optional hooks for metrics and health reporting.
	OnReconnect func()
	OnConnected func(bool)
	OnOverflow  func()
}

// New creates a feed Client. Returns an error if the URL is unparseable.
func New(cfg Config) (*Client, error) {
	cfg.defaults()
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, err
	}
	return &Client{cfg: cfg}, nil
}

// Start connects and streams ticks into the ring. Blocks until ctx is
// cancelled. Reconnects automatically on disconnect.
func (c *Client) Start(ctx context.Context, ring *ringbuf.Ring) error {
	delay := c.cfg.ReconnectDelay

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := c.runOnce(ctx, ring)
		if err == nil {
			// Context cancelled cleanly
			return nil
		}

		log.Printf("[feed] disconnected (%v), reconnecting in %s...", err, delay)
		if c.OnConnected != nil {
			c.OnConnected(false)
		}
		if c.OnReconnect != nil {
			c.OnReconnect()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		// Exponential backoff
		delay *= 2
		if delay > c.cfg.MaxReconnectDelay {
			delay = c.cfg.MaxReconnectDelay
		}
	}
}

// runOnce makes a single connection attempt and reads until disconnect or
// ctx cancel.
func (c *Client) runOnce(ctx context.Context, ring *ringbuf.Ring) error {
	dialer := websocket.DefaultDialer
	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Printf("[feed] connected to %s", c.cfg.URL)
	if c.OnConnected != nil {
		c.OnConnected(true)
	}

	// Async context watcher closes the connection when ctx is cancelled.
	go func() {
		<-ctx.Done()
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"))
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		var tick model.Tick
		if err := json.Unmarshal(raw, &tick); err != nil {
			log.Printf("[feed] parse error: %v (raw: %s)", err, raw)
			continue
		}

		if tick.Symbol == "" {
			log.Printf("[feed] skipping tick with empty symbol")
			continue
		}

		if !ring.Push(tick) {
			if c.OnOverflow != nil {
				c.OnOverflow()
			}
			log.Println("[feed] ring full, dropping tick")
		}
	}
}
