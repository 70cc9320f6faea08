// Package channel owns the persistent websocket to the backend.
//
// One Client keeps exactly one logical connection alive for the life of the
// process: it dials eagerly on Start, sends a literal "ping" heartbeat every
// 30s while open, and reconnects forever on loss with capped exponential
// backoff (3s, 6s, 12s, 24s, 48s, 60s, 60s, ...). Inbound frames are parsed
// as {"type": ..., "data": {...}} messages and dispatched synchronously, in
// arrival order, to the single handler registered per type. Unparseable
// frames are dropped, and "pong" replies are consumed internally.
package channel

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ConnState is the channel lifecycle state
type ConnState int

const (
	StateClosed ConnState = iota
	StateConnecting
	StateOpen
)

// String returns the lowercase state name
func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

const (
	baseDelay         = 3 * time.Second
	capDelay          = 60 * time.Second
	heartbeatInterval = 30 * time.Second
	heartbeatToken    = "ping"
)

// Backoff returns the reconnect delay for the given attempt count:
// min(3s * 2^attempt, 60s).
func Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// 3s * 2^5 = 96s already exceeds the cap
	if attempt >= 5 {
		return capDelay
	}
	return baseDelay << uint(attempt)
}

// Message is one push frame from the backend
type Message struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// Handler consumes push messages of one type
type Handler func(Message)

// Client maintains the websocket connection and dispatches messages
type Client struct {
	url    string
	dialer *websocket.Dialer

	mu           sync.RWMutex
	state        ConnState
	attempts     int
	lastOpenedAt time.Time
	conn         *websocket.Conn
	handlers     map[string]Handler
	onConnected  func(bool)

	stopCh   chan struct{}
	stopOnce sync.Once
	started  bool
}

// NewClient creates a channel client for the given websocket URL
func NewClient(url string) *Client {
	return &Client{
		url:      url,
		dialer:   websocket.DefaultDialer,
		state:    StateClosed,
		handlers: make(map[string]Handler),
		stopCh:   make(chan struct{}),
	}
}

// Subscribe registers the handler for one message type.
// Exactly one handler per type; the last registration wins.
// Must be called before Start.
func (c *Client) Subscribe(msgType string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[msgType] = h
}

// OnConnected registers the connectivity observer. It fires with true/false
// atomically with the Open/Closed transition. Must be called before Start.
func (c *Client) OnConnected(f func(bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnected = f
}

// Start begins connecting. Safe to call once.
func (c *Client) Start() {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	go c.run()
}

// Close tears the channel down: the live connection is closed and any pending
// reconnect timer is cancelled, so no further connection attempt happens.
func (c *Client) Close() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
	})
}

// State returns the current lifecycle state
func (c *Client) State() ConnState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Connected reports whether the channel is open
func (c *Client) Connected() bool {
	return c.State() == StateOpen
}

// Attempts returns the current reconnect attempt count
func (c *Client) Attempts() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.attempts
}

// LastOpenedAt returns when the channel last reached Open
func (c *Client) LastOpenedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastOpenedAt
}

// run is the connection loop: dial, read until failure, back off, repeat
func (c *Client) run() {
	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		c.setState(StateConnecting)

		conn, _, err := c.dialer.Dial(c.url, nil)
		if err != nil {
			log.Warn().Err(err).Str("url", c.url).Msg("Channel dial failed")
			c.setState(StateClosed)
			if !c.sleepBackoff() {
				return
			}
			continue
		}

		c.opened(conn)
		log.Info().Str("url", c.url).Msg("🔌 Channel connected")

		hbDone := make(chan struct{})
		go c.heartbeat(conn, hbDone)

		c.readLoop(conn)

		close(hbDone)
		conn.Close()
		c.closed()

		select {
		case <-c.stopCh:
			return
		default:
		}

		log.Warn().Msg("Channel disconnected, reconnecting...")
		if !c.sleepBackoff() {
			return
		}
	}
}

// opened records the Open transition: attempts reset, connectivity flips true
func (c *Client) opened(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.state = StateOpen
	c.attempts = 0
	c.lastOpenedAt = time.Now()
	observer := c.onConnected
	c.mu.Unlock()

	if observer != nil {
		observer(true)
	}
}

// closed records the Closed transition and flips connectivity false
func (c *Client) closed() {
	c.mu.Lock()
	c.conn = nil
	c.state = StateClosed
	observer := c.onConnected
	c.mu.Unlock()

	if observer != nil {
		observer(false)
	}
}

func (c *Client) setState(s ConnState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// sleepBackoff waits out the reconnect delay for the current attempt count,
// then increments it. Returns false if the client was closed while waiting.
func (c *Client) sleepBackoff() bool {
	c.mu.Lock()
	delay := Backoff(c.attempts)
	c.attempts++
	c.mu.Unlock()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-c.stopCh:
		return false
	}
}

// heartbeat sends the literal ping token every 30s while the connection lives
func (c *Client) heartbeat(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.TextMessage, []byte(heartbeatToken)); err != nil {
				log.Debug().Err(err).Msg("Heartbeat write failed")
				return
			}
		}
	}
}

// readLoop reads frames until the connection dies. A read error of any kind
// is treated as a close; the caller handles reconnect.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		c.dispatch(data)
	}
}

// dispatch parses one frame and hands it to the registered handler.
// Malformed frames are dropped without surfacing an error; pong replies are
// consumed here and never forwarded.
func (c *Client) dispatch(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
		log.Debug().Msg("Dropping unparseable frame")
		return
	}

	if msg.Type == "pong" {
		return
	}

	c.mu.RLock()
	h := c.handlers[msg.Type]
	c.mu.RUnlock()

	if h != nil {
		h(msg)
	}
}
