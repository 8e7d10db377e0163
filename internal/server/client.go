package server

import (
	"bytes"
	"sync"
	"sync/atomic"
	"time"

	"atendimento-relay/internal/events"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Rate limits per minute
type RateLimits struct {
	MaxTypingEvents int
	MaxMessages     int
	MaxCreates      int
}

var DefaultRateLimits = RateLimits{
	MaxTypingEvents: 120,
	MaxMessages:     120,
	MaxCreates:      30,
}

// ClientRateLimiter tracks rate limits per client
type ClientRateLimiter struct {
	limits       RateLimits
	typingTokens int
	messageToken int
	createTokens int
	lastRefill   time.Time
	now          func() time.Time
	mu           sync.Mutex
}

func NewClientRateLimiter(limits RateLimits) *ClientRateLimiter {
	rl := &ClientRateLimiter{limits: limits, now: time.Now}
	rl.refillTokens()
	rl.lastRefill = rl.now()
	return rl
}

// Allow consumes one token for the event. Events without a budget are always allowed.
func (rl *ClientRateLimiter) Allow(event string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastRefill) >= time.Minute {
		rl.refillTokens()
		rl.lastRefill = now
	}

	var tokens *int
	switch event {
	case events.EventAgentTyping:
		tokens = &rl.typingTokens
	case events.EventMessageSend:
		tokens = &rl.messageToken
	case events.EventAtendimentoCreate:
		tokens = &rl.createTokens
	default:
		return true
	}

	if *tokens > 0 {
		*tokens--
		return true
	}
	return false
}

func (rl *ClientRateLimiter) refillTokens() {
	rl.typingTokens = rl.limits.MaxTypingEvents
	rl.messageToken = rl.limits.MaxMessages
	rl.createTokens = rl.limits.MaxCreates
}

// Client represents a single WebSocket connection.
// rooms, atendimentoID and closed belong to the hub loop and are never touched by the pumps.
type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	send         chan []byte
	id           string
	identity     Identity
	rooms        map[string]bool
	rateLimiter  *ClientRateLimiter
	connectedAt  time.Time
	lastActivity atomic.Int64

	// conversation opened by this client connection, used on disconnect
	atendimentoID string
	// agent id announced with agent:join, key of the presence entry
	presenceID string
	closed     bool

	startOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, identity Identity, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	now := time.Now()
	c := &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		id:          uuid.NewString(),
		identity:    identity,
		rooms:       make(map[string]bool),
		rateLimiter: NewClientRateLimiter(DefaultRateLimits),
		connectedAt: now,
	}
	c.lastActivity.Store(now.UnixNano())
	return c
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) Identity() Identity {
	return c.identity
}

// start launches the pumps. Calling it again is a no-op.
func (c *Client) start() {
	c.startOnce.Do(func() {
		if c.conn == nil {
			return
		}
		go c.writePump()
		go c.readPump()
	})
}

// enqueue hands a frame to the write pump without blocking the hub loop.
func (c *Client) enqueue(frame []byte) bool {
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		c.hub.logger.Warn("client send buffer full", c, zap.Int("buffer", cap(c.send)))
		return false
	}
}

func (c *Client) touch() {
	c.lastActivity.Store(time.Now().UnixNano())
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.touch()
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("websocket unexpected close", c, err)
			}
			break
		}

		message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))
		c.touch()

		if !c.hub.submit(c, message) {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// one frame per message, peers parse each text frame as a single envelope
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

			if time.Since(time.Unix(0, c.lastActivity.Load())) > pongWait*2 {
				c.hub.logger.Info("client idle timeout", c)
				return
			}
		}
	}
}
