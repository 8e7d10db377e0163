package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"atendimento-relay/internal/events"
	"atendimento-relay/internal/services"
	relay_errors "atendimento-relay/pkg/errors"

	"go.uber.org/zap"
)

const notFoundMessage = "Atendimento não encontrado"

// EventSink receives a copy of every global broadcast. *redis.EventMirror implements it.
type EventSink interface {
	Enqueue(event, atendimentoID string, payload []byte) bool
}

type HubOptions struct {
	EnableTestEvents bool
	// SimulatorEvery injects a canned client message into a waiting conversation; zero disables it.
	SimulatorEvery time.Duration
	SendBuffer     int
	Sink           EventSink
	Logger         *zap.Logger
}

// clientFrame is either an inbound frame or, with disconnect set, the end of the connection.
// Both share one queue so a disconnect is never handled ahead of frames read before it.
type clientFrame struct {
	client     *Client
	raw        []byte
	disconnect bool
}

type route struct {
	agentOnly bool
	testOnly  bool
	handle    func(c *Client, in events.Inbound)
}

// Hub owns every connection and processes registrations, inbound frames and disconnects
// on a single goroutine, so events are applied to the registry in one timeline.
type Hub struct {
	service *services.AtendimentoService
	opts    HubOptions
	logger  *WebSocketLogger

	clients map[string]*Client
	rooms   map[string]map[string]*Client
	routes  map[string]route

	register chan *Client
	inbound  chan clientFrame

	connections atomic.Int64
	done        chan struct{}
	doneOnce    sync.Once
}

// NewHub creates a new Hub
func NewHub(service *services.AtendimentoService, opts HubOptions) *Hub {
	h := &Hub{
		service:    service,
		opts:       opts,
		logger:     NewWebSocketLogger(opts.Logger),
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register: make(chan *Client, 256),
		inbound:  make(chan clientFrame, 1024),
		done:     make(chan struct{}),
	}
	h.routes = map[string]route{
		events.EventAtendimentoCreate:     {handle: h.onCreateAtendimento},
		events.EventMessageSend:           {handle: h.onSendMessage},
		events.EventAgentJoin:             {agentOnly: true, handle: h.onAgentJoin},
		events.EventAtendimentoJoin:       {agentOnly: true, handle: h.onJoinAtendimento},
		events.EventAgentTyping:           {agentOnly: true, handle: h.onAgentTyping},
		events.EventAtendimentoClose:      {agentOnly: true, handle: h.onCloseAtendimento},
		events.EventSimulateClientMessage: {testOnly: true, handle: h.onSimulateClientMessage},
	}
	return h
}

// Run processes hub traffic until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()

	var tick <-chan time.Time
	if h.opts.SimulatorEvery > 0 {
		ticker := time.NewTicker(h.opts.SimulatorEvery)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case client := <-h.register:
			h.handleRegister(client)

		case f := <-h.inbound:
			if f.disconnect {
				h.handleUnregister(f.client)
			} else {
				h.handleFrame(f.client, f.raw)
			}

		case <-tick:
			h.simulateTick()
		}
	}
}

// Register queues an admitted client. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister queues the disconnect behind every frame c already submitted.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.inbound <- clientFrame{client: c, disconnect: true}:
	case <-h.done:
	}
}

func (h *Hub) submit(c *Client, raw []byte) bool {
	select {
	case h.inbound <- clientFrame{client: c, raw: raw}:
		return true
	case <-h.done:
		return false
	}
}

// ConnectionCount is safe to call from any goroutine.
func (h *Hub) ConnectionCount() int {
	return int(h.connections.Load())
}

func (h *Hub) shutdown() {
	h.doneOnce.Do(func() {
		close(h.done)
		for _, c := range h.clients {
			h.closeClient(c)
		}
		h.clients = make(map[string]*Client)
		h.rooms = make(map[string]map[string]*Client)
		h.connections.Store(0)
	})
}

func (h *Hub) handleRegister(c *Client) {
	h.clients[c.id] = c
	h.connections.Add(1)

	if c.identity.IsAgent {
		h.logger.Info("agent connected", c, zap.String("agent_name", c.identity.AgentName))
	} else {
		h.logger.Info("client connected", c)
	}

	c.start()
}

func (h *Hub) handleUnregister(c *Client) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	h.connections.Add(-1)
	for room := range c.rooms {
		h.leaveRoom(c, room)
	}
	h.closeClient(c)

	h.safely(c, events.EventDisconnect, func() { h.onDisconnect(c) })
	h.logger.Info("client disconnected", c)
}

func (h *Hub) closeClient(c *Client) {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (h *Hub) handleFrame(c *Client, raw []byte) {
	if c.closed {
		return
	}

	env, err := events.DecodeEnvelope(raw)
	if err != nil {
		h.logger.Warn("invalid frame", c, zap.Error(err))
		h.emitError(c, err)
		return
	}

	r, ok := h.routes[env.Event]
	if !ok {
		h.logger.Warn("unknown inbound event", c, zap.String("inbound", env.Event))
		h.emitError(c, fmt.Errorf("unknown event %q", env.Event))
		return
	}
	if r.agentOnly && !c.identity.IsAgent {
		h.logger.Debug("agent event ignored for client connection", c, zap.String("inbound", env.Event))
		return
	}
	if r.testOnly && !h.opts.EnableTestEvents {
		h.logger.Debug("test event ignored", c, zap.String("inbound", env.Event))
		return
	}
	if !c.rateLimiter.Allow(env.Event) {
		h.logger.Warn("rate limit exceeded", c, zap.String("inbound", env.Event))
		return
	}

	in, err := events.DecodeInbound(env)
	if err != nil {
		h.logger.Warn("invalid payload", c, zap.String("inbound", env.Event), zap.Error(err))
		h.emitError(c, err)
		return
	}

	h.safely(c, env.Event, func() { r.handle(c, in) })
}

// safely keeps a panicking handler from taking the event loop down with it.
func (h *Hub) safely(c *Client, event string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("handler panic", c, fmt.Errorf("%v", rec), zap.String("inbound", event))
		}
	}()
	fn()
}

func (h *Hub) joinRoom(c *Client, atendimentoID string) {
	room := events.Room(atendimentoID)
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[c.id] = c
	c.rooms[room] = true
}

func (h *Hub) leaveRoom(c *Client, room string) {
	delete(c.rooms, room)
	if members, ok := h.rooms[room]; ok {
		delete(members, c.id)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) encode(event string, data any) ([]byte, bool) {
	frame, err := events.Encode(event, data)
	if err != nil {
		h.logger.Error("encode outbound event", nil, err, zap.String("outbound", event))
		return nil, false
	}
	return frame, true
}

// emit sends an event to one connection.
func (h *Hub) emit(c *Client, event string, data any) {
	if frame, ok := h.encode(event, data); ok {
		c.enqueue(frame)
	}
}

func (h *Hub) emitError(c *Client, err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, relay_errors.ErrNotFound):
		msg = notFoundMessage
	case errors.Is(err, relay_errors.ErrInvalidInput):
		msg = strings.TrimSuffix(msg, ": "+relay_errors.ErrInvalidInput.Error())
	}
	h.emit(c, events.EventError, events.ErrorPayload{Message: msg})
}

// broadcastAll sends an event to every registered connection and mirrors it to the sink.
func (h *Hub) broadcastAll(event, atendimentoID string, data any) {
	frame, ok := h.encode(event, data)
	if !ok {
		return
	}
	for _, c := range h.clients {
		c.enqueue(frame)
	}
	if h.opts.Sink != nil && !h.opts.Sink.Enqueue(event, atendimentoID, frame) {
		h.logger.Warn("event mirror queue full", nil, zap.String("outbound", event))
	}
}

// broadcastRoom sends an event to the members of one conversation room, except the given client.
func (h *Hub) broadcastRoom(atendimentoID, event string, data any, except *Client) {
	members := h.rooms[events.Room(atendimentoID)]
	if len(members) == 0 {
		return
	}
	frame, ok := h.encode(event, data)
	if !ok {
		return
	}
	for id, c := range members {
		if except != nil && id == except.id {
			continue
		}
		c.enqueue(frame)
	}
}
