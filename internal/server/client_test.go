package server

import (
	"testing"
	"time"

	"atendimento-relay/internal/events"

	"github.com/stretchr/testify/assert"
)

func TestClientRateLimiter_BudgetsPerEvent(t *testing.T) {
	now := time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC)
	rl := NewClientRateLimiter(RateLimits{MaxTypingEvents: 2, MaxMessages: 1, MaxCreates: 1})
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow(events.EventAgentTyping))
	assert.True(t, rl.Allow(events.EventAgentTyping))
	assert.False(t, rl.Allow(events.EventAgentTyping))

	assert.True(t, rl.Allow(events.EventMessageSend))
	assert.False(t, rl.Allow(events.EventMessageSend))

	assert.True(t, rl.Allow(events.EventAtendimentoCreate))
	assert.False(t, rl.Allow(events.EventAtendimentoCreate))

	// events without a budget are never limited
	for range 10 {
		assert.True(t, rl.Allow(events.EventAtendimentoJoin))
	}
}

func TestClientRateLimiter_RefillsAfterAMinute(t *testing.T) {
	now := time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC)
	rl := NewClientRateLimiter(RateLimits{MaxTypingEvents: 1, MaxMessages: 1, MaxCreates: 1})
	rl.lastRefill = now
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow(events.EventMessageSend))
	assert.False(t, rl.Allow(events.EventMessageSend))

	now = now.Add(59 * time.Second)
	assert.False(t, rl.Allow(events.EventMessageSend))

	now = now.Add(time.Second)
	assert.True(t, rl.Allow(events.EventMessageSend))
}

func TestClient_EnqueueDropsWhenBufferFull(t *testing.T) {
	h := NewHub(nil, HubOptions{})
	c := NewClient(h, nil, Identity{}, 1)

	assert.True(t, c.enqueue([]byte("a")))
	assert.False(t, c.enqueue([]byte("b")))
	assert.Equal(t, []byte("a"), <-c.send)
}

func TestClient_EnqueueAfterCloseIsNoop(t *testing.T) {
	h := NewHub(nil, HubOptions{})
	c := NewClient(h, nil, Identity{}, 4)
	h.handleRegister(c)
	h.handleUnregister(c)

	assert.NotPanics(t, func() { assert.False(t, c.enqueue([]byte("late"))) })
}

func TestClient_StartIsIdempotent(t *testing.T) {
	h := NewHub(nil, HubOptions{})
	c := NewClient(h, nil, Identity{}, 4)

	assert.NotPanics(t, func() {
		c.start()
		c.start()
	})
}
