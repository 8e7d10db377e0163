package redis

import (
	"context"
	"sync/atomic"
	"time"

	"atendimento-relay/internal/events"
	"atendimento-relay/pkg/logger"
)

// ChannelPublisher is satisfied by *Publisher.
type ChannelPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type mirroredEvent struct {
	event         string
	atendimentoID string
	payload       []byte
}

// EventMirror copies outbound events to Redis pub/sub for external dashboards.
// Enqueue never blocks; publishing happens on the Run goroutine and failures are
// only logged, there is no retry.
type EventMirror struct {
	publisher      ChannelPublisher
	resolver       events.ChannelResolver
	queue          chan mirroredEvent
	publishTimeout time.Duration
	logger         *logger.Logger
	dropped        atomic.Int64
}

func NewEventMirror(publisher ChannelPublisher, resolver events.ChannelResolver, l *logger.Logger, size int) *EventMirror {
	if size <= 0 {
		size = 1024
	}
	return &EventMirror{
		publisher:      publisher,
		resolver:       resolver,
		queue:          make(chan mirroredEvent, size),
		publishTimeout: 2 * time.Second,
		logger:         l,
	}
}

// Enqueue schedules payload for publication. It reports false when the queue is full.
func (m *EventMirror) Enqueue(event, atendimentoID string, payload []byte) bool {
	select {
	case m.queue <- mirroredEvent{event: event, atendimentoID: atendimentoID, payload: payload}:
		return true
	default:
		m.dropped.Add(1)
		return false
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (m *EventMirror) Dropped() int64 {
	return m.dropped.Load()
}

// Run publishes queued events until ctx is cancelled.
func (m *EventMirror) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-m.queue:
			m.publish(ctx, ev)
		}
	}
}

func (m *EventMirror) publish(ctx context.Context, ev mirroredEvent) {
	pubCtx, cancel := context.WithTimeout(ctx, m.publishTimeout)
	defer cancel()

	for _, channel := range m.resolver.ResolveChannels(ev.event, ev.atendimentoID) {
		if err := m.publisher.Publish(pubCtx, channel, ev.payload); err != nil {
			m.logger.Warnf("failed to mirror %s to %s: %v", ev.event, channel, err)
		}
	}
}
