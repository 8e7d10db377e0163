package server

import (
	"go.uber.org/zap"
)

// WebSocketLogger provides structured logging for gateway events
type WebSocketLogger struct {
	logger *zap.Logger
}

// NewWebSocketLogger creates a logger scoped to the websocket component.
// A nil base falls back to the global zap logger.
func NewWebSocketLogger(base *zap.Logger) *WebSocketLogger {
	if base == nil {
		base = zap.L()
	}
	return &WebSocketLogger{
		logger: base.With(zap.String("component", "websocket")),
	}
}

func (l *WebSocketLogger) fields(event string, c *Client, extra []zap.Field) []zap.Field {
	all := make([]zap.Field, 0, 4+len(extra))
	all = append(all, zap.String("event", event))
	if c != nil {
		all = append(all, zap.String("connection_id", c.id))
		if c.identity.IsAgent {
			all = append(all, zap.String("agent_id", c.identity.AgentID))
		}
	}
	return append(all, extra...)
}

// Debug logs debug level event
func (l *WebSocketLogger) Debug(event string, c *Client, fields ...zap.Field) {
	l.logger.Debug("websocket_event", l.fields(event, c, fields)...)
}

// Info logs info level event
func (l *WebSocketLogger) Info(event string, c *Client, fields ...zap.Field) {
	l.logger.Info("websocket_event", l.fields(event, c, fields)...)
}

// Error logs error level event
func (l *WebSocketLogger) Error(event string, c *Client, err error, fields ...zap.Field) {
	l.logger.Error("websocket_error", l.fields(event, c, append(fields, zap.Error(err)))...)
}

// Warn logs warning level event
func (l *WebSocketLogger) Warn(event string, c *Client, fields ...zap.Field) {
	l.logger.Warn("websocket_warning", l.fields(event, c, fields)...)
}
