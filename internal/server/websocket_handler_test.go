package server

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"atendimento-relay/config"
	"atendimento-relay/internal/domain"
	"atendimento-relay/internal/events"
	"atendimento-relay/internal/handler"
	"atendimento-relay/internal/repository"
	"atendimento-relay/internal/services"
	"atendimento-relay/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) (*httptest.Server, *services.AtendimentoService) {
	t.Helper()

	svc := services.NewAtendimentoService(repository.NewAtendimentoRepository())
	hub := NewHub(svc, HubOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(done)
	}()

	cfg := &config.Config{AppPort: "0", AppMode: TestMode, CORSOrigins: []string{"*"}}
	srv := New(cfg, logger.NewNop())
	srv.SetupRoutes(&Handlers{
		Atendimento: handler.NewAtendimentoHandler(svc, hub),
		WebSocket:   NewWebSocketHandler(hub, OriginAllowed(cfg.CORSOrigins)),
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-done
	})
	return ts, svc
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func write(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := events.Encode(event, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))
}

// readUntil skips frames until the named event arrives.
func readUntil(t *testing.T, conn *websocket.Conn, event string) events.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var env events.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Event == event {
			return env
		}
	}
}

func TestWebSocket_EndToEnd(t *testing.T) {
	ts, svc := startTestServer(t)

	agent := dial(t, ts, "?token=agent-1&username=Bia")
	write(t, agent, events.EventAgentJoin, map[string]any{"agentId": "agent-1"})
	readUntil(t, agent, events.EventAtendimentosList)

	client := dial(t, ts, "")
	write(t, client, events.EventAtendimentoCreate, map[string]any{
		"clientName": "Ana", "email": "ana@x.com", "source": "web",
	})
	created := payload[events.CreatedPayload](t, readUntil(t, client, events.EventAtendimentoCreated))
	require.NotEmpty(t, created.ID)

	announced := payload[domain.Atendimento](t, readUntil(t, agent, events.EventAtendimentoNew))
	assert.Equal(t, created.ID, announced.ID)

	write(t, client, events.EventMessageSend, map[string]any{
		"atendimentoId": created.ID, "content": "hi", "sender": "client",
	})
	readUntil(t, client, events.EventMessageNew)
	readUntil(t, agent, events.EventAtendimentoUpdated)

	write(t, agent, events.EventAtendimentoJoin, map[string]any{"atendimentoId": created.ID})
	history := payload[events.MessageHistoryPayload](t, readUntil(t, agent, events.EventAtendimentoMessages))
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "hi", history.Messages[0].Content)

	accepted := payload[events.AcceptedPayload](t, readUntil(t, client, events.EventAtendimentoAccepted))
	assert.Equal(t, "Bia", accepted.AgentName)

	agents := svc.ListAgents()
	require.Len(t, agents, 1)
	assert.Equal(t, "Bia", agents[0].Username)

	require.NoError(t, agent.Close())
	require.Eventually(t, func() bool { return len(svc.ListAgents()) == 0 }, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, client.Close())
	require.Eventually(t, func() bool {
		a, err := svc.GetAtendimento(created.ID)
		return err == nil && !a.ClientConnected
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWebSocket_HTTPRoutes(t *testing.T) {
	ts, svc := startTestServer(t)
	_, err := svc.CreateAtendimento(services.CreateAtendimentoInput{ClientName: "Ana", ClientEmail: "ana@x.com", Source: "web"})
	require.NoError(t, err)

	for _, path := range []string{"/", "/health", "/stats", "/atendimentos", "/atendimentos/stats"} {
		res, err := ts.Client().Get(ts.URL + path)
		require.NoError(t, err, path)
		assert.Equal(t, 200, res.StatusCode, path)
		assert.NotEmpty(t, res.Header.Get("X-Request-Id"), path)
		res.Body.Close()
	}
}

func TestWebSocket_FramesBeforeCloseAreApplied(t *testing.T) {
	ts, svc := startTestServer(t)

	for trial := range 5 {
		client := dial(t, ts, "")
		write(t, client, events.EventAtendimentoCreate, map[string]any{
			"clientName": "Ana", "email": "ana@x.com", "source": "web",
		})
		id := payload[events.CreatedPayload](t, readUntil(t, client, events.EventAtendimentoCreated)).ID

		const n = 30
		for i := range n {
			write(t, client, events.EventMessageSend, map[string]any{
				"atendimentoId": id, "content": fmt.Sprintf("msg %d", i), "sender": "client",
			})
		}
		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		require.NoError(t, client.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second)))

		require.Eventually(t, func() bool {
			a, err := svc.GetAtendimento(id)
			return err == nil && !a.ClientConnected
		}, 3*time.Second, 10*time.Millisecond, "trial %d", trial)

		a, err := svc.GetAtendimento(id)
		require.NoError(t, err)
		assert.Len(t, a.Messages, n, "trial %d", trial)
	}
}
