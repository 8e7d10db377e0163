package events

import (
	"encoding/json"
	"testing"

	"atendimento-relay/internal/domain"
	relay_errors "atendimento-relay/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(event, data string) Envelope {
	return Envelope{Event: event, Data: json.RawMessage(data)}
}

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"event":"agent:join","data":{"agentId":"a1"}}`))
	require.NoError(t, err)
	assert.Equal(t, EventAgentJoin, env.Event)
	assert.JSONEq(t, `{"agentId":"a1"}`, string(env.Data))

	_, err = DecodeEnvelope([]byte(`not json`))
	assert.ErrorIs(t, err, relay_errors.ErrInvalidInput)

	_, err = DecodeEnvelope([]byte(`{"data":{}}`))
	assert.ErrorIs(t, err, relay_errors.ErrInvalidInput)
}

func TestDecodeInbound_Variants(t *testing.T) {
	tests := []struct {
		event string
		data  string
		want  Inbound
	}{
		{EventAtendimentoCreate, `{"clientName":"Ana","email":"ana@x.com","source":"web","autoCreated":true}`,
			&CreateAtendimentoPayload{ClientName: "Ana", Email: "ana@x.com", Source: "web", AutoCreated: true}},
		{EventMessageSend, `{"atendimentoId":"atd_1","content":"hi","sender":"client"}`,
			&SendMessagePayload{AtendimentoID: "atd_1", Content: "hi", Sender: domain.SenderClient}},
		{EventAgentJoin, `{"agentId":"a1"}`, &AgentJoinPayload{AgentID: "a1"}},
		{EventAtendimentoJoin, `{"atendimentoId":"atd_1"}`, &JoinAtendimentoPayload{AtendimentoID: "atd_1"}},
		{EventAgentTyping, `{"atendimentoId":"atd_1"}`, &AgentTypingPayload{AtendimentoID: "atd_1"}},
		{EventAtendimentoClose, `{"atendimentoId":"atd_1"}`, &CloseAtendimentoPayload{AtendimentoID: "atd_1"}},
		{EventSimulateClientMessage, `{"atendimentoId":"atd_1"}`, &SimulateClientMessagePayload{AtendimentoID: "atd_1"}},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			got, err := DecodeInbound(envelope(tt.event, tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.event, got.EventName())
		})
	}
}

func TestDecodeInbound_RejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		env     Envelope
		message string
	}{
		{"unknown event", envelope("atendimento:delete", `{}`), "unknown event"},
		{"missing data", Envelope{Event: EventAgentJoin}, "missing payload"},
		{"null data", envelope(EventAgentJoin, `null`), "missing payload"},
		{"wrong type", envelope(EventAtendimentoJoin, `{"atendimentoId":42}`), "malformed payload"},
		{"missing fields", envelope(EventAtendimentoCreate, `{"clientName":"Ana"}`), "email is required, source is required"},
		{"bad sender", envelope(EventMessageSend, `{"atendimentoId":"atd_1","content":"hi","sender":"system"}`), "sender must be one of [client agent]"},
		{"empty content", envelope(EventMessageSend, `{"atendimentoId":"atd_1","content":"","sender":"client"}`), "content is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeInbound(tt.env)
			require.Error(t, err)
			assert.ErrorIs(t, err, relay_errors.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestEncode(t *testing.T) {
	raw, err := Encode(EventAtendimentoCreated, CreatedPayload{ID: "atd_7"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"atendimento:created","data":{"id":"atd_7"}}`, string(raw))

	_, err = Encode(EventError, make(chan int))
	assert.Error(t, err)
}

func TestHybridChannelResolver(t *testing.T) {
	r := NewHybridChannelResolver("channel:atendimentos")

	assert.Equal(t, []string{"channel:atendimentos"}, r.ResolveChannels(EventAtendimentosList, ""))
	assert.Equal(t,
		[]string{"channel:atendimentos", "channel:atendimento:atd_3"},
		r.ResolveChannels(EventAtendimentoUpdated, "atd_3"))
}

func TestRoom(t *testing.T) {
	assert.Equal(t, "atendimento:atd_1", Room("atd_1"))
}
