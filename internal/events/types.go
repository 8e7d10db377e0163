package events

// Inbound events, sent by clients and agents
const (
	EventAtendimentoCreate     = "atendimento:create"
	EventMessageSend           = "message:send"
	EventAgentJoin             = "agent:join"
	EventAtendimentoJoin       = "atendimento:join"
	EventAgentTyping           = "agent:typing"
	EventAtendimentoClose      = "atendimento:close"
	EventSimulateClientMessage = "test:simulate-client-message"
)

// Outbound events
const (
	EventAtendimentoCreated  = "atendimento:created"
	EventAtendimentoNew      = "atendimento:new"
	EventMessageNew          = "message:new"
	EventAtendimentoUpdated  = "atendimento:updated"
	EventAtendimentosList    = "atendimentos:list"
	EventAtendimentoMessages = "atendimento:messages"
	EventAtendimentoAccepted = "atendimento:accepted"
	EventAtendimentoClosed   = "atendimento:closed"
	EventError               = "error"
)

// Pseudo event dispatched by the hub when a connection goes away
const EventDisconnect = "disconnect"

// Redis channel prefixes used by the event mirror
const (
	ChannelPrefixAtendimento = "channel:atendimento:"
)

// RoomPrefix names the broadcast group of one conversation.
const RoomPrefix = "atendimento:"

func Room(atendimentoID string) string {
	return RoomPrefix + atendimentoID
}
