package events

import "atendimento-relay/internal/domain"

type CreatedPayload struct {
	ID string `json:"id"`
}

type MessageHistoryPayload struct {
	AtendimentoID string           `json:"atendimentoId"`
	Messages      []domain.Message `json:"messages"`
}

type AcceptedPayload struct {
	AtendimentoID string `json:"atendimentoId"`
	AgentID       string `json:"agentId"`
	AgentName     string `json:"agentName"`
}

type TypingPayload struct {
	AtendimentoID string `json:"atendimentoId"`
	AgentName     string `json:"agentName"`
}

type ClosedPayload struct {
	AtendimentoID string `json:"atendimentoId"`
	AgentName     string `json:"agentName"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
