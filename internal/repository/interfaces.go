package repository

import "atendimento-relay/internal/domain"

// AtendimentoRepository owns every conversation and the agent presence table.
// Implementations must be safe for concurrent use and must never hand out
// references into their internal state.
type AtendimentoRepository interface {
	Create(a domain.Atendimento) string
	Get(id string) (domain.Atendimento, error)
	Update(id string, patch domain.AtendimentoPatch) (domain.Atendimento, error)
	AppendMessage(id string, m domain.Message) (domain.Atendimento, error)
	List() []domain.Atendimento
	Count() Counts

	AgentRepository
}

type AgentRepository interface {
	AddAgent(agentID string, p domain.AgentPresence)
	RemoveAgent(agentID string)
	GetAgent(agentID string) (domain.AgentPresence, bool)
	ListAgents() []domain.AgentPresence
	AgentCount() int
}

// Counts is a status breakdown of the stored conversations.
type Counts struct {
	Total   int
	Waiting int
	Active  int
	Closed  int
}
