package repository

import (
	"fmt"
	"sort"
	"sync"

	"atendimento-relay/internal/domain"
	relay_errors "atendimento-relay/pkg/errors"
)

type memoryAtendimentoRepository struct {
	mu           sync.RWMutex
	lastID       uint64
	atendimentos map[string]*domain.Atendimento
	order        []string
	agents       map[string]domain.AgentPresence
}

func NewAtendimentoRepository() AtendimentoRepository {
	return &memoryAtendimentoRepository{
		atendimentos: make(map[string]*domain.Atendimento),
		agents:       make(map[string]domain.AgentPresence),
	}
}

// Create stores a copy of a under a freshly assigned id. Any id already set on a is ignored.
func (r *memoryAtendimentoRepository) Create(a domain.Atendimento) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	stored := a.Clone()
	stored.ID = fmt.Sprintf("atd_%d", r.lastID)
	for i := range stored.Messages {
		stored.Messages[i].AtendimentoID = stored.ID
	}
	r.atendimentos[stored.ID] = &stored
	r.order = append(r.order, stored.ID)
	return stored.ID
}

func (r *memoryAtendimentoRepository) Get(id string) (domain.Atendimento, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.atendimentos[id]
	if !ok {
		return domain.Atendimento{}, fmt.Errorf("atendimento %q: %w", id, relay_errors.ErrNotFound)
	}
	return a.Clone(), nil
}

func (r *memoryAtendimentoRepository) Update(id string, patch domain.AtendimentoPatch) (domain.Atendimento, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.atendimentos[id]
	if !ok {
		return domain.Atendimento{}, fmt.Errorf("atendimento %q: %w", id, relay_errors.ErrNotFound)
	}
	a.Apply(patch)
	return a.Clone(), nil
}

func (r *memoryAtendimentoRepository) AppendMessage(id string, m domain.Message) (domain.Atendimento, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.atendimentos[id]
	if !ok {
		return domain.Atendimento{}, fmt.Errorf("atendimento %q: %w", id, relay_errors.ErrNotFound)
	}
	m.AtendimentoID = id
	a.ApplyMessage(m)
	return a.Clone(), nil
}

func (r *memoryAtendimentoRepository) List() []domain.Atendimento {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Atendimento, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.atendimentos[id].Clone())
	}
	return out
}

func (r *memoryAtendimentoRepository) Count() Counts {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := Counts{Total: len(r.atendimentos)}
	for _, a := range r.atendimentos {
		switch a.Status {
		case domain.StatusWaiting:
			c.Waiting++
		case domain.StatusActive:
			c.Active++
		case domain.StatusClosed:
			c.Closed++
		}
	}
	return c
}

// AddAgent registers presence for agentID. A second call for the same id replaces the entry.
func (r *memoryAtendimentoRepository) AddAgent(agentID string, p domain.AgentPresence) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.AgentID = agentID
	r.agents[agentID] = p
}

func (r *memoryAtendimentoRepository) RemoveAgent(agentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.agents, agentID)
}

func (r *memoryAtendimentoRepository) GetAgent(agentID string) (domain.AgentPresence, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.agents[agentID]
	return p, ok
}

// ListAgents returns the online agents ordered by join time.
func (r *memoryAtendimentoRepository) ListAgents() []domain.AgentPresence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.AgentPresence, 0, len(r.agents))
	for _, p := range r.agents {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].AgentID < out[j].AgentID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}

func (r *memoryAtendimentoRepository) AgentCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
