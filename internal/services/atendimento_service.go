package services

import (
	"fmt"
	"strings"
	"time"

	"atendimento-relay/internal/domain"
	"atendimento-relay/internal/repository"
	relay_errors "atendimento-relay/pkg/errors"

	"github.com/google/uuid"
)

type CreateAtendimentoInput struct {
	ClientName  string
	ClientEmail string
	Source      string
	AutoCreated bool
}

type AddMessageInput struct {
	AtendimentoID string
	Sender        domain.SenderType
	Content       string
	ClientName    string
}

// Estatisticas is the compact statistics shape.
type Estatisticas struct {
	TotalAtendimentos int `json:"totalAtendimentos"`
	TotalAgentes      int `json:"totalAgentes"`
}

// DetailedStats breaks the conversations down by status.
type DetailedStats struct {
	Total        int `json:"total"`
	Waiting      int `json:"waiting"`
	Active       int `json:"active"`
	Closed       int `json:"closed"`
	AgentsOnline int `json:"agentsOnline"`
}

// AtendimentoService is the business facade over the repository. It keeps no state of its own.
type AtendimentoService struct {
	repo repository.AtendimentoRepository
	now  func() time.Time
}

func NewAtendimentoService(repo repository.AtendimentoRepository) *AtendimentoService {
	return &AtendimentoService{repo: repo, now: time.Now}
}

func (s *AtendimentoService) CreateAtendimento(in CreateAtendimentoInput) (domain.Atendimento, error) {
	if strings.TrimSpace(in.ClientName) == "" {
		return domain.Atendimento{}, fmt.Errorf("client name is required: %w", relay_errors.ErrInvalidInput)
	}

	id := s.repo.Create(domain.Atendimento{
		ClientName:      in.ClientName,
		ClientEmail:     in.ClientEmail,
		Source:          in.Source,
		AutoCreated:     in.AutoCreated,
		Status:          domain.StatusWaiting,
		UnreadCount:     0,
		Messages:        []domain.Message{},
		ClientConnected: true,
		StartedAt:       s.now(),
	})
	return s.repo.Get(id)
}

func (s *AtendimentoService) GetAtendimento(id string) (domain.Atendimento, error) {
	return s.repo.Get(id)
}

func (s *AtendimentoService) UpdateAtendimento(id string, patch domain.AtendimentoPatch) (domain.Atendimento, error) {
	return s.repo.Update(id, patch)
}

// AcceptAtendimento assigns the conversation to an agent and clears its unread counter.
func (s *AtendimentoService) AcceptAtendimento(id, agentID, agentName string) (domain.Atendimento, error) {
	return s.repo.Update(id, domain.AtendimentoPatch{
		Status:      domain.Ptr(domain.StatusActive),
		AgentID:     domain.Ptr(agentID),
		AgentName:   domain.Ptr(agentName),
		UnreadCount: domain.Ptr(0),
	})
}

func (s *AtendimentoService) CloseAtendimento(id string) (domain.Atendimento, error) {
	return s.repo.Update(id, domain.AtendimentoPatch{Status: domain.Ptr(domain.StatusClosed)})
}

func (s *AtendimentoService) MarkClientDisconnected(id string) (domain.Atendimento, error) {
	return s.repo.Update(id, domain.AtendimentoPatch{ClientConnected: domain.Ptr(false)})
}

// AddMessage builds a message and appends it to the conversation. The returned message
// is the one that was stored.
func (s *AtendimentoService) AddMessage(in AddMessageInput) (domain.Message, domain.Atendimento, error) {
	if !in.Sender.Valid() {
		return domain.Message{}, domain.Atendimento{}, fmt.Errorf("sender %q: %w", in.Sender, relay_errors.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Content) == "" {
		return domain.Message{}, domain.Atendimento{}, fmt.Errorf("message content is required: %w", relay_errors.ErrInvalidInput)
	}

	current, err := s.repo.Get(in.AtendimentoID)
	if err != nil {
		return domain.Message{}, domain.Atendimento{}, err
	}

	clientName := in.ClientName
	if clientName == "" {
		clientName = current.ClientName
	}
	msg := domain.Message{
		ID:            "msg_" + uuid.NewString(),
		AtendimentoID: in.AtendimentoID,
		Sender:        in.Sender,
		Content:       in.Content,
		Timestamp:     s.now(),
		ClientName:    clientName,
	}

	updated, err := s.repo.AppendMessage(in.AtendimentoID, msg)
	if err != nil {
		return domain.Message{}, domain.Atendimento{}, err
	}
	return msg, updated, nil
}

func (s *AtendimentoService) ListAtendimentos() []domain.Atendimento {
	return s.repo.List()
}

func (s *AtendimentoService) AddAgent(agentID, connectionID, username string) domain.AgentPresence {
	p := domain.AgentPresence{
		AgentID:      agentID,
		ConnectionID: connectionID,
		Username:     username,
		JoinedAt:     s.now(),
	}
	s.repo.AddAgent(agentID, p)
	return p
}

func (s *AtendimentoService) RemoveAgent(agentID string) {
	s.repo.RemoveAgent(agentID)
}

func (s *AtendimentoService) GetAgent(agentID string) (domain.AgentPresence, bool) {
	return s.repo.GetAgent(agentID)
}

func (s *AtendimentoService) ListAgents() []domain.AgentPresence {
	return s.repo.ListAgents()
}

func (s *AtendimentoService) GetEstatisticas() Estatisticas {
	return Estatisticas{
		TotalAtendimentos: s.repo.Count().Total,
		TotalAgentes:      s.repo.AgentCount(),
	}
}

func (s *AtendimentoService) GetDetailedStats() DetailedStats {
	c := s.repo.Count()
	return DetailedStats{
		Total:        c.Total,
		Waiting:      c.Waiting,
		Active:       c.Active,
		Closed:       c.Closed,
		AgentsOnline: s.repo.AgentCount(),
	}
}
