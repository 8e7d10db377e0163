package services

import (
	"fmt"
	"math/rand/v2"
	"time"

	"atendimento-relay/internal/domain"
	relay_errors "atendimento-relay/pkg/errors"

	"github.com/google/uuid"
)

var simulatedClientMessages = []string{
	"Ainda está aí?",
	"Preciso de uma resposta urgente",
	"Quando vocês vão resolver meu problema?",
	"Obrigado pela atenção",
	"Posso falar com um supervisor?",
}

// SeedDemoData loads a few conversations so an agent UI has something to show on an empty server.
func (s *AtendimentoService) SeedDemoData() []string {
	now := s.now()
	seeds := []struct {
		name, email string
		status      domain.AtendimentoStatus
		unread      int
		startedAgo  time.Duration
		messages    []demoMessage
	}{
		{
			name: "João Silva", email: "joao@email.com", status: domain.StatusWaiting, unread: 2, startedAgo: 5 * time.Minute,
			messages: []demoMessage{
				{domain.SenderClient, "Olá, preciso de ajuda com meu pedido", 2 * time.Minute},
				{domain.SenderClient, "Meu pedido não chegou ainda", time.Minute},
			},
		},
		{
			name: "Maria Santos", email: "maria@email.com", status: domain.StatusActive, unread: 0, startedAgo: 10 * time.Minute,
			messages: []demoMessage{
				{domain.SenderClient, "Meu produto chegou com defeito", 3 * time.Minute},
				{domain.SenderAgent, "Vou verificar isso para você", time.Minute},
			},
		},
		{
			name: "Pedro Costa", email: "pedro@email.com", status: domain.StatusWaiting, unread: 1, startedAgo: 3 * time.Minute,
			messages: []demoMessage{
				{domain.SenderClient, "Quando meu produto será entregue?", 90 * time.Second},
			},
		},
	}

	ids := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		a := domain.Atendimento{
			ClientName:      seed.name,
			ClientEmail:     seed.email,
			Source:          "test",
			Status:          seed.status,
			UnreadCount:     seed.unread,
			ClientConnected: true,
			StartedAt:       now.Add(-seed.startedAgo),
		}
		for _, m := range seed.messages {
			msg := domain.Message{
				ID:        "msg_" + uuid.NewString(),
				Sender:    m.sender,
				Content:   m.content,
				Timestamp: now.Add(-m.ago),
			}
			if m.sender == domain.SenderClient {
				msg.ClientName = seed.name
			}
			a.Messages = append(a.Messages, msg)
		}
		ids = append(ids, s.repo.Create(a))
	}
	return ids
}

type demoMessage struct {
	sender  domain.SenderType
	content string
	ago     time.Duration
}

// SimulateClientMessage appends a canned client message to the conversation.
func (s *AtendimentoService) SimulateClientMessage(id string) (domain.Message, domain.Atendimento, error) {
	return s.AddMessage(AddMessageInput{
		AtendimentoID: id,
		Sender:        domain.SenderClient,
		Content:       simulatedClientMessages[rand.IntN(len(simulatedClientMessages))],
	})
}

// PickWaiting returns the id of a random waiting conversation.
func (s *AtendimentoService) PickWaiting() (string, error) {
	var waiting []string
	for _, a := range s.repo.List() {
		if a.Status == domain.StatusWaiting {
			waiting = append(waiting, a.ID)
		}
	}
	if len(waiting) == 0 {
		return "", fmt.Errorf("no waiting atendimento: %w", relay_errors.ErrNotFound)
	}
	return waiting[rand.IntN(len(waiting))], nil
}
